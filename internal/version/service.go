// Package version はスピーチバージョン（草稿）管理のドメインロジックを提供する。
//
// バージョンに対する全ての操作は、親スピーチの所有権確認を経由する
// 推移的な所有権ガードを通る。バージョン自体はuser_idを保持しない。
package version

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/speechbox/internal/model"
	"github.com/hitoshi/speechbox/internal/repository"
	"github.com/hitoshi/speechbox/internal/security"
)

// CreateInput はバージョン作成の入力を表す。
// ScriptText以外は任意。IsPreferredは未指定時false。
type CreateInput struct {
	VersionLabel          string
	Tone                  string
	TargetDurationMinutes *int
	ScriptText            string
	IsPreferred           bool
}

// UpdateInput はバージョン部分更新の入力を表す。
// nilのフィールドは変更されない。
type UpdateInput struct {
	VersionLabel          *string
	Tone                  *string
	TargetDurationMinutes *int
	ScriptText            *string
	IsPreferred           *bool
}

// Service はスピーチバージョン管理のサービス層。
// 作成・部分更新・削除・一覧取得と推移的所有権ガードを提供する。
type Service struct {
	versionRepo repository.SpeechVersionRepository
	speechRepo  repository.SpeechRepository
	sanitizer   security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	versionRepo repository.SpeechVersionRepository,
	speechRepo repository.SpeechRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		versionRepo: versionRepo,
		speechRepo:  speechRepo,
		sanitizer:   sanitizer,
	}
}

// Create は指定スピーチに新しいバージョンを作成する。
// 親スピーチの所有権を確認し、IDを生成してcreated_atをスタンプする。
func (s *Service) Create(ctx context.Context, userID, speechID string, in CreateInput) (*model.SpeechVersion, error) {
	if err := s.requireOwnedSpeech(ctx, speechID, userID); err != nil {
		return nil, err
	}

	version := &model.SpeechVersion{
		ID:                    uuid.New().String(),
		SpeechID:              speechID,
		VersionLabel:          in.VersionLabel,
		Tone:                  in.Tone,
		TargetDurationMinutes: in.TargetDurationMinutes,
		ScriptText:            s.sanitizeText(in.ScriptText),
		IsPreferred:           in.IsPreferred,
		CreatedAt:             time.Now(),
	}

	if err := s.versionRepo.Create(ctx, version); err != nil {
		return nil, fmt.Errorf("バージョンの作成に失敗しました: %w", err)
	}

	return version, nil
}

// Update はバージョンを部分更新する。
// 推移的所有権ガードを通過した後、入力に明示的に含まれるフィールドのみを適用する。
// バージョンにupdated_atは存在しないため、タイムスタンプは更新しない。
func (s *Service) Update(ctx context.Context, userID, speechID, versionID string, in UpdateInput) (*model.SpeechVersion, error) {
	if err := s.requireOwnedSpeechVersion(ctx, versionID, speechID, userID); err != nil {
		return nil, err
	}

	fields := repository.SpeechVersionUpdate{
		VersionLabel:          in.VersionLabel,
		Tone:                  in.Tone,
		TargetDurationMinutes: in.TargetDurationMinutes,
		ScriptText:            s.sanitizeTextPtr(in.ScriptText),
		IsPreferred:           in.IsPreferred,
	}

	updated, err := s.versionRepo.UpdatePartial(ctx, versionID, speechID, fields)
	if err != nil {
		return nil, fmt.Errorf("バージョンの更新に失敗しました: %w", err)
	}
	if updated == nil {
		// ガード通過後に行が消えた場合
		return nil, model.NewSpeechVersionNotFoundError(versionID)
	}

	return updated, nil
}

// Delete はバージョンを削除する。
// ガードが存在を確認済みでも、ガードと削除の間に行が消えるレースに備えて
// 削除行数を再チェックし、0行の場合はNotFoundを返す（意図的に非冪等）。
func (s *Service) Delete(ctx context.Context, userID, speechID, versionID string) error {
	if err := s.requireOwnedSpeechVersion(ctx, versionID, speechID, userID); err != nil {
		return err
	}

	deleted, err := s.versionRepo.Delete(ctx, versionID, speechID)
	if err != nil {
		return fmt.Errorf("バージョンの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewSpeechVersionNotFoundError(versionID)
	}

	return nil
}

// List は指定スピーチの全バージョンを返す。
// preferredOnlyがtrueの場合はis_preferred = trueのバージョンのみに絞る。
func (s *Service) List(ctx context.Context, userID, speechID string, preferredOnly bool) ([]*model.SpeechVersion, error) {
	if err := s.requireOwnedSpeech(ctx, speechID, userID); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.ListBySpeechID(ctx, speechID, preferredOnly)
	if err != nil {
		return nil, fmt.Errorf("バージョン一覧の取得に失敗しました: %w", err)
	}

	return versions, nil
}

// requireOwnedSpeech は親スピーチが存在し、呼び出しユーザーの所有であることを確認する。
func (s *Service) requireOwnedSpeech(ctx context.Context, speechID, userID string) error {
	speech, err := s.speechRepo.FindByIDAndUser(ctx, speechID, userID)
	if err != nil {
		return fmt.Errorf("スピーチの取得に失敗しました: %w", err)
	}
	if speech == nil {
		return model.NewSpeechNotFoundError(speechID)
	}
	return nil
}

// requireOwnedSpeechVersion は推移的所有権ガード。
// まず親スピーチの所有権を確認し、次にバージョンがそのスピーチ配下に
// 存在することを確認する（バージョンの所有権は親から導出される）。
func (s *Service) requireOwnedSpeechVersion(ctx context.Context, versionID, speechID, userID string) error {
	if err := s.requireOwnedSpeech(ctx, speechID, userID); err != nil {
		return err
	}

	version, err := s.versionRepo.FindByIDAndSpeech(ctx, versionID, speechID)
	if err != nil {
		return fmt.Errorf("バージョンの取得に失敗しました: %w", err)
	}
	if version == nil {
		return model.NewSpeechVersionNotFoundError(versionID)
	}
	return nil
}

// sanitizeText は原稿テキストをサニタイズする。
func (s *Service) sanitizeText(text string) string {
	if s.sanitizer == nil || text == "" {
		return text
	}
	return s.sanitizer.Sanitize(text)
}

// sanitizeTextPtr はnil許容のテキストフィールドをサニタイズする。
func (s *Service) sanitizeTextPtr(text *string) *string {
	if text == nil {
		return nil
	}
	sanitized := s.sanitizeText(*text)
	return &sanitized
}
