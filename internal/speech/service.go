// Package speech はスピーチ管理のドメインロジックを提供する。
package speech

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/speechbox/internal/model"
	"github.com/hitoshi/speechbox/internal/repository"
	"github.com/hitoshi/speechbox/internal/security"
)

// CreateInput はスピーチ作成の入力を表す。
// Title以外は任意で、空文字列は未設定として保存される。
type CreateInput struct {
	Title    string
	Occasion string
	Audience string
	Language string
	Notes    string
}

// UpdateInput はスピーチ部分更新の入力を表す。
// nilのフィールドは変更されない。
type UpdateInput struct {
	Title    *string
	Occasion *string
	Audience *string
	Language *string
	Notes    *string
}

// Service はスピーチ管理のサービス層。
// 作成・部分更新・一覧取得と所有権ガードを提供する。
type Service struct {
	speechRepo repository.SpeechRepository
	sanitizer  security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(speechRepo repository.SpeechRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		speechRepo: speechRepo,
		sanitizer:  sanitizer,
	}
}

// Create は新しいスピーチを作成する。
// IDを生成し、created_at = updated_at = 現在時刻でスタンプし、
// user_idを呼び出しユーザーに束縛する。所有権チェックは不要（新規エンティティ）。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Speech, error) {
	now := time.Now()
	speech := &model.Speech{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     in.Title,
		Occasion:  in.Occasion,
		Audience:  in.Audience,
		Language:  in.Language,
		Notes:     s.sanitizeText(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.speechRepo.Create(ctx, speech); err != nil {
		return nil, fmt.Errorf("スピーチの作成に失敗しました: %w", err)
	}

	return speech, nil
}

// Update はスピーチを部分更新する。
// 入力に明示的に含まれるフィールドのみを適用し、updated_atを常に更新する。
// 所有権ガードを通過した後でも、更新文自体がid + user_idの条件付きであるため、
// ガードと更新の間に行が消えた場合もNotFoundとして検出される。
func (s *Service) Update(ctx context.Context, userID, speechID string, in UpdateInput) (*model.Speech, error) {
	if _, err := s.requireOwnedSpeech(ctx, speechID, userID); err != nil {
		return nil, err
	}

	fields := repository.SpeechUpdate{
		Title:    in.Title,
		Occasion: in.Occasion,
		Audience: in.Audience,
		Language: in.Language,
		Notes:    s.sanitizeTextPtr(in.Notes),
	}

	updated, err := s.speechRepo.UpdatePartial(ctx, speechID, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("スピーチの更新に失敗しました: %w", err)
	}
	if updated == nil {
		// ガード通過後に行が消えた場合
		return nil, model.NewSpeechNotFoundError(speechID)
	}

	return updated, nil
}

// List は呼び出しユーザーが所有する全スピーチを返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Speech, error) {
	speeches, err := s.speechRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("スピーチ一覧の取得に失敗しました: %w", err)
	}
	return speeches, nil
}

// requireOwnedSpeech は指定スピーチが存在し、呼び出しユーザーの所有であることを確認する。
// 条件を満たさない場合はNotFoundを返す（他ユーザー所有の場合と区別しない）。
// 副作用なしの読み取り専用チェック。
func (s *Service) requireOwnedSpeech(ctx context.Context, speechID, userID string) (*model.Speech, error) {
	speech, err := s.speechRepo.FindByIDAndUser(ctx, speechID, userID)
	if err != nil {
		return nil, fmt.Errorf("スピーチの取得に失敗しました: %w", err)
	}
	if speech == nil {
		return nil, model.NewSpeechNotFoundError(speechID)
	}
	return speech, nil
}

// sanitizeText はメモ等の自由記述テキストをサニタイズする。
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
