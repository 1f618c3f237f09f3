// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/speechbox/internal/model"
)

// SpeechUpdate はスピーチの部分更新フィールドを表す。
// nilのフィールドは変更されない（部分更新セマンティクス）。
type SpeechUpdate struct {
	Title    *string
	Occasion *string
	Audience *string
	Language *string
	Notes    *string
}

// HasChanges は少なくとも1つのフィールドが指定されているかを返す。
func (u SpeechUpdate) HasChanges() bool {
	return u.Title != nil || u.Occasion != nil || u.Audience != nil ||
		u.Language != nil || u.Notes != nil
}

// SpeechVersionUpdate はスピーチバージョンの部分更新フィールドを表す。
// nilのフィールドは変更されない。
type SpeechVersionUpdate struct {
	VersionLabel          *string
	Tone                  *string
	TargetDurationMinutes *int
	ScriptText            *string
	IsPreferred           *bool
}

// HasChanges は少なくとも1つのフィールドが指定されているかを返す。
func (u SpeechVersionUpdate) HasChanges() bool {
	return u.VersionLabel != nil || u.Tone != nil || u.TargetDurationMinutes != nil ||
		u.ScriptText != nil || u.IsPreferred != nil
}

// SpeechRepository はスピーチデータの永続化インターフェース。
// 全ての読み書きはid + user_idの等値条件で所有者にスコープされる。
type SpeechRepository interface {
	// FindByIDAndUser は指定IDかつ指定ユーザー所有のスピーチを取得する。
	// 見つからない場合はnilを返す（存在するが他ユーザー所有の場合も同様）。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Speech, error)

	// Create はスピーチを作成する。
	Create(ctx context.Context, speech *model.Speech) error

	// UpdatePartial は指定されたフィールドのみを条件付きUPDATE
	// （WHERE id = $1 AND user_id = $2）で適用し、updated_atを更新する。
	// 更新対象行が存在しない場合はnilを返す。
	UpdatePartial(ctx context.Context, id, userID string, fields SpeechUpdate) (*model.Speech, error)

	// ListByUserID はユーザーの全スピーチを作成日時順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Speech, error)
}

// SpeechVersionRepository はスピーチバージョンデータの永続化インターフェース。
// バージョンの所有権はspeech_idを通じて親スピーチから推移的に導出されるため、
// 全ての読み書きはid + speech_idの等値条件でスコープされる。
type SpeechVersionRepository interface {
	// FindByIDAndSpeech は指定IDかつ指定スピーチ配下のバージョンを取得する。
	// 見つからない場合はnilを返す。
	FindByIDAndSpeech(ctx context.Context, id, speechID string) (*model.SpeechVersion, error)

	// Create はバージョンを作成する。
	Create(ctx context.Context, version *model.SpeechVersion) error

	// UpdatePartial は指定されたフィールドのみを条件付きUPDATE
	// （WHERE id = $1 AND speech_id = $2）で適用する。
	// バージョンにupdated_atは存在しないため、タイムスタンプは更新しない。
	// 更新対象行が存在しない場合はnilを返す。
	UpdatePartial(ctx context.Context, id, speechID string, fields SpeechVersionUpdate) (*model.SpeechVersion, error)

	// Delete は指定IDかつ指定スピーチ配下のバージョンを削除する。
	// 削除された行数が0の場合はfalseを返す（ガード後に行が消えた場合の再チェック用）。
	Delete(ctx context.Context, id, speechID string) (bool, error)

	// ListBySpeechID はスピーチの全バージョンを作成日時順で返す。
	// preferredOnlyがtrueの場合はis_preferred = trueの行のみに絞る。
	ListBySpeechID(ctx context.Context, speechID string, preferredOnly bool) ([]*model.SpeechVersion, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
// セッションの発行・失効は外部のアイデンティティサービスが担うため、検索のみを提供する。
type SessionRepository interface {
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
}
