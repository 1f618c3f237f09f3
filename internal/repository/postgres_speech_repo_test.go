package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hitoshi/speechbox/internal/model"
)

// PostgresSpeechRepoがSpeechRepositoryインターフェースを満たすことを検証
func TestPostgresSpeechRepo_ImplementsInterface(t *testing.T) {
	var _ SpeechRepository = (*PostgresSpeechRepo)(nil)
}

// NewPostgresSpeechRepoが正しく初期化されることを検証
func TestNewPostgresSpeechRepo_Initializes(t *testing.T) {
	repo := NewPostgresSpeechRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Speechモデルのフィールドが正しく構築されることを検証
func TestPostgresSpeechRepo_SpeechModel_Fields(t *testing.T) {
	now := time.Now()
	speech := &model.Speech{
		ID:        "speech-id-1",
		UserID:    "user-id-1",
		Title:     "結婚式の乾杯挨拶",
		Occasion:  "wedding",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if speech.ID != "speech-id-1" {
		t.Errorf("speech.ID = %q, want %q", speech.ID, "speech-id-1")
	}
	if speech.UserID != "user-id-1" {
		t.Errorf("speech.UserID = %q, want %q", speech.UserID, "user-id-1")
	}
	if speech.Audience != "" {
		t.Error("audience should be empty by default")
	}
}

// SpeechUpdate.HasChangesが指定状態を正しく判定することを検証
func TestSpeechUpdate_HasChanges(t *testing.T) {
	empty := SpeechUpdate{}
	if empty.HasChanges() {
		t.Error("empty update should have no changes")
	}

	title := "新しいタイトル"
	withTitle := SpeechUpdate{Title: &title}
	if !withTitle.HasChanges() {
		t.Error("update with title should have changes")
	}

	notes := ""
	withEmptyNotes := SpeechUpdate{Notes: &notes}
	if !withEmptyNotes.HasChanges() {
		t.Error("explicitly cleared field still counts as a change")
	}
}

// UpdatePartialが空の更新セットを拒否することを検証
func TestPostgresSpeechRepo_UpdatePartial_RejectsEmptyUpdate(t *testing.T) {
	repo := NewPostgresSpeechRepo(nil)

	// 空の更新はSQL実行前にエラーになるため、nilのDBでも安全に呼べる
	_, err := repo.UpdatePartial(context.Background(), "speech-1", "user-1", SpeechUpdate{})
	if err == nil {
		t.Fatal("expected error for empty update set, got nil")
	}
}

// nullString/nullStringValueの往復変換を検証
func TestNullStringHelpers(t *testing.T) {
	if got := nullString(""); got.Valid {
		t.Error("empty string should map to invalid NullString")
	}
	if got := nullString("x"); !got.Valid || got.String != "x" {
		t.Errorf("nullString(\"x\") = %+v, want valid \"x\"", got)
	}

	if got := nullStringValue(sql.NullString{}); got != "" {
		t.Errorf("nullStringValue(invalid) = %q, want empty", got)
	}
	if got := nullStringValue(sql.NullString{String: "y", Valid: true}); got != "y" {
		t.Errorf("nullStringValue(valid) = %q, want %q", got, "y")
	}
}
