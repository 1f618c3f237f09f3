package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hitoshi/speechbox/internal/model"
)

// PostgresSpeechVersionRepoがSpeechVersionRepositoryインターフェースを満たすことを検証
func TestPostgresSpeechVersionRepo_ImplementsInterface(t *testing.T) {
	var _ SpeechVersionRepository = (*PostgresSpeechVersionRepo)(nil)
}

// SpeechVersionモデルのデフォルト値を検証
func TestPostgresSpeechVersionRepo_VersionModel_Defaults(t *testing.T) {
	version := &model.SpeechVersion{
		ID:         "version-id-1",
		SpeechID:   "speech-id-1",
		ScriptText: "皆様、本日はお集まりいただき...",
		CreatedAt:  time.Now(),
	}

	if version.IsPreferred {
		t.Error("is_preferred should default to false")
	}
	if version.TargetDurationMinutes != nil {
		t.Error("target_duration_minutes should be nil by default")
	}
	if version.VersionLabel != "" {
		t.Error("version_label should be empty by default")
	}
}

// SpeechVersionUpdate.HasChangesが指定状態を正しく判定することを検証
func TestSpeechVersionUpdate_HasChanges(t *testing.T) {
	empty := SpeechVersionUpdate{}
	if empty.HasChanges() {
		t.Error("empty update should have no changes")
	}

	preferred := true
	withPreferred := SpeechVersionUpdate{IsPreferred: &preferred}
	if !withPreferred.HasChanges() {
		t.Error("update with is_preferred should have changes")
	}

	minutes := 5
	withDuration := SpeechVersionUpdate{TargetDurationMinutes: &minutes}
	if !withDuration.HasChanges() {
		t.Error("update with target_duration_minutes should have changes")
	}
}

// UpdatePartialが空の更新セットを拒否することを検証
func TestPostgresSpeechVersionRepo_UpdatePartial_RejectsEmptyUpdate(t *testing.T) {
	repo := NewPostgresSpeechVersionRepo(nil)

	_, err := repo.UpdatePartial(context.Background(), "version-1", "speech-1", SpeechVersionUpdate{})
	if err == nil {
		t.Fatal("expected error for empty update set, got nil")
	}
}

// nullInt32/nullInt32Valueの往復変換を検証
func TestNullInt32Helpers(t *testing.T) {
	if got := nullInt32(nil); got.Valid {
		t.Error("nil should map to invalid NullInt32")
	}

	v := 7
	if got := nullInt32(&v); !got.Valid || got.Int32 != 7 {
		t.Errorf("nullInt32(&7) = %+v, want valid 7", got)
	}

	if got := nullInt32Value(sql.NullInt32{}); got != nil {
		t.Errorf("nullInt32Value(invalid) = %v, want nil", got)
	}
	if got := nullInt32Value(sql.NullInt32{Int32: 12, Valid: true}); got == nil || *got != 12 {
		t.Errorf("nullInt32Value(valid 12) = %v, want 12", got)
	}
}
