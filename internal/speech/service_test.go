package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/speechbox/internal/model"
	"github.com/hitoshi/speechbox/internal/repository"
)

// --- モック ---

type mockSpeechRepo struct {
	findByIDAndUserFn func(ctx context.Context, id, userID string) (*model.Speech, error)
	createFn          func(ctx context.Context, speech *model.Speech) error
	updatePartialFn   func(ctx context.Context, id, userID string, fields repository.SpeechUpdate) (*model.Speech, error)
	listByUserIDFn    func(ctx context.Context, userID string) ([]*model.Speech, error)
}

func (m *mockSpeechRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Speech, error) {
	if m.findByIDAndUserFn != nil {
		return m.findByIDAndUserFn(ctx, id, userID)
	}
	return nil, nil
}

func (m *mockSpeechRepo) Create(ctx context.Context, speech *model.Speech) error {
	if m.createFn != nil {
		return m.createFn(ctx, speech)
	}
	return nil
}

func (m *mockSpeechRepo) UpdatePartial(ctx context.Context, id, userID string, fields repository.SpeechUpdate) (*model.Speech, error) {
	if m.updatePartialFn != nil {
		return m.updatePartialFn(ctx, id, userID, fields)
	}
	return nil, nil
}

func (m *mockSpeechRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Speech, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

func strPtr(s string) *string { return &s }

// --- テスト ---

// Createが生成IDとタイムスタンプ、呼び出しユーザーのuser_idをスタンプすることを検証
func TestService_Create_StampsIDAndTimestamps(t *testing.T) {
	var created *model.Speech
	repo := &mockSpeechRepo{
		createFn: func(ctx context.Context, speech *model.Speech) error {
			created = speech
			return nil
		},
	}

	svc := NewService(repo, passthroughSanitizer{})

	before := time.Now()
	speech, err := svc.Create(context.Background(), "user-1", CreateInput{
		Title:    "結婚式の乾杯挨拶",
		Occasion: "wedding",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if speech.ID == "" {
		t.Error("expected generated non-empty id")
	}
	if speech.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", speech.UserID, "user-1")
	}
	if !speech.CreatedAt.Equal(speech.UpdatedAt) {
		t.Errorf("CreatedAt (%v) should equal UpdatedAt (%v) at creation", speech.CreatedAt, speech.UpdatedAt)
	}
	if speech.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, should not be before %v", speech.CreatedAt, before)
	}
	if created == nil {
		t.Fatal("repo.Create was not called")
	}
	if created.Title != "結婚式の乾杯挨拶" {
		t.Errorf("persisted Title = %q, want %q", created.Title, "結婚式の乾杯挨拶")
	}
}

// Create時にメモがサニタイズされることを検証
func TestService_Create_SanitizesNotes(t *testing.T) {
	var created *model.Speech
	repo := &mockSpeechRepo{
		createFn: func(ctx context.Context, speech *model.Speech) error {
			created = speech
			return nil
		},
	}

	svc := NewService(repo, stripSanitizer{})

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Title: "挨拶",
		Notes: "<script>x</script>メモ",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if created.Notes != "メモ" {
		t.Errorf("Notes = %q, want sanitized %q", created.Notes, "メモ")
	}
}

// stripSanitizer はタグ除去を模した固定動作のサニタイザ。
type stripSanitizer struct{}

func (stripSanitizer) Sanitize(raw string) string {
	if raw == "<script>x</script>メモ" {
		return "メモ"
	}
	return raw
}

// Updateが所有権ガードを通し、更新結果を返すことを検証
func TestService_Update_AppliesPresentFields(t *testing.T) {
	now := time.Now()
	repo := &mockSpeechRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.Speech, error) {
			return &model.Speech{ID: id, UserID: userID, Title: "旧タイトル"}, nil
		},
		updatePartialFn: func(ctx context.Context, id, userID string, fields repository.SpeechUpdate) (*model.Speech, error) {
			if fields.Title == nil || *fields.Title != "新タイトル" {
				t.Errorf("fields.Title = %v, want %q", fields.Title, "新タイトル")
			}
			if fields.Occasion != nil {
				t.Error("fields.Occasion should be nil (absent field must not be applied)")
			}
			return &model.Speech{
				ID: id, UserID: userID, Title: "新タイトル",
				CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
			}, nil
		},
	}

	svc := NewService(repo, passthroughSanitizer{})

	updated, err := svc.Update(context.Background(), "user-1", "speech-1", UpdateInput{
		Title: strPtr("新タイトル"),
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Title != "新タイトル" {
		t.Errorf("Title = %q, want %q", updated.Title, "新タイトル")
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("UpdatedAt should advance past CreatedAt after update")
	}
}

// 他ユーザー所有（または不存在）のスピーチ更新がNotFoundになることを検証
func TestService_Update_NotOwned_ReturnsNotFound(t *testing.T) {
	updateCalled := false
	repo := &mockSpeechRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.Speech, error) {
			return nil, nil
		},
		updatePartialFn: func(ctx context.Context, id, userID string, fields repository.SpeechUpdate) (*model.Speech, error) {
			updateCalled = true
			return nil, nil
		},
	}

	svc := NewService(repo, passthroughSanitizer{})

	_, err := svc.Update(context.Background(), "user-2", "speech-1", UpdateInput{Title: strPtr("x")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSpeechNotFound {
		t.Fatalf("expected SPEECH_NOT_FOUND, got %v", err)
	}
	if updateCalled {
		t.Error("UpdatePartial should not be called when the guard fails")
	}
}

// ガード通過後に行が消えた場合もNotFoundになることを検証
func TestService_Update_RowVanishedAfterGuard_ReturnsNotFound(t *testing.T) {
	repo := &mockSpeechRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.Speech, error) {
			return &model.Speech{ID: id, UserID: userID}, nil
		},
		updatePartialFn: func(ctx context.Context, id, userID string, fields repository.SpeechUpdate) (*model.Speech, error) {
			return nil, nil // ゼロ行更新
		},
	}

	svc := NewService(repo, passthroughSanitizer{})

	_, err := svc.Update(context.Background(), "user-1", "speech-1", UpdateInput{Title: strPtr("x")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSpeechNotFound {
		t.Fatalf("expected SPEECH_NOT_FOUND, got %v", err)
	}
}

// Listがリポジトリの結果をそのまま返すことを検証
func TestService_List(t *testing.T) {
	repo := &mockSpeechRepo{
		listByUserIDFn: func(ctx context.Context, userID string) ([]*model.Speech, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return []*model.Speech{
				{ID: "speech-1", UserID: userID, Title: "挨拶A"},
				{ID: "speech-2", UserID: userID, Title: "挨拶B"},
			}, nil
		},
	}

	svc := NewService(repo, passthroughSanitizer{})

	speeches, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(speeches) != 2 {
		t.Fatalf("len = %d, want 2", len(speeches))
	}
	for _, sp := range speeches {
		if sp.UserID != "user-1" {
			t.Errorf("list leaked foreign row: UserID = %q", sp.UserID)
		}
	}
}

// リポジトリエラーがラップされて伝播することを検証
func TestService_Create_RepoError_Propagates(t *testing.T) {
	repo := &mockSpeechRepo{
		createFn: func(ctx context.Context, speech *model.Speech) error {
			return errors.New("db down")
		},
	}

	svc := NewService(repo, passthroughSanitizer{})

	_, err := svc.Create(context.Background(), "user-1", CreateInput{Title: "x"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
