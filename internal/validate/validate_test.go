package validate

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

// 必須文字列フィールドの検証を確認
func TestRuleSet_RequiredString(t *testing.T) {
	tests := []struct {
		name    string
		value   *string
		wantErr bool
	}{
		{"未指定はエラー", nil, true},
		{"空文字列はエラー", strPtr(""), true},
		{"1文字以上は成功", strPtr("a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := RuleSet{
				Strings: []StringRule{{Name: "title", Value: tt.value, Required: true, MinLen: 1}},
			}
			err := rs.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

// 任意文字列フィールドは未指定でも通過することを確認
func TestRuleSet_OptionalString_AbsentPasses(t *testing.T) {
	rs := RuleSet{
		Strings: []StringRule{{Name: "occasion", Value: nil}},
	}
	if err := rs.Validate(); err != nil {
		t.Errorf("expected no error for absent optional field, got %v", err)
	}
}

// 数値フィールドの範囲検証を確認
func TestRuleSet_IntRange(t *testing.T) {
	tests := []struct {
		name    string
		value   *int
		wantErr bool
	}{
		{"未指定は通過", nil, false},
		{"下限未満はエラー", intPtr(0), true},
		{"下限は通過", intPtr(1), false},
		{"上限は通過", intPtr(600), false},
		{"上限超過はエラー", intPtr(601), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := RuleSet{
				Ints: []IntRule{{Name: "target_duration_minutes", Value: tt.value, Min: 1, Max: 600}},
			}
			err := rs.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

// RequireAnyがゼロフィールド更新を拒否することを確認
func TestRuleSet_RequireAny_ZeroFieldsFails(t *testing.T) {
	rs := RuleSet{
		Strings:    []StringRule{{Name: "title", Value: nil}},
		Bools:      []BoolRule{{Name: "is_preferred", Value: nil}},
		RequireAny: true,
	}

	err := rs.Validate()
	if err == nil {
		t.Fatal("expected validation error for zero-field update, got nil")
	}
	if !strings.Contains(err.Message, "1つも指定されていません") {
		t.Errorf("unexpected message: %q", err.Message)
	}
}

// RequireAnyがbool指定のみでも満たされることを確認
func TestRuleSet_RequireAny_BoolOnlyPasses(t *testing.T) {
	rs := RuleSet{
		Strings:    []StringRule{{Name: "tone", Value: nil}},
		Bools:      []BoolRule{{Name: "is_preferred", Value: boolPtr(true)}},
		RequireAny: true,
	}

	if err := rs.Validate(); err != nil {
		t.Errorf("expected no error when a bool field is present, got %v", err)
	}
}

// 空文字列での任意フィールドのクリアが許可されることを確認
func TestRuleSet_OptionalString_EmptyClearPasses(t *testing.T) {
	rs := RuleSet{
		Strings:    []StringRule{{Name: "notes", Value: strPtr("")}},
		RequireAny: true,
	}

	if err := rs.Validate(); err != nil {
		t.Errorf("clearing an optional field with empty string should pass, got %v", err)
	}
}

// 必須フィールド指定ありの部分更新で最小長違反が検出されることを確認
func TestRuleSet_RequireAny_MinLenStillEnforced(t *testing.T) {
	rs := RuleSet{
		Strings:    []StringRule{{Name: "script_text", Value: strPtr(""), MinLen: 1}},
		RequireAny: true,
	}

	if err := rs.Validate(); err == nil {
		t.Error("expected min length violation, got nil")
	}
}
