// Package validate は操作ごとの静的バリデーションルールを提供する。
//
// 各リクエスト操作は必須/任意フィールドとその制約（最小長、数値範囲）を
// 静的なRuleSetとして列挙し、永続化呼び出しの前に評価する。
// 部分更新操作はRequireAnyにより「少なくとも1フィールド指定」を要求できる。
package validate

import (
	"fmt"

	"github.com/hitoshi/speechbox/internal/model"
)

// StringRule は文字列フィールドの制約を表す。
// Valueがnilの場合そのフィールドは未指定として扱う。
type StringRule struct {
	Name     string
	Value    *string
	Required bool
	MinLen   int
}

// IntRule は数値フィールドの制約を表す。
// Valueがnilの場合そのフィールドは未指定として扱う。
// 指定された場合は[Min, Max]の範囲に収まっている必要がある。
type IntRule struct {
	Name  string
	Value *int
	Min   int
	Max   int
}

// BoolRule は真偽値フィールドを表す。制約はなく、
// RequireAnyの「指定フィールド数」の計数にのみ寄与する。
type BoolRule struct {
	Name  string
	Value *bool
}

// RuleSet は1操作分のバリデーションルールの集合。
type RuleSet struct {
	Strings []StringRule
	Ints    []IntRule
	Bools   []BoolRule

	// RequireAnyがtrueの場合、少なくとも1つのフィールドが
	// 指定されている必要がある（部分更新操作用）。
	RequireAny bool
}

// Validate はルールセットを評価し、違反があればAPIErrorを返す。
// 違反がない場合はnilを返す。
func (rs RuleSet) Validate() *model.APIError {
	present := 0

	for _, r := range rs.Strings {
		if r.Value == nil {
			if r.Required {
				return model.NewValidationError(fmt.Sprintf("必須フィールドが指定されていません: %s", r.Name))
			}
			continue
		}
		present++

		minLen := r.MinLen
		if r.Required && minLen == 0 {
			minLen = 1
		}
		if len(*r.Value) < minLen {
			return model.NewValidationError(fmt.Sprintf("%s は%d文字以上で指定してください", r.Name, minLen))
		}
	}

	for _, r := range rs.Ints {
		if r.Value == nil {
			continue
		}
		present++

		if *r.Value < r.Min || *r.Value > r.Max {
			return model.NewValidationError(
				fmt.Sprintf("%s は%dから%dの範囲で指定してください", r.Name, r.Min, r.Max))
		}
	}

	for _, r := range rs.Bools {
		if r.Value != nil {
			present++
		}
	}

	if rs.RequireAny && present == 0 {
		return model.NewValidationError("更新するフィールドが1つも指定されていません")
	}

	return nil
}
