// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, speech, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeSpeechNotFound        = "SPEECH_NOT_FOUND"
	ErrCodeSpeechVersionNotFound = "SPEECH_VERSION_NOT_FOUND"
	ErrCodeValidation            = "VALIDATION_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewSpeechNotFoundError はスピーチ未検出エラーを生成する。
// 存在しない場合と他ユーザーの所有である場合を意図的に区別しない
// （存在の有無を漏らさないため）。
func NewSpeechNotFoundError(speechID string) *APIError {
	return &APIError{
		Code:     ErrCodeSpeechNotFound,
		Message:  fmt.Sprintf("指定されたスピーチが見つかりません: %s", speechID),
		Category: "speech",
		Action:   "スピーチIDを確認してください。",
	}
}

// NewSpeechVersionNotFoundError はスピーチバージョン未検出エラーを生成する。
// 親スピーチが見つからない場合との区別もしない。
func NewSpeechVersionNotFoundError(versionID string) *APIError {
	return &APIError{
		Code:     ErrCodeSpeechVersionNotFound,
		Message:  fmt.Sprintf("指定されたバージョンが見つかりません: %s", versionID),
		Category: "speech",
		Action:   "バージョンIDを確認してください。",
	}
}

// NewValidationError は入力バリデーションエラーを生成する。
// 永続化呼び出しの前に検出・送出される。
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", detail),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}
