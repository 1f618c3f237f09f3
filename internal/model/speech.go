// Package model はドメインモデルを定義する。
package model

import "time"

// Speech はユーザーが所有するスピーチ原稿プロジェクトを表す。
// 1つのスピーチは複数のバージョン（SpeechVersion）を持つことができる。
type Speech struct {
	ID        string
	UserID    string
	Title     string
	Occasion  string
	Audience  string
	Language  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SpeechVersion はスピーチの1つの草稿（リビジョン）を表す。
// 所有権はspeech_idを通じて親スピーチから推移的に導出される。
// 同一スピーチの複数バージョンが独立してIsPreferredになり得る
// （システムは「優先は高々1つ」を強制しない）。
type SpeechVersion struct {
	ID                    string
	SpeechID              string
	VersionLabel          string
	Tone                  string
	TargetDurationMinutes *int
	ScriptText            string
	IsPreferred           bool
	CreatedAt             time.Time
}

// Session はユーザーのログインセッションを表す。
// セッションの発行は外部のアイデンティティサービスが行い、
// 本アプリケーションは検証のみを行う。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
