package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/speechbox/internal/model"
)

// speechColumns はスピーチ行のSELECT対象カラム。
const speechColumns = `id, user_id, title, occasion, audience, language, notes, created_at, updated_at`

// PostgresSpeechRepo はPostgreSQLを使用したスピーチリポジトリ。
type PostgresSpeechRepo struct {
	db *sql.DB
}

// NewPostgresSpeechRepo はPostgresSpeechRepoを生成する。
func NewPostgresSpeechRepo(db *sql.DB) *PostgresSpeechRepo {
	return &PostgresSpeechRepo{db: db}
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有のスピーチを取得する。見つからない場合はnilを返す。
func (r *PostgresSpeechRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Speech, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+speechColumns+` FROM speeches WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	speech, err := scanSpeech(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スピーチの取得に失敗しました: %w", err)
	}

	return speech, nil
}

// Create はスピーチを作成する。
func (r *PostgresSpeechRepo) Create(ctx context.Context, speech *model.Speech) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO speeches (id, user_id, title, occasion, audience, language, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		speech.ID, speech.UserID, speech.Title,
		nullString(speech.Occasion), nullString(speech.Audience),
		nullString(speech.Language), nullString(speech.Notes),
		speech.CreatedAt, speech.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("スピーチの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdatePartial は指定されたフィールドのみを条件付きUPDATEで適用する。
// 所有権条件（id AND user_id）と更新を1文に結合しているため、
// ガードと更新の間に行が消えてもゼロ行更新はnil返却として検出される。
func (r *PostgresSpeechRepo) UpdatePartial(ctx context.Context, id, userID string, fields SpeechUpdate) (*model.Speech, error) {
	if !fields.HasChanges() {
		return nil, fmt.Errorf("更新フィールドが指定されていません")
	}

	args := []any{id, userID}
	var setClauses []string
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		set("title", *fields.Title)
	}
	if fields.Occasion != nil {
		set("occasion", nullString(*fields.Occasion))
	}
	if fields.Audience != nil {
		set("audience", nullString(*fields.Audience))
	}
	if fields.Language != nil {
		set("language", nullString(*fields.Language))
	}
	if fields.Notes != nil {
		set("notes", nullString(*fields.Notes))
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := `UPDATE speeches SET ` + strings.Join(setClauses, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + speechColumns

	row := r.db.QueryRowContext(ctx, query, args...)

	speech, err := scanSpeech(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スピーチの更新に失敗しました: %w", err)
	}

	return speech, nil
}

// ListByUserID はユーザーの全スピーチを作成日時順で返す。
func (r *PostgresSpeechRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Speech, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+speechColumns+` FROM speeches WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("スピーチ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var speeches []*model.Speech
	for rows.Next() {
		speech, err := scanSpeech(rows)
		if err != nil {
			return nil, fmt.Errorf("スピーチ一覧の読み取りに失敗しました: %w", err)
		}
		speeches = append(speeches, speech)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スピーチ一覧の走査に失敗しました: %w", err)
	}

	return speeches, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSpeech は1行をmodel.Speechに読み取る。
func scanSpeech(row rowScanner) (*model.Speech, error) {
	speech := &model.Speech{}
	var occasion, audience, language, notes sql.NullString

	if err := row.Scan(
		&speech.ID, &speech.UserID, &speech.Title,
		&occasion, &audience, &language, &notes,
		&speech.CreatedAt, &speech.UpdatedAt,
	); err != nil {
		return nil, err
	}

	speech.Occasion = nullStringValue(occasion)
	speech.Audience = nullStringValue(audience)
	speech.Language = nullStringValue(language)
	speech.Notes = nullStringValue(notes)

	return speech, nil
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ SpeechRepository = (*PostgresSpeechRepo)(nil)
