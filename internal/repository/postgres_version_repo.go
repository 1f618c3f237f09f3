package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/speechbox/internal/model"
)

// versionColumns はスピーチバージョン行のSELECT対象カラム。
const versionColumns = `id, speech_id, version_label, tone, target_duration_minutes, script_text, is_preferred, created_at`

// PostgresSpeechVersionRepo はPostgreSQLを使用したスピーチバージョンリポジトリ。
type PostgresSpeechVersionRepo struct {
	db *sql.DB
}

// NewPostgresSpeechVersionRepo はPostgresSpeechVersionRepoを生成する。
func NewPostgresSpeechVersionRepo(db *sql.DB) *PostgresSpeechVersionRepo {
	return &PostgresSpeechVersionRepo{db: db}
}

// FindByIDAndSpeech は指定IDかつ指定スピーチ配下のバージョンを取得する。見つからない場合はnilを返す。
func (r *PostgresSpeechVersionRepo) FindByIDAndSpeech(ctx context.Context, id, speechID string) (*model.SpeechVersion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM speech_versions WHERE id = $1 AND speech_id = $2`,
		id, speechID,
	)

	version, err := scanSpeechVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("バージョンの取得に失敗しました: %w", err)
	}

	return version, nil
}

// Create はバージョンを作成する。
func (r *PostgresSpeechVersionRepo) Create(ctx context.Context, version *model.SpeechVersion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO speech_versions (id, speech_id, version_label, tone, target_duration_minutes, script_text, is_preferred, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		version.ID, version.SpeechID,
		nullString(version.VersionLabel), nullString(version.Tone),
		nullInt32(version.TargetDurationMinutes),
		version.ScriptText, version.IsPreferred, version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("バージョンの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdatePartial は指定されたフィールドのみを条件付きUPDATEで適用する。
// バージョンにupdated_atは存在しないため、タイムスタンプは更新しない。
func (r *PostgresSpeechVersionRepo) UpdatePartial(ctx context.Context, id, speechID string, fields SpeechVersionUpdate) (*model.SpeechVersion, error) {
	if !fields.HasChanges() {
		return nil, fmt.Errorf("更新フィールドが指定されていません")
	}

	args := []any{id, speechID}
	var setClauses []string
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.VersionLabel != nil {
		set("version_label", nullString(*fields.VersionLabel))
	}
	if fields.Tone != nil {
		set("tone", nullString(*fields.Tone))
	}
	if fields.TargetDurationMinutes != nil {
		set("target_duration_minutes", int32(*fields.TargetDurationMinutes))
	}
	if fields.ScriptText != nil {
		set("script_text", *fields.ScriptText)
	}
	if fields.IsPreferred != nil {
		set("is_preferred", *fields.IsPreferred)
	}

	query := `UPDATE speech_versions SET ` + strings.Join(setClauses, ", ") +
		` WHERE id = $1 AND speech_id = $2 RETURNING ` + versionColumns

	row := r.db.QueryRowContext(ctx, query, args...)

	version, err := scanSpeechVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("バージョンの更新に失敗しました: %w", err)
	}

	return version, nil
}

// Delete は指定IDかつ指定スピーチ配下のバージョンを削除する。
// 削除された行数が0の場合はfalseを返す。
func (r *PostgresSpeechVersionRepo) Delete(ctx context.Context, id, speechID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM speech_versions WHERE id = $1 AND speech_id = $2`,
		id, speechID,
	)
	if err != nil {
		return false, fmt.Errorf("バージョンの削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除行数の取得に失敗しました: %w", err)
	}

	return affected > 0, nil
}

// ListBySpeechID はスピーチの全バージョンを作成日時順で返す。
// preferredOnlyがtrueの場合はis_preferred = trueの行のみに絞る。
func (r *PostgresSpeechVersionRepo) ListBySpeechID(ctx context.Context, speechID string, preferredOnly bool) ([]*model.SpeechVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM speech_versions WHERE speech_id = $1`
	if preferredOnly {
		query += ` AND is_preferred = true`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, speechID)
	if err != nil {
		return nil, fmt.Errorf("バージョン一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var versions []*model.SpeechVersion
	for rows.Next() {
		version, err := scanSpeechVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("バージョン一覧の読み取りに失敗しました: %w", err)
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("バージョン一覧の走査に失敗しました: %w", err)
	}

	return versions, nil
}

// scanSpeechVersion は1行をmodel.SpeechVersionに読み取る。
func scanSpeechVersion(row rowScanner) (*model.SpeechVersion, error) {
	version := &model.SpeechVersion{}
	var versionLabel, tone sql.NullString
	var duration sql.NullInt32

	if err := row.Scan(
		&version.ID, &version.SpeechID,
		&versionLabel, &tone, &duration,
		&version.ScriptText, &version.IsPreferred, &version.CreatedAt,
	); err != nil {
		return nil, err
	}

	version.VersionLabel = nullStringValue(versionLabel)
	version.Tone = nullStringValue(tone)
	version.TargetDurationMinutes = nullInt32Value(duration)

	return version, nil
}

// nullInt32 は*intをsql.NullInt32に変換する。nilは未設定として扱う。
func nullInt32(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

// nullInt32Value はsql.NullInt32から*intを取得する。
func nullInt32Value(ns sql.NullInt32) *int {
	if !ns.Valid {
		return nil
	}
	v := int(ns.Int32)
	return &v
}

// compile-time interface check
var _ SpeechVersionRepository = (*PostgresSpeechVersionRepo)(nil)
