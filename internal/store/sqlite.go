package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeLayout sorts lexically in creation order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS prompts (
	id            TEXT PRIMARY KEY,
	version       INTEGER NOT NULL UNIQUE,
	prompt_text   TEXT NOT NULL,
	is_active     INTEGER NOT NULL DEFAULT 0,
	version_notes TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS prompts_single_active ON prompts (is_active) WHERE is_active = 1;`

// SQLite is the single-file store used for local runs and tests.
type SQLite struct {
	db *sql.DB
}

var _ Repository = (*SQLite)(nil)

// NewSQLite opens dsn and creates the schema. A single connection is kept
// so commits are serialised and ":memory:" databases survive between calls.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() {
	s.db.Close()
}

func (s *SQLite) LatestActive(ctx context.Context) (*Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, version, prompt_text, is_active, version_notes, created_at
		FROM prompts
		WHERE is_active = 1
		ORDER BY created_at DESC, version DESC
		LIMIT 1`)

	v, err := scanSQLiteVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveVersion
	}
	if err != nil {
		return nil, fmt.Errorf("select active prompt: %w", err)
	}
	return v, nil
}

func (s *SQLite) Commit(ctx context.Context, text, notes string, parent int64) (*Version, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current, latest int64
	err = tx.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT version FROM prompts WHERE is_active = 1 ORDER BY created_at DESC, version DESC LIMIT 1), 0),
			COALESCE(MAX(version), 0)
		FROM prompts`).Scan(&current, &latest)
	if err != nil {
		return nil, fmt.Errorf("read current version: %w", err)
	}
	if err := checkParent(current, parent); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE prompts SET is_active = 0 WHERE is_active = 1`); err != nil {
		return nil, fmt.Errorf("deactivate prompts: %w", err)
	}

	v := &Version{
		ID:        uuid.New(),
		Number:    latest + 1,
		Text:      text,
		Active:    true,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO prompts (id, version, prompt_text, is_active, version_notes, created_at)
		VALUES (?, ?, ?, 1, ?, ?)`,
		v.ID.String(), v.Number, v.Text, v.Notes, v.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return v, nil
}

func (s *SQLite) List(ctx context.Context, limit int) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, prompt_text, is_active, version_notes, created_at
		FROM prompts
		ORDER BY version DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanSQLiteVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt row: %w", err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompt rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteVersion(row rowScanner) (*Version, error) {
	var (
		v         Version
		id        string
		active    int
		createdAt string
	)
	if err := row.Scan(&id, &v.Number, &v.Text, &active, &v.Notes, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	v.ID = parsed
	v.Active = active == 1
	v.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return &v, nil
}
