package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// commitLockKey serialises commits across service instances.
const commitLockKey = 0x6d656e746f72

const postgresSchema = `
CREATE TABLE IF NOT EXISTS prompts (
	id            UUID PRIMARY KEY,
	version       BIGINT NOT NULL UNIQUE,
	prompt_text   TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT false,
	version_notes TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS prompts_single_active ON prompts (is_active) WHERE is_active;`

type Postgres struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Postgres)(nil)

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

// LatestActive fetches the active version.
func (s *Postgres) LatestActive(ctx context.Context) (*Version, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, version, prompt_text, is_active, version_notes, created_at
		FROM prompts
		WHERE is_active
		ORDER BY created_at DESC, version DESC
		LIMIT 1`)

	v, err := scanVersion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveVersion
	}
	if err != nil {
		return nil, fmt.Errorf("select active prompt: %w", err)
	}
	return v, nil
}

// Commit deactivates the current version and inserts text as the new active
// version in one transaction.
func (s *Postgres) Commit(ctx context.Context, text, notes string, parent int64) (*Version, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(commitLockKey)); err != nil {
		return nil, fmt.Errorf("lock prompts: %w", err)
	}

	var current, latest int64
	err = tx.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT version FROM prompts WHERE is_active ORDER BY created_at DESC, version DESC LIMIT 1), 0),
			COALESCE(MAX(version), 0)
		FROM prompts`).Scan(&current, &latest)
	if err != nil {
		return nil, fmt.Errorf("read current version: %w", err)
	}
	if err := checkParent(current, parent); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE prompts SET is_active = false WHERE is_active`); err != nil {
		return nil, fmt.Errorf("deactivate prompts: %w", err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO prompts (id, version, prompt_text, is_active, version_notes)
		VALUES ($1, $2, $3, true, $4)
		RETURNING id, version, prompt_text, is_active, version_notes, created_at`,
		uuid.New(), latest+1, text, notes,
	)
	v, err := scanVersion(row)
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return v, nil
}

// List returns the newest versions first.
func (s *Postgres) List(ctx context.Context, limit int) ([]Version, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, version, prompt_text, is_active, version_notes, created_at
		FROM prompts
		ORDER BY version DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		v, err := scanVersion(rows)
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

func scanVersion(row pgx.Row) (*Version, error) {
	var v Version
	if err := row.Scan(&v.ID, &v.Number, &v.Text, &v.Active, &v.Notes, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}
