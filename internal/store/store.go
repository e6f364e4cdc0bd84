// Package store persists instruction-set versions. Exactly one row is
// active at a time; commits deactivate the old row and insert the new one
// inside a single transaction.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoActiveVersion is returned when no row is marked active.
	ErrNoActiveVersion = errors.New("no active prompt version")
	// ErrVersionConflict is returned when the active version moved on since
	// the caller read it.
	ErrVersionConflict = errors.New("active prompt version changed")
)

// AnyParent disables the parent check on Commit.
const AnyParent int64 = -1

// Version is one persisted instruction set.
type Version struct {
	ID        uuid.UUID `json:"id"`
	Number    int64     `json:"version"`
	Text      string    `json:"prompt_text"`
	Active    bool      `json:"is_active"`
	Notes     string    `json:"version_notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository is the versioned record store.
type Repository interface {
	// LatestActive returns the most recently created active version.
	LatestActive(ctx context.Context) (*Version, error)
	// Commit makes text the single active version. parent is the Number of
	// the version text was derived from (0 when derived from the baseline);
	// if the active version differs, ErrVersionConflict is returned and
	// nothing is written. Pass AnyParent to skip the check.
	Commit(ctx context.Context, text, notes string, parent int64) (*Version, error)
	// List returns up to limit versions, newest first.
	List(ctx context.Context, limit int) ([]Version, error)
	Close()
}

// Open connects to Postgres for postgres:// URLs and treats anything else
// as a SQLite DSN. The schema is created if missing.
func Open(ctx context.Context, url string) (Repository, error) {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return NewPostgres(ctx, url)
	}
	return NewSQLite(ctx, url)
}

func checkParent(current, parent int64) error {
	if parent != AnyParent && current != parent {
		return ErrVersionConflict
	}
	return nil
}
