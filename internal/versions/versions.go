// Package versions fronts the record store for instruction sets: reads
// retry and fall back to Baseline, commits must clear a plausibility floor.
package versions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/MikeSquared-Agency/mentor/internal/store"
)

// MinTextLength is the plausibility floor; texts this short or shorter are
// never committed.
const MinTextLength = 20

// ResetNotes is recorded when the baseline is re-committed.
const ResetNotes = "Reset to baseline"

// ErrOptimizationRejected means the proposed text was not usable and the
// store was left unchanged.
var ErrOptimizationRejected = errors.New("optimization produced no usable result")

// Instructions is the text to synthesize with and the version it came from.
// Number is 0 when the text is the baseline fallback.
type Instructions struct {
	Text     string
	Number   int64
	Baseline bool
}

type Adapter struct {
	repo     store.Repository
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

func New(repo store.Repository, attempts int, delay time.Duration, logger *slog.Logger) *Adapter {
	if attempts < 1 {
		attempts = 1
	}
	return &Adapter{repo: repo, attempts: attempts, delay: delay, logger: logger}
}

// Active returns the latest active instructions. Store failures are retried
// with a constant delay until attempts run out or ctx is done; after that,
// and whenever no row is active, the baseline is returned. It never fails.
func (a *Adapter) Active(ctx context.Context) Instructions {
	var v *store.Version
	op := func() error {
		var err error
		v, err = a.repo.LatestActive(ctx)
		if errors.Is(err, store.ErrNoActiveVersion) {
			return backoff.Permanent(err)
		}
		if err != nil {
			a.logger.Warn("read active prompt failed", "error", err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(a.delay), uint64(a.attempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		if !errors.Is(err, store.ErrNoActiveVersion) {
			a.logger.Error("falling back to baseline prompt", "error", err, "attempts", a.attempts)
		}
		return Instructions{Text: Baseline, Baseline: true}
	}
	return Instructions{Text: v.Text, Number: v.Number}
}

// Commit stores text as the new active version. parent is the Number of the
// Instructions the text was derived from.
func (a *Adapter) Commit(ctx context.Context, text, notes string, parent int64) (*store.Version, error) {
	if n := utf8.RuneCountInString(text); n <= MinTextLength {
		return nil, fmt.Errorf("%w: text is %d characters", ErrOptimizationRejected, n)
	}
	v, err := a.repo.Commit(ctx, text, notes, parent)
	if err != nil {
		return nil, fmt.Errorf("commit prompt: %w", err)
	}
	a.logger.Info("prompt committed", "version", v.Number, "notes", notes, "length", len(text))
	return v, nil
}

// Reset makes the baseline active again regardless of what is active now.
func (a *Adapter) Reset(ctx context.Context) (*store.Version, error) {
	return a.Commit(ctx, Baseline, ResetNotes, store.AnyParent)
}

// List returns up to limit versions, newest first.
func (a *Adapter) List(ctx context.Context, limit int) ([]store.Version, error) {
	vs, err := a.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return vs, nil
}

// Notes renders a version note as prefix plus the first n characters of
// sample, e.g. "Manual update: keep it short...".
func Notes(prefix, sample string, n int) string {
	r := []rune(sample)
	if len(r) > n {
		r = r[:n]
	}
	return prefix + string(r) + "..."
}
