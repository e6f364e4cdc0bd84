package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// runRepositoryTests checks the behaviour every backend must share.
func runRepositoryTests(t *testing.T, open func(t *testing.T) Repository) {
	t.Run("empty store has no active version", func(t *testing.T) {
		repo := open(t)
		if _, err := repo.LatestActive(context.Background()); !errors.Is(err, ErrNoActiveVersion) {
			t.Fatalf("expected ErrNoActiveVersion, got %v", err)
		}
	})

	t.Run("commit activates exactly one version", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		first, err := repo.Commit(ctx, "rules v1", "first", 0)
		if err != nil {
			t.Fatalf("first commit: %v", err)
		}
		if first.Number != 1 || !first.Active {
			t.Fatalf("unexpected first version %+v", first)
		}

		second, err := repo.Commit(ctx, "rules v2", "second", first.Number)
		if err != nil {
			t.Fatalf("second commit: %v", err)
		}
		if second.Number != 2 {
			t.Errorf("expected version 2, got %d", second.Number)
		}

		active, err := repo.LatestActive(ctx)
		if err != nil {
			t.Fatalf("LatestActive: %v", err)
		}
		if active.ID != second.ID || active.Text != "rules v2" || active.Notes != "second" {
			t.Errorf("unexpected active version %+v", active)
		}

		all, err := repo.List(ctx, 10)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 versions, got %d", len(all))
		}
		activeCount := 0
		for _, v := range all {
			if v.Active {
				activeCount++
			}
		}
		if activeCount != 1 {
			t.Errorf("expected exactly one active version, got %d", activeCount)
		}
		if all[0].Number != 2 || all[1].Number != 1 {
			t.Errorf("expected newest first, got %d then %d", all[0].Number, all[1].Number)
		}
	})

	t.Run("stale parent is rejected without writing", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		if _, err := repo.Commit(ctx, "rules v1", "", 0); err != nil {
			t.Fatalf("commit: %v", err)
		}
		if _, err := repo.Commit(ctx, "stale edit", "", 0); !errors.Is(err, ErrVersionConflict) {
			t.Fatalf("expected ErrVersionConflict, got %v", err)
		}

		active, err := repo.LatestActive(ctx)
		if err != nil {
			t.Fatalf("LatestActive: %v", err)
		}
		if active.Text != "rules v1" {
			t.Errorf("conflicting commit must not change the active text, got %q", active.Text)
		}
		all, _ := repo.List(ctx, 10)
		if len(all) != 1 {
			t.Errorf("expected no extra rows, got %d", len(all))
		}
	})

	t.Run("any parent skips the check", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		if _, err := repo.Commit(ctx, "rules v1", "", 0); err != nil {
			t.Fatalf("commit: %v", err)
		}
		v, err := repo.Commit(ctx, "baseline", "Reset to baseline", AnyParent)
		if err != nil {
			t.Fatalf("reset commit: %v", err)
		}
		if v.Number != 2 {
			t.Errorf("expected version 2, got %d", v.Number)
		}
	})

	t.Run("concurrent commits from one parent produce one winner", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			won       int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Commit(ctx, "candidate", "", 0)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					won++
				case errors.Is(err, ErrVersionConflict):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if won != 1 || conflicts != writers-1 {
			t.Errorf("expected 1 winner and %d conflicts, got %d and %d", writers-1, won, conflicts)
		}
	})

	t.Run("list respects limit", func(t *testing.T) {
		repo := open(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			if _, err := repo.Commit(ctx, "rules", "", AnyParent); err != nil {
				t.Fatalf("commit: %v", err)
			}
		}
		got, err := repo.List(ctx, 2)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 || got[0].Number != 3 {
			t.Errorf("unexpected list %+v", got)
		}
	})
}
