package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/Truvis/CodeDrop/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestPutAndGetRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)

	want := storage.RunRecord{
		ID:         "run-roll",
		Kind:       storage.RunKindRoll,
		Seed:       -42,
		SeedSource: storage.SeedSourceClient,
		LowerBound: 1,
		Span:       10,
		Sampling:   "rejection",
		Count:      4,
		Outcomes:   []int{3, 10, 1, 7},
		CreatedAt:  createdAt,
	}
	if err := store.PutRun(ctx, want); err != nil {
		t.Fatalf("put run: %v", err)
	}

	got, err := store.GetRun(ctx, "run-roll")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("get run = %+v, want %+v", got, want)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetRun(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutRunValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  storage.RunRecord
	}{
		{name: "missing id", run: storage.RunRecord{Kind: storage.RunKindFlip, Count: 1, Outcomes: []int{1}}},
		{name: "unknown kind", run: storage.RunRecord{ID: "a", Kind: "shuffle", Count: 1, Outcomes: []int{1}}},
		{name: "count mismatch", run: storage.RunRecord{ID: "b", Kind: storage.RunKindFlip, Count: 2, Outcomes: []int{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.PutRun(ctx, tt.run); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestPutRunRejectsDuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	run := storage.RunRecord{ID: "dup", Kind: storage.RunKindFlip, Bias: 50, Count: 1, Outcomes: []int{0}}
	if err := store.PutRun(ctx, run); err != nil {
		t.Fatalf("put run: %v", err)
	}
	if err := store.PutRun(ctx, run); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		run := storage.RunRecord{
			ID:        id,
			Kind:      storage.RunKindFlip,
			Bias:      50,
			Count:     1,
			Outcomes:  []int{i % 2},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.PutRun(ctx, run); err != nil {
			t.Fatalf("put run %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "third" || runs[1].ID != "second" {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}

	all, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs with default limit, got %d", len(all))
	}
}

func TestCanceledContext(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.PutRun(ctx, storage.RunRecord{ID: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := store.GetRun(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	run := storage.RunRecord{ID: "keep", Kind: storage.RunKindFlip, Bias: 90, Count: 2, Outcomes: []int{1, 1}}
	if err := store.PutRun(context.Background(), run); err != nil {
		t.Fatalf("put run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.GetRun(context.Background(), "keep")
	if err != nil {
		t.Fatalf("get run after reopen: %v", err)
	}
	if got.Bias != 90 || len(got.Outcomes) != 2 {
		t.Fatalf("unexpected run after reopen: %+v", got)
	}
}
