package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"attivita/internal/core"
	"attivita/internal/repo"

	"github.com/google/uuid"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	r, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "attivita.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	ts := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	a, err := core.NewActivity("Health", "Run", 3, "morning run", ts)
	if err != nil {
		t.Fatalf("new activity: %v", err)
	}

	if err := r.Insert(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := r.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Run" || got.Category != "Health" || got.CompletionCount != 3 {
		t.Errorf("unexpected activity: %+v", got)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ts)
	}

	got.CompletionCount = 0
	if err := r.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = r.Get(ctx, a.ID)
	if got.CompletionCount != 0 {
		t.Errorf("count after update = %d, want 0", got.CompletionCount)
	}

	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.Get(ctx, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestSQLiteListAllOrder(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	older, _ := core.NewActivity("Work", "Plan", 1, "", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	newer, _ := core.NewActivity("Study", "Read", 2, "", time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC))
	if err := r.Insert(ctx, older); err != nil {
		t.Fatalf("insert older: %v", err)
	}
	if err := r.Insert(ctx, newer); err != nil {
		t.Fatalf("insert newer: %v", err)
	}

	list, err := r.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(list))
	}
	if list[0].Title != "Read" || list[1].Title != "Plan" {
		t.Errorf("expected newest first, got %q then %q", list[0].Title, list[1].Title)
	}
}

func TestSQLiteUpdateMissing(t *testing.T) {
	r := newTestRepo(t)
	a := core.Activity{ID: uuid.New(), Title: "x", Timestamp: time.Now()}
	if err := r.Update(context.Background(), a); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("update = %v, want ErrNotFound", err)
	}
}

func TestSQLiteDeleteMissingIsNoop(t *testing.T) {
	r := newTestRepo(t)
	if err := r.Delete(context.Background(), uuid.New()); err != nil {
		t.Errorf("delete of missing id should be a no-op, got %v", err)
	}
}

func TestSQLiteInsertRejectsInvalid(t *testing.T) {
	r := newTestRepo(t)
	bad := core.Activity{ID: uuid.New(), Timestamp: time.Now()}
	if err := r.Insert(context.Background(), bad); !errors.Is(err, core.ErrEmptyTitle) {
		t.Errorf("insert = %v, want ErrEmptyTitle", err)
	}
}
