package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"attivita/internal/core"
	"attivita/internal/repo"

	"github.com/google/uuid"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := core.NewActivity("Health", "Run", 3, "", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new activity: %v", err)
	}
	if err := s.Insert(ctx, a); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Run" {
		t.Errorf("title = %q, want Run", got.Title)
	}

	a.CompletionCount = 0
	if err := s.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.Get(ctx, a.ID)
	if got.CompletionCount != 0 {
		t.Errorf("count = %d, want 0", got.CompletionCount)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
}

func TestStoreInsertRejectsInvalid(t *testing.T) {
	s := New()
	bad := core.Activity{ID: uuid.New(), Timestamp: time.Now()} // empty title
	if err := s.Insert(context.Background(), bad); !errors.Is(err, core.ErrEmptyTitle) {
		t.Errorf("insert = %v, want ErrEmptyTitle", err)
	}
}

func TestStoreUpdateMissing(t *testing.T) {
	s := New()
	a := core.Activity{ID: uuid.New(), Title: "x", Timestamp: time.Now()}
	if err := s.Update(context.Background(), a); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("update = %v, want ErrNotFound", err)
	}
}

func TestStoreDeleteMissingIsNoop(t *testing.T) {
	s := New()
	if err := s.Delete(context.Background(), uuid.New()); err != nil {
		t.Errorf("delete of missing id should be a no-op, got %v", err)
	}
}

func TestStoreListAllIsSnapshot(t *testing.T) {
	ctx := context.Background()
	a, _ := core.NewActivity("Work", "Plan", 1, "", time.Now())
	s := Seed(a)

	list, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	list[0].Title = "mutated"

	again, _ := s.ListAll(ctx)
	if again[0].Title != "Plan" {
		t.Error("ListAll must return a copy, not the backing slice")
	}
}
