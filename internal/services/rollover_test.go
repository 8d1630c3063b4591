package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"attivita/internal/core"
	"attivita/internal/memory"
	"attivita/internal/repo"

	"github.com/google/uuid"
)

func mkActivity(title string, count int, ts time.Time) core.Activity {
	return core.Activity{
		ID:              uuid.New(),
		Category:        "Health",
		Title:           title,
		CompletionCount: count,
		Timestamp:       ts,
	}
}

func TestRolloverResetsStaleCounters(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

	stale := mkActivity("Run", 7, time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC))
	fresh := mkActivity("Read", 5, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC))
	alreadyZero := mkActivity("Swim", 0, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	store := memory.Seed(stale, fresh, alreadyZero)

	p := NewRolloverProcessor(store)
	report, err := p.Run(ctx, now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Examined != 3 {
		t.Errorf("examined = %d, want 3", report.Examined)
	}
	if report.Reset != 1 {
		t.Errorf("reset = %d, want 1", report.Reset)
	}
	if report.Failed != 0 {
		t.Errorf("failed = %d, want 0", report.Failed)
	}
	if report.Seeded != PlaceholderMonths {
		t.Errorf("seeded = %d, want %d", report.Seeded, PlaceholderMonths)
	}

	got, _ := store.Get(ctx, stale.ID)
	if got.CompletionCount != 0 {
		t.Errorf("stale counter = %d, want 0", got.CompletionCount)
	}
	// Only the counter is touched.
	if got.Title != "Run" || got.Category != "Health" || !got.Timestamp.Equal(stale.Timestamp) {
		t.Errorf("reset must not change other fields: %+v", got)
	}

	got, _ = store.Get(ctx, fresh.ID)
	if got.CompletionCount != 5 {
		t.Errorf("current-month counter = %d, want 5", got.CompletionCount)
	}
}

func TestRolloverIdempotentWithinMonth(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)
	store := memory.Seed(mkActivity("Run", 7, now.AddDate(0, -1, 0)))

	p := NewRolloverProcessor(store)
	if _, err := p.Run(ctx, now); err != nil {
		t.Fatalf("first run: %v", err)
	}

	report, err := p.Run(ctx, now.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !report.Skipped {
		t.Error("second run in the same month should be skipped")
	}

	// A new month runs again.
	report, err = p.Run(ctx, now.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("next-month run: %v", err)
	}
	if report.Skipped {
		t.Error("a new month must not be skipped")
	}
}

func TestRolloverPlaceholders(t *testing.T) {
	cases := []struct {
		name       string
		now        time.Time
		wantMonths []time.Month
		wantYears  []int
	}{
		{
			name:       "mid month",
			now:        time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC),
			wantMonths: []time.Month{time.April, time.March, time.February, time.January, time.December},
			wantYears:  []int{2024, 2024, 2024, 2024, 2023},
		},
		{
			// Day 31 must not skip short months or stay in the current one.
			name:       "last day of month",
			now:        time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC),
			wantMonths: []time.Month{time.April, time.March, time.February, time.January, time.December},
			wantYears:  []int{2024, 2024, 2024, 2024, 2023},
		},
		{
			name:       "day 31 over february",
			now:        time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC),
			wantMonths: []time.Month{time.February, time.January, time.December, time.November, time.October},
			wantYears:  []int{2024, 2024, 2023, 2023, 2023},
		},
		{
			name:       "january crosses the year",
			now:        time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			wantMonths: []time.Month{time.December, time.November, time.October, time.September, time.August},
			wantYears:  []int{2023, 2023, 2023, 2023, 2023},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()

			p := NewRolloverProcessor(store)
			if _, err := p.Run(ctx, tc.now); err != nil {
				t.Fatalf("run: %v", err)
			}

			placeholders := p.PreviousMonths()
			if len(placeholders) != PlaceholderMonths {
				t.Fatalf("placeholders = %d, want %d", len(placeholders), PlaceholderMonths)
			}
			for i, ph := range placeholders {
				if ph.Category != core.DefaultCategory {
					t.Errorf("placeholder %d category = %q, want %q", i, ph.Category, core.DefaultCategory)
				}
				if ph.CompletionCount != 0 {
					t.Errorf("placeholder %d count = %d, want 0", i, ph.CompletionCount)
				}
				if ph.Timestamp.Month() != tc.wantMonths[i] || ph.Timestamp.Year() != tc.wantYears[i] {
					t.Errorf("placeholder %d dated %v %d, want %v %d",
						i, ph.Timestamp.Month(), ph.Timestamp.Year(), tc.wantMonths[i], tc.wantYears[i])
				}
				if core.SameMonth(ph.Timestamp, tc.now) {
					t.Errorf("placeholder %d landed in the current month", i)
				}
			}

			// Separation invariant: placeholders never reach the repository.
			persisted, err := store.ListAll(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(persisted) != 0 {
				t.Fatalf("placeholders leaked into the repository: %d records", len(persisted))
			}
		})
	}
}

// failingStore wraps the memory store and fails updates for marked ids.
type failingStore struct {
	*memory.Store
	failIDs  map[uuid.UUID]error
	attempts int
}

func (f *failingStore) Update(ctx context.Context, a core.Activity) error {
	f.attempts++
	if err, ok := f.failIDs[a.ID]; ok {
		return err
	}
	return f.Store.Update(ctx, a)
}

func TestRolloverToleratesPerRecordFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

	broken := mkActivity("Broken", 4, now.AddDate(0, -1, 0))
	vanished := mkActivity("Vanished", 2, now.AddDate(0, -2, 0))
	fine := mkActivity("Fine", 6, now.AddDate(0, -1, 0))

	store := &failingStore{
		Store: memory.Seed(broken, vanished, fine),
		failIDs: map[uuid.UUID]error{
			broken.ID:   errors.New("disk I/O error"),
			vanished.ID: repo.ErrNotFound,
		},
	}

	p := NewRolloverProcessor(store)
	report, err := p.Run(ctx, now)
	if err != nil {
		t.Fatalf("a per-record failure must not abort the pass: %v", err)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1 (NotFound is tolerated, not counted)", report.Failed)
	}
	if report.Reset != 1 {
		t.Errorf("reset = %d, want 1", report.Reset)
	}

	// The healthy record was still processed.
	got, _ := store.Get(ctx, fine.ID)
	if got.CompletionCount != 0 {
		t.Errorf("healthy record counter = %d, want 0", got.CompletionCount)
	}
}

func TestRolloverRetriesAfterFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC)

	broken := mkActivity("Broken", 4, now.AddDate(0, -1, 0))
	store := &failingStore{
		Store:   memory.Seed(broken),
		failIDs: map[uuid.UUID]error{broken.ID: errors.New("disk I/O error")},
	}

	p := NewRolloverProcessor(store)
	report, err := p.Run(ctx, now)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("failed = %d, want 1", report.Failed)
	}

	// The store recovers; the next run in the same month must not be
	// skipped while a record is still stale.
	delete(store.failIDs, broken.ID)
	report, err = p.Run(ctx, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if report.Skipped {
		t.Fatal("a run after failures must retry, not skip")
	}
	if report.Reset != 1 {
		t.Errorf("reset = %d, want 1", report.Reset)
	}
	got, _ := store.Get(ctx, broken.ID)
	if got.CompletionCount != 0 {
		t.Errorf("counter = %d, want 0 after retry", got.CompletionCount)
	}

	// With everything reset the guard engages again.
	report, err = p.Run(ctx, now.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if !report.Skipped {
		t.Error("a clean pass should arm the month guard")
	}
}

func TestRolloverListFailureSurfaces(t *testing.T) {
	p := NewRolloverProcessor(&listFailStore{})
	if _, err := p.Run(context.Background(), time.Now()); err == nil {
		t.Error("a repository list failure must surface to the caller")
	}
}

type listFailStore struct {
	memory.Store
}

func (l *listFailStore) ListAll(context.Context) ([]core.Activity, error) {
	return nil, errors.New("database is locked")
}
