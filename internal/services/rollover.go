package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"attivita/internal/core"
	"attivita/internal/log"
	"attivita/internal/repo"

	"github.com/google/uuid"
)

// PlaceholderMonths is how many preceding months get a synthetic
// placeholder activity seeded at rollover.
const PlaceholderMonths = 5

// RolloverReport summarizes one rollover pass.
type RolloverReport struct {
	Examined int
	Reset    int
	Failed   int
	Seeded   int
	Skipped  bool // already ran for this month
}

// RolloverProcessor zeroes stale completion counters at session start and
// seeds the transient previous-months placeholders. Reset mutations go to
// the repository; placeholders live only in memory and are never persisted.
type RolloverProcessor struct {
	store repo.Repository

	mu           sync.Mutex
	lastYear     int
	lastMonth    time.Month
	placeholders []core.Activity
}

func NewRolloverProcessor(store repo.Repository) *RolloverProcessor {
	return &RolloverProcessor{store: store}
}

// Run performs the monthly rollover for the month containing now. Once a
// pass completes cleanly, running again in the same month is a no-op: the
// reset is naturally idempotent, the guard just avoids redundant
// repository writes. A pass with update failures is re-run on the next
// call until one succeeds for every record.
//
// Per-record update failures do not abort the pass; they are counted and
// reported in aggregate. A vanished record (concurrent delete) is skipped
// silently, the next session self-heals.
func (p *RolloverProcessor) Run(ctx context.Context, now time.Time) (RolloverReport, error) {
	year, month := core.MonthOf(now)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastYear == year && p.lastMonth == month {
		return RolloverReport{Skipped: true}, nil
	}

	activities, err := p.store.ListAll(ctx)
	if err != nil {
		return RolloverReport{}, fmt.Errorf("list activities for rollover: %w", err)
	}

	report := RolloverReport{Examined: len(activities)}
	for _, a := range activities {
		if a.InMonth(year, month) {
			continue
		}
		if a.CompletionCount == 0 {
			continue
		}
		a.CompletionCount = 0
		if err := p.store.Update(ctx, a); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// Deleted underneath us; nothing left to reset.
				continue
			}
			report.Failed++
			slog.WarnContext(ctx, "Rollover reset failed for activity",
				log.FieldActivityID, a.ID,
				log.FieldError, err)
			continue
		}
		report.Reset++
	}

	p.placeholders = buildPlaceholders(now)
	report.Seeded = len(p.placeholders)

	// A pass with failures leaves the guard unset so the next tick retries
	// the stragglers; the reset is idempotent.
	if report.Failed == 0 {
		p.lastYear = year
		p.lastMonth = month
	}

	slog.InfoContext(ctx, "Monthly rollover complete",
		log.FieldComponent, log.ComponentRollover,
		log.FieldYear, year,
		log.FieldMonth, int(month),
		"examined", report.Examined,
		"reset", report.Reset,
		"failed", report.Failed,
		"seeded", report.Seeded)
	return report, nil
}

// PreviousMonths returns the placeholder activities seeded by the last
// rollover. The slice is a copy; placeholders never reach the repository.
func (p *RolloverProcessor) PreviousMonths() []core.Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.Activity, len(p.placeholders))
	copy(out, p.placeholders)
	return out
}

// buildPlaceholders synthesizes one zero-count activity per preceding
// month, offsets 1..PlaceholderMonths, most recent first. Display only.
func buildPlaceholders(now time.Time) []core.Activity {
	// Offset from the first of the month: AddDate normalizes, so stepping
	// back from day 29-31 can skip a short month or stay in the current one.
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	placeholders := make([]core.Activity, 0, PlaceholderMonths)
	for offset := 1; offset <= PlaceholderMonths; offset++ {
		date := monthStart.AddDate(0, -offset, 0)
		placeholders = append(placeholders, core.Activity{
			ID:              uuid.New(),
			Category:        core.DefaultCategory,
			Title:           fmt.Sprintf("Activity from %s", date.Month()),
			CompletionCount: 0,
			Description:     "This is a default activity from a previous month.",
			Timestamp:       date,
		})
	}
	return placeholders
}
