// Package analytics implements the pure aggregation engine over activity
// snapshots. Every function takes the activity list and an explicit "now":
// no wall-clock reads, no shared state, safe for concurrent readers.
package analytics

import (
	"sort"
	"strings"
	"time"

	"attivita/internal/core"
)

// RecentLimit is the default size of the recent-activities selection.
const RecentLimit = 3

// CurrentMonth filters to activities dated in now's calendar month.
// Input order is preserved.
func CurrentMonth(activities []core.Activity, now time.Time) []core.Activity {
	year, month := core.MonthOf(now)
	var out []core.Activity
	for _, a := range activities {
		if a.InMonth(year, month) {
			out = append(out, a)
		}
	}
	return out
}

// MonthlyCompletionTotal sums completion counts over the current month.
// An empty month yields 0, never an error.
func MonthlyCompletionTotal(activities []core.Activity, now time.Time) int {
	total := 0
	for _, a := range CurrentMonth(activities, now) {
		total += a.CompletionCount
	}
	return total
}

// Recent returns up to limit activities sorted by timestamp descending.
// The sort is stable so equal timestamps keep their input order.
func Recent(activities []core.Activity, limit int) []core.Activity {
	sorted := make([]core.Activity, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Filter keeps activities whose title contains search (case-insensitive;
// empty matches all) and whose category equals category (empty matches all).
// Both predicates are AND-combined.
func Filter(activities []core.Activity, search, category string) []core.Activity {
	search = strings.ToLower(search)
	var out []core.Activity
	for _, a := range activities {
		if search != "" && !strings.Contains(strings.ToLower(a.Title), search) {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		out = append(out, a)
	}
	return out
}

// UniqueCategories returns the distinct category values present, in
// lexicographic order so callers get a stable ordering for identical inputs.
func UniqueCategories(activities []core.Activity) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range activities {
		if _, ok := seen[a.Category]; ok {
			continue
		}
		seen[a.Category] = struct{}{}
		out = append(out, a.Category)
	}
	sort.Strings(out)
	return out
}

// WeeklySeries builds one 7-point series per category for the week around
// now. When categories is empty it defaults to the categories present in
// this week's activities. Days with no matching activity are zero-filled.
func WeeklySeries(activities []core.Activity, now time.Time, categories []string) []core.ChartSeries {
	start := core.WeekStart(now)

	var week []core.Activity
	for _, a := range activities {
		if core.InWeek(a.Timestamp, start) {
			week = append(week, a)
		}
	}

	if len(categories) == 0 {
		categories = UniqueCategories(week)
	}

	days := core.DaysOfWeek(start)
	series := make([]core.ChartSeries, 0, len(categories))
	for _, cat := range categories {
		counts := make([]core.DailyCount, len(days))
		for i, day := range days {
			next := day.AddDate(0, 0, 1)
			sum := 0
			for _, a := range week {
				if a.Category != cat {
					continue
				}
				if !a.Timestamp.Before(day) && a.Timestamp.Before(next) {
					sum += a.CompletionCount
				}
			}
			counts[i] = core.DailyCount{Date: day, Count: sum}
		}
		series = append(series, core.ChartSeries{Category: cat, Counts: counts})
	}
	return series
}

// Summarize composes the home-screen projection for a reference instant.
func Summarize(activities []core.Activity, now time.Time) core.Summary {
	current := CurrentMonth(activities, now)
	total := 0
	for _, a := range current {
		total += a.CompletionCount
	}
	return core.Summary{
		MonthlyTotal: total,
		Recent:       Recent(activities, RecentLimit),
		CurrentMonth: current,
	}
}
