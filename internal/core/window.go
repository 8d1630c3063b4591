package core

import "time"

// Calendar window helpers. All weekly bucketing is anchored on Monday:
// downstream chart ordering depends on Monday-first weeks, so a different
// anchor is a behavior change, not a style choice.

// MonthOf returns the calendar year and month the instant falls in.
func MonthOf(t time.Time) (int, time.Month) {
	return t.Year(), t.Month()
}

// SameMonth reports whether two instants fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// WeekStart returns the Monday at or before t, truncated to midnight in
// t's location.
func WeekStart(t time.Time) time.Time {
	// time.Weekday has Sunday=0; shift so Monday=0.
	daysBack := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -daysBack)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// WeekEnd returns the last day of the week starting at start (inclusive).
func WeekEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, 6)
}

// DaysOfWeek returns the 7 days of the week starting at start, in order.
func DaysOfWeek(start time.Time) []time.Time {
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// InWeek reports whether t falls within the week starting at start,
// i.e. [start, start+7d).
func InWeek(t, start time.Time) bool {
	return !t.Before(start) && t.Before(start.AddDate(0, 0, 7))
}
