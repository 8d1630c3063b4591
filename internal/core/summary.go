package core

import "time"

// DailyCount is one point of a weekly series.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ChartSeries is the per-category weekly projection: exactly 7 points,
// zero-filled for days with no matching activity. Recomputed on demand,
// never stored.
type ChartSeries struct {
	Category string       `json:"category"`
	Counts   []DailyCount `json:"counts"`
}

// Summary is the home-screen projection for a reference instant.
type Summary struct {
	MonthlyTotal int        `json:"monthlyTotal"`
	Recent       []Activity `json:"recent"`
	CurrentMonth []Activity `json:"currentMonth"`
}
