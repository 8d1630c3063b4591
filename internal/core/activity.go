package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategory is assigned to synthetic placeholder activities.
const DefaultCategory = "Default"

type (
	// Activity is a single loggable action. The ID is assigned at creation
	// and never reused; every other field is user-editable.
	Activity struct {
		ID              uuid.UUID
		Category        string
		Title           string
		CompletionCount int
		Description     string
		Timestamp       time.Time
	}
)

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrNegativeCount = errors.New("negative completion count")
	ErrInvalidGoal   = errors.New("completion goal must be at least 1")
	ErrZeroTimestamp = errors.New("timestamp cannot be zero")
)

// NewActivity builds a validated activity for the creation flow. The goal
// becomes the initial completion count and must be at least 1; a zero
// timestamp defaults to now.
func NewActivity(category, title string, goal int, description string, timestamp time.Time) (Activity, error) {
	if goal < 1 {
		return Activity{}, ErrInvalidGoal
	}
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	a := Activity{
		ID:              uuid.New(),
		Category:        strings.TrimSpace(category),
		Title:           strings.TrimSpace(title),
		CompletionCount: goal,
		Description:     description,
		Timestamp:       timestamp,
	}
	if err := a.Validate(); err != nil {
		return Activity{}, err
	}
	return a, nil
}

// Validate enforces the creation-time invariants. Post-creation edits may
// blank the title; callers on the edit path validate the changed fields only.
func (a Activity) Validate() error {
	if len(strings.TrimSpace(a.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(a.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if a.CompletionCount < 0 {
		return ErrNegativeCount
	}
	if a.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

// InMonth reports whether the activity is dated to the given year and month.
func (a Activity) InMonth(year int, month time.Month) bool {
	y, m := MonthOf(a.Timestamp)
	return y == year && m == month
}
