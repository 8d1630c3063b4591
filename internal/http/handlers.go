package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"attivita/internal/analytics"
	"attivita/internal/core"
	"attivita/internal/repo"

	"github.com/google/uuid"
)

// handleSummary serves the home-screen projection: monthly completion
// total, the recent selection, and the current-month list.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	activities, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary snapshot error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load activities")
		return
	}
	writeJSON(w, http.StatusOK, analytics.Summarize(activities, time.Now()))
}

// handleListActivities serves the searchable, category-filterable list.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List snapshot error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load activities")
		return
	}

	search := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")
	filtered := analytics.Filter(activities, search, category)
	if filtered == nil {
		filtered = []core.Activity{}
	}
	writeJSON(w, http.StatusOK, filtered)
}

// handleWeeklyChart serves one 7-day series per category for the current
// week. An optional category parameter restricts the series to one.
func (s *Server) handleWeeklyChart(w http.ResponseWriter, r *http.Request) {
	activities, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Chart snapshot error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load activities")
		return
	}

	var categories []string
	if c := r.URL.Query().Get("category"); c != "" {
		categories = []string{c}
	}
	series := analytics.WeeklySeries(activities, time.Now(), categories)
	if series == nil {
		series = []core.ChartSeries{}
	}
	writeJSON(w, http.StatusOK, series)
}

type categoryResponse struct {
	Name         string            `json:"name"`
	Presentation core.Presentation `json:"presentation"`
}

// handleCategories serves the distinct categories present, with their
// display hints, in a stable order for filter pills.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	activities, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Categories snapshot error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load activities")
		return
	}

	out := []categoryResponse{}
	for _, name := range analytics.UniqueCategories(activities) {
		out = append(out, categoryResponse{Name: name, Presentation: core.PresentationFor(name)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePreviousMonths serves the transient placeholder activities seeded
// by the last rollover. These never come from the repository.
func (s *Server) handlePreviousMonths(w http.ResponseWriter, r *http.Request) {
	placeholders := s.rollover.PreviousMonths()
	if placeholders == nil {
		placeholders = []core.Activity{}
	}
	writeJSON(w, http.StatusOK, placeholders)
}

type createActivityRequest struct {
	Category    string     `json:"category"`
	Title       string     `json:"title"`
	Goal        int        `json:"goal"`
	Description string     `json:"description"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ts := time.Time{}
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	a, err := s.activity.Create(r.Context(),
		sanitizeInput(req.Category),
		sanitizeInput(req.Title),
		req.Goal,
		req.Description,
		ts)
	if err != nil {
		if errors.Is(err, core.ErrEmptyTitle) || errors.Is(err, core.ErrInvalidGoal) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Activity create error", "error", err, "title", req.Title)
		writeError(w, http.StatusInternalServerError, "failed to save activity")
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusCreated, a)
}

type updateActivityRequest struct {
	Category        *string    `json:"category,omitempty"`
	Title           *string    `json:"title,omitempty"`
	CompletionCount *int       `json:"completionCount,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	var req updateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := s.activity.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "activity not found")
			return
		}
		slog.ErrorContext(r.Context(), "Activity fetch error", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to load activity")
		return
	}

	if req.Category != nil {
		a.Category = sanitizeInput(*req.Category)
	}
	if req.Title != nil {
		a.Title = sanitizeInput(*req.Title)
	}
	if req.CompletionCount != nil {
		a.CompletionCount = *req.CompletionCount
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Timestamp != nil {
		a.Timestamp = *req.Timestamp
	}

	if err := s.activity.Edit(r.Context(), a); err != nil {
		switch {
		case errors.Is(err, core.ErrNegativeCount), errors.Is(err, core.ErrZeroTimestamp):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusNotFound, "activity not found")
		default:
			slog.ErrorContext(r.Context(), "Activity update error", "error", err, "id", id)
			writeError(w, http.StatusInternalServerError, "failed to update activity")
		}
		return
	}

	s.invalidateSnapshot()
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity id")
		return
	}

	if err := s.activity.Delete(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Activity delete error", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete activity")
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusNoContent)
}
