package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"attivita/internal/amqp"
	"attivita/internal/core"
	"attivita/internal/log"
	"attivita/internal/repo"

	"github.com/google/uuid"
)

// EventPublisher pushes activity change events onto the message bus.
// Implemented by *amqp.Client; nil disables publishing.
type EventPublisher interface {
	PublishActivityEvent(ctx context.Context, ev *amqp.ActivityEvent) error
}

// ActivityService orchestrates activity writes across the repository and
// the event bus. Writes land in the repository first; event publishing is
// best-effort and never fails the request.
type ActivityService struct {
	store     repo.Repository
	publisher EventPublisher
}

func NewActivityService(store repo.Repository, publisher EventPublisher) *ActivityService {
	return &ActivityService{store: store, publisher: publisher}
}

// Create validates and persists a new activity. The goal becomes the
// initial completion count; a zero timestamp defaults to now.
func (s *ActivityService) Create(ctx context.Context, category, title string, goal int, description string, timestamp time.Time) (core.Activity, error) {
	a, err := core.NewActivity(category, title, goal, description, timestamp)
	if err != nil {
		return core.Activity{}, err
	}

	if err := s.store.Insert(ctx, a); err != nil {
		return core.Activity{}, fmt.Errorf("save activity: %w", err)
	}

	s.publish(ctx, amqp.NewActivityEvent(amqp.EventActivityCreated, a.ID))
	return a, nil
}

// Edit persists changes to title, category, description, timestamp, or the
// completion counter. Unlike creation, an emptied title is tolerated; the
// counter still cannot go negative.
func (s *ActivityService) Edit(ctx context.Context, a core.Activity) error {
	if a.CompletionCount < 0 {
		return core.ErrNegativeCount
	}
	if a.Timestamp.IsZero() {
		return core.ErrZeroTimestamp
	}

	if err := s.store.Update(ctx, a); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}

	s.publish(ctx, amqp.NewActivityEvent(amqp.EventActivityUpdated, a.ID))
	return nil
}

// Delete removes an activity permanently. There is no undo.
func (s *ActivityService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}

	s.publish(ctx, amqp.NewActivityEvent(amqp.EventActivityDeleted, id))
	return nil
}

// Get fetches a single activity by id.
func (s *ActivityService) Get(ctx context.Context, id uuid.UUID) (core.Activity, error) {
	return s.store.Get(ctx, id)
}

func (s *ActivityService) publish(ctx context.Context, ev *amqp.ActivityEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishActivityEvent(ctx, ev); err != nil {
		// The repository write already succeeded, so just log.
		slog.ErrorContext(ctx, "Failed to publish activity event",
			"event", ev.Kind,
			log.FieldActivityID, ev.ActivityID,
			log.FieldError, err)
	}
}
