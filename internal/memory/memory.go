// Package memory provides an in-memory activity repository, used as the
// default dev backend and as the test fake for the service layer.
package memory

import (
	"context"
	"sync"

	"attivita/internal/core"
	"attivita/internal/repo"

	"github.com/google/uuid"
)

type Store struct {
	mu    sync.Mutex
	items []core.Activity
}

func New() *Store {
	return &Store{}
}

// Seed pre-populates the store, bypassing validation. Test helper.
func Seed(activities ...core.Activity) *Store {
	return &Store{items: append([]core.Activity(nil), activities...)}
}

// ListAll returns a snapshot copy in insertion order.
func (s *Store) ListAll(_ context.Context) ([]core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Activity, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Insert(_ context.Context, a core.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, a)
	return nil
}

func (s *Store) Update(_ context.Context, a core.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == a.ID {
			s.items[i] = a
			return nil
		}
	}
	return repo.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	// Missing id is a no-op, deletes are idempotent.
	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.ID == id {
			return a, nil
		}
	}
	return core.Activity{}, repo.ErrNotFound
}
