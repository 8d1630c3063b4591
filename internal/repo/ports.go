package repo

import (
	"context"
	"errors"

	"attivita/internal/core"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an update or get targets an activity whose
// id no longer exists. Deletes of missing ids are a no-op instead.
var ErrNotFound = errors.New("activity not found")

// Ports for outbound adapters.
type (
	// Lister returns a snapshot of every persisted activity, in repository
	// order. The aggregation engine treats the snapshot as immutable.
	Lister interface {
		ListAll(ctx context.Context) ([]core.Activity, error)
	}

	// Writer persists activity mutations.
	Writer interface {
		Insert(ctx context.Context, a core.Activity) error
		// Update persists the mutable fields of an existing record.
		// Returns ErrNotFound if the id vanished.
		Update(ctx context.Context, a core.Activity) error
		// Delete removes permanently. Deleting a missing id is a no-op.
		Delete(ctx context.Context, id uuid.UUID) error
	}

	// Getter fetches one activity by id, or ErrNotFound.
	Getter interface {
		Get(ctx context.Context, id uuid.UUID) (core.Activity, error)
	}

	// Repository is the full activity store surface.
	Repository interface {
		Lister
		Writer
		Getter
	}
)
