package backend

import (
	"fmt"
	"log/slog"

	"attivita/internal/amqp"
	"attivita/internal/memory"
	"attivita/internal/repo"
	"attivita/internal/storage"
)

// Type selects the activity store implementation.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// AMQP (optional; events are skipped when unset)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Result contains the assembled backend and its optional event client.
type Result struct {
	Repo    repo.Repository
	Events  *amqp.Client // nil when AMQP is not configured
	Cleanup CleanupFunc
}

// New assembles a repository (and event client, when configured) for the
// given backend type.
func New(cfg Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLiteBackend:
		return newSQLite(cfg, logger)
	default:
		logger.Info("Initialized memory backend")
		return &Result{Repo: memory.New(), Cleanup: func() error { return nil }}, nil
	}
}

func newSQLite(cfg Config, logger *slog.Logger) (*Result, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	// AMQP is optional; a broker outage never blocks local writes.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", events != nil)

	cleanup := func() error {
		if events != nil {
			if err := events.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		return sqliteRepo.Close()
	}

	return &Result{Repo: sqliteRepo, Events: events, Cleanup: cleanup}, nil
}
