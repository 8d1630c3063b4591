package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"attivita/internal/core"
	"attivita/internal/repo"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as RFC3339Nano text so they round-trip with their
// original offset intact.
const timeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListAll implements repo.Lister. Rows come back newest first so the
// presentation layer gets a stable default ordering.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, title, completion_count, description, timestamp
		FROM activities
		ORDER BY timestamp DESC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []core.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

// Insert implements repo.Writer.
func (r *SQLiteRepository) Insert(ctx context.Context, a core.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (id, category, title, completion_count, description, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.Category, a.Title, a.CompletionCount, a.Description,
		a.Timestamp.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	slog.InfoContext(ctx, "Activity saved to SQLite",
		"id", a.ID,
		"title", a.Title,
		"category", a.Category,
		"completion_count", a.CompletionCount)
	return nil
}

// Update implements repo.Writer. Returns repo.ErrNotFound when the id has
// vanished, e.g. under a concurrent delete.
func (r *SQLiteRepository) Update(ctx context.Context, a core.Activity) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET category = ?, title = ?, completion_count = ?, description = ?, timestamp = ?
		WHERE id = ?`,
		a.Category, a.Title, a.CompletionCount, a.Description,
		a.Timestamp.Format(timeLayout), a.ID.String())
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update activity rows affected: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Delete implements repo.Writer. Deleting a missing id is a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "Activity deleted from SQLite", "id", id)
	}
	return nil
}

// Get implements repo.Getter.
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (core.Activity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, category, title, completion_count, description, timestamp
		FROM activities WHERE id = ?`, id.String())
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Activity{}, repo.ErrNotFound
	}
	if err != nil {
		return core.Activity{}, err
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (core.Activity, error) {
	var (
		a     core.Activity
		rawID string
		rawTS string
	)
	if err := row.Scan(&rawID, &a.Category, &a.Title, &a.CompletionCount, &a.Description, &rawTS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Activity{}, err
		}
		return core.Activity{}, fmt.Errorf("scan activity: %w", err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return core.Activity{}, fmt.Errorf("parse activity id %q: %w", rawID, err)
	}
	a.ID = id

	ts, err := time.Parse(timeLayout, rawTS)
	if err != nil {
		return core.Activity{}, fmt.Errorf("parse activity timestamp %q: %w", rawTS, err)
	}
	a.Timestamp = ts

	return a, nil
}
