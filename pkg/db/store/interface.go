package store

import (
	"context"
	"errors"

	"github.com/Confuzu/ExifData-Seach-and-Move/pkg/db/models"
)

// Standard store errors that IndexStore implementations should use.
var (
	// ErrRecordNotFound is returned when no record exists for the
	// requested path. Non-fatal for callers rewriting paths after a move.
	ErrRecordNotFound = errors.New("store: record not found")

	// ErrStoreUnavailable is returned when the underlying storage cannot
	// be reached or is corrupt. Fatal for the invoking operation only.
	ErrStoreUnavailable = errors.New("store: storage unavailable")
)

// IndexStore defines the interface for the persistent metadata index
type IndexStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Upsert replaces the record for path with the given metadata,
	// creating it if absent. Safe for concurrent calls on distinct
	// paths; concurrent upserts to the same path resolve
	// last-writer-wins by completion order.
	Upsert(ctx context.Context, path string, metadata map[string]string) error

	// Get returns the record for path, or ErrRecordNotFound.
	Get(ctx context.Context, path string) (*models.Record, error)

	// ExistingPaths reports which of the given paths have a live record.
	ExistingPaths(ctx context.Context, paths []string) (map[string]bool, error)

	// RewritePath changes a record's identity from oldPath to newPath,
	// preserving all metadata. Returns ErrRecordNotFound when oldPath
	// has no record.
	RewritePath(ctx context.Context, oldPath, newPath string) error

	// Scan returns all records matching the predicate. Re-invocable;
	// no ordering guarantee beyond stability for an unmodified store.
	Scan(ctx context.Context, pred models.Predicate) ([]models.Record, error)

	// GroupBy aggregates all records by the value stored under key.
	// Records lacking key are excluded from every group.
	GroupBy(ctx context.Context, key string) (map[string][]string, error)

	// Count returns the number of live records.
	Count(ctx context.Context) (int64, error)
}
