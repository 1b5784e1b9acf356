// Package store persists the records the console administers. Two backends
// share the Store interface: SQLite on disk and go-memdb in memory.
package store

import (
	"context"
	"sort"
	"strings"

	appErrors "adminkit/internal/errors"
)

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Store is the record backend.
type Store interface {
	// List returns the records of collection, most recently updated first.
	List(ctx context.Context, collection string) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	// Create assigns an ID when empty, stamps both timestamps and returns the stored record.
	Create(ctx context.Context, r Record) (Record, error)
	// Update replaces a record and refreshes UpdatedAt.
	Update(ctx context.Context, r Record) (Record, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

// Open constructs the backend named by driver. path is ignored for memory.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, path)
	case DriverMemory:
		return NewMemStore()
	default:
		return nil, appErrors.New(appErrors.CodeConfigurationError, "unknown store driver "+driver, nil)
	}
}

func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
}
