package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErrors "adminkit/internal/errors"

	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"
)

const recordsTable = "records"

var memSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		recordsTable: {
			Name: recordsTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"collection": {
					Name:    "collection",
					Indexer: &memdb.StringFieldIndex{Field: "Collection"},
				},
			},
		},
	},
}

// MemStore keeps records in an in-memory go-memdb database.
type MemStore struct {
	db  *memdb.MemDB
	now func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() (*MemStore, error) {
	db, err := memdb.NewMemDB(memSchema)
	if err != nil {
		return nil, storeFailed("create memdb", err)
	}
	return &MemStore{db: db, now: time.Now}, nil
}

// List implements Store.
func (m *MemStore) List(_ context.Context, collection string) ([]Record, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(recordsTable, "collection", collection)
	if err != nil {
		return nil, storeFailed("list records", err)
	}
	var records []Record
	for raw := it.Next(); raw != nil; raw = it.Next() {
		records = append(records, *raw.(*Record))
	}
	sortNewestFirst(records)
	return records, nil
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, id string) (Record, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(recordsTable, "id", id)
	if err != nil {
		return Record{}, storeFailed("get record", err)
	}
	if raw == nil {
		return Record{}, notFound(id)
	}
	return *raw.(*Record), nil
}

// Create implements Store.
func (m *MemStore) Create(_ context.Context, r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := m.now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	r.Title = strings.TrimSpace(r.Title)

	txn := m.db.Txn(true)
	defer txn.Abort()

	old, err := txn.First(recordsTable, "id", r.ID)
	if err != nil {
		return Record{}, storeFailed("check record", err)
	}
	if old != nil {
		return Record{}, appErrors.New(appErrors.CodeDuplicate, fmt.Sprintf("record %s already exists", r.ID), nil)
	}
	stored := r
	if err := txn.Insert(recordsTable, &stored); err != nil {
		return Record{}, storeFailed("insert record", err)
	}
	txn.Commit()
	return r, nil
}

// Update implements Store.
func (m *MemStore) Update(_ context.Context, r Record) (Record, error) {
	if err := r.Validate(); err != nil {
		return Record{}, err
	}

	txn := m.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(recordsTable, "id", r.ID)
	if err != nil {
		return Record{}, storeFailed("get record", err)
	}
	if raw == nil {
		return Record{}, notFound(r.ID)
	}
	r.CreatedAt = raw.(*Record).CreatedAt
	r.UpdatedAt = m.now().UTC()
	r.Title = strings.TrimSpace(r.Title)

	stored := r
	if err := txn.Insert(recordsTable, &stored); err != nil {
		return Record{}, storeFailed("update record", err)
	}
	txn.Commit()
	return r, nil
}

// Delete implements Store.
func (m *MemStore) Delete(_ context.Context, id string) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(recordsTable, "id", id)
	if err != nil {
		return storeFailed("get record", err)
	}
	if raw == nil {
		return notFound(id)
	}
	if err := txn.Delete(recordsTable, raw); err != nil {
		return storeFailed("delete record", err)
	}
	txn.Commit()
	return nil
}

// Count implements Store.
func (m *MemStore) Count(ctx context.Context, collection string) (int, error) {
	records, err := m.List(ctx, collection)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Close implements Store.
func (m *MemStore) Close() error { return nil }
