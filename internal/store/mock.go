package store

import (
	"context"
	"errors"
	"sync"
)

// ErrMockNotImplemented is returned when a MockStore method lacks an override.
var ErrMockNotImplemented = errors.New("store.MockStore: method not implemented")

// MockStore is a test double for Store.
type MockStore struct {
	ListFn   func(context.Context, string) ([]Record, error)
	GetFn    func(context.Context, string) (Record, error)
	CreateFn func(context.Context, Record) (Record, error)
	UpdateFn func(context.Context, Record) (Record, error)
	DeleteFn func(context.Context, string) error
	CountFn  func(context.Context, string) (int, error)

	mu              sync.Mutex
	ListCallCount   int
	ListCallArgs    []string
	GetCallArgs     []string
	CreateCallArgs  []Record
	UpdateCallArgs  []Record
	DeleteCallArgs  []string
	DeleteCallCount int
	Closed          bool
}

// NewMockStore returns a MockStore with no overrides.
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) List(ctx context.Context, collection string) ([]Record, error) {
	m.mu.Lock()
	m.ListCallCount++
	m.ListCallArgs = append(m.ListCallArgs, collection)
	fn := m.ListFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, collection)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockStore) Get(ctx context.Context, id string) (Record, error) {
	m.mu.Lock()
	m.GetCallArgs = append(m.GetCallArgs, id)
	fn := m.GetFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}
	return Record{}, ErrMockNotImplemented
}

func (m *MockStore) Create(ctx context.Context, r Record) (Record, error) {
	m.mu.Lock()
	m.CreateCallArgs = append(m.CreateCallArgs, r)
	fn := m.CreateFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, r)
	}
	return Record{}, ErrMockNotImplemented
}

func (m *MockStore) Update(ctx context.Context, r Record) (Record, error) {
	m.mu.Lock()
	m.UpdateCallArgs = append(m.UpdateCallArgs, r)
	fn := m.UpdateFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, r)
	}
	return Record{}, ErrMockNotImplemented
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCallCount++
	m.DeleteCallArgs = append(m.DeleteCallArgs, id)
	fn := m.DeleteFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}
	return ErrMockNotImplemented
}

func (m *MockStore) Count(ctx context.Context, collection string) (int, error) {
	m.mu.Lock()
	fn := m.CountFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, collection)
	}
	return 0, ErrMockNotImplemented
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Snapshot returns copies of the recorded calls.
func (m *MockStore) Snapshot() (updates []Record, deletes []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.UpdateCallArgs...), append([]string(nil), m.DeleteCallArgs...)
}
