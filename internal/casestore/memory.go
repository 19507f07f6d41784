package casestore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	byCase  map[string]Record
	ordered []Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCase: make(map[string]Record),
	}
}

// Save implements Store. Records without a case ID (reviews are keyed
// by transaction) are still listed.
func (m *MemoryStore) Save(ctx context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.CaseID != "" {
		m.byCase[record.CaseID] = record
	}
	m.ordered = append(m.ordered, record)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, caseID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.byCase[caseID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// List implements Store, newest first.
func (m *MemoryStore) List(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]Record(nil), m.ordered...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
