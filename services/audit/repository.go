package audit

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository. Persistence is a property of
// the surrounding service; this implementation serves tests and single-process
// deployments.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Save stores a record
func (r *MemoryRepository) Save(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

// List returns a snapshot of all saved records
func (r *MemoryRepository) List() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of saved records
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
