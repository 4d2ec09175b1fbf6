package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/garyjia/timesheet-insights/internal/application/port"
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// MemoryDismissalRepository keeps dismissals in process memory.
// Dismissals are lost on restart.
type MemoryDismissalRepository struct {
	mu      sync.RWMutex
	records map[string]entity.DismissalRecord
}

// NewMemoryDismissalRepository creates an empty in-memory dismissal store
func NewMemoryDismissalRepository() *MemoryDismissalRepository {
	return &MemoryDismissalRepository{records: make(map[string]entity.DismissalRecord)}
}

// Get returns the subset of keys that have been dismissed
func (r *MemoryDismissalRepository) Get(ctx context.Context, keys []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dismissed := make(map[string]bool)
	for _, k := range keys {
		if _, ok := r.records[k]; ok {
			dismissed[k] = true
		}
	}
	return dismissed, nil
}

// Put stores a dismissal, keeping the first dismissal time
func (r *MemoryDismissalRepository) Put(ctx context.Context, record entity.DismissalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(record)
	return nil
}

// PutMany stores several dismissals under one lock
func (r *MemoryDismissalRepository) PutMany(ctx context.Context, records []entity.DismissalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		r.put(record)
	}
	return nil
}

func (r *MemoryDismissalRepository) put(record entity.DismissalRecord) {
	if _, exists := r.records[record.AlertKey]; !exists {
		r.records[record.AlertKey] = record
	}
}

// List returns every stored dismissal, newest first
func (r *MemoryDismissalRepository) List(ctx context.Context) ([]entity.DismissalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]entity.DismissalRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].DismissedAt.Equal(records[j].DismissedAt) {
			return records[i].DismissedAt.After(records[j].DismissedAt)
		}
		return records[i].AlertKey < records[j].AlertKey
	})
	return records, nil
}

// Verify interface compliance
var _ port.DismissalRepository = (*MemoryDismissalRepository)(nil)
