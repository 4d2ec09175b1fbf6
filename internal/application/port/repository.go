package port

import (
	"context"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// DismissalRepository persists dismissed alert keys.
// Dismissals are monotonic: once stored, a key stays dismissed.
type DismissalRepository interface {
	// Get returns the subset of keys that have been dismissed
	Get(ctx context.Context, keys []string) (map[string]bool, error)

	// Put stores a dismissal; storing an existing key again is not an error
	Put(ctx context.Context, record entity.DismissalRecord) error

	// PutMany stores several dismissals atomically
	PutMany(ctx context.Context, records []entity.DismissalRecord) error

	// List returns every stored dismissal, newest first
	List(ctx context.Context) ([]entity.DismissalRecord, error)
}

// TimesheetSource loads the raw records the pipeline runs on
type TimesheetSource interface {
	LoadBatch(ctx context.Context) (entity.RawBatch, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
