package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/timesheet-insights/internal/application/port"
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/persistence/sqlite"
)

// maxKeysPerQuery stays below SQLite's default host parameter limit
const maxKeysPerQuery = 500

// DismissalRepository implements port.DismissalRepository on SQLite
type DismissalRepository struct {
	db        *sql.DB
	txManager port.TransactionManager
	logger    *zap.Logger
}

// NewDismissalRepository creates a new dismissal repository
func NewDismissalRepository(db *sql.DB, txManager port.TransactionManager, logger *zap.Logger) port.DismissalRepository {
	return &DismissalRepository{
		db:        db,
		txManager: txManager,
		logger:    logger,
	}
}

// Get returns the subset of keys that have been dismissed
func (r *DismissalRepository) Get(ctx context.Context, keys []string) (map[string]bool, error) {
	dismissed := make(map[string]bool)

	for start := 0; start < len(keys); start += maxKeysPerQuery {
		end := start + maxKeysPerQuery
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]interface{}, len(chunk))
		for i, k := range chunk {
			args[i] = k
		}

		query := "SELECT alert_key FROM alert_dismissals WHERE alert_key IN (" + placeholders + ")"
		rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
		if err != nil {
			r.logger.Error("Failed to query dismissals", zap.Int("keys", len(chunk)), zap.Error(err))
			return nil, fmt.Errorf("failed to query dismissals: %w", err)
		}

		for rows.Next() {
			var key string
			if err := rows.Scan(&key); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan dismissal: %w", err)
			}
			dismissed[key] = true
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read dismissals: %w", err)
		}
	}

	return dismissed, nil
}

// Put stores a dismissal. The first dismissal time of a key is kept.
func (r *DismissalRepository) Put(ctx context.Context, record entity.DismissalRecord) error {
	query := `INSERT OR IGNORE INTO alert_dismissals (alert_key, dismissed_at) VALUES (?, ?)`

	if _, err := r.getExecutor(ctx).ExecContext(ctx, query, record.AlertKey, record.DismissedAt.UTC()); err != nil {
		r.logger.Error("Failed to store dismissal",
			zap.String("alert_key", record.AlertKey),
			zap.Error(err))
		return fmt.Errorf("failed to store dismissal: %w", err)
	}
	return nil
}

// PutMany stores several dismissals in one transaction
func (r *DismissalRepository) PutMany(ctx context.Context, records []entity.DismissalRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, record := range records {
			if err := r.Put(txCtx, record); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns every stored dismissal, newest first
func (r *DismissalRepository) List(ctx context.Context) ([]entity.DismissalRecord, error) {
	query := `SELECT alert_key, dismissed_at FROM alert_dismissals ORDER BY dismissed_at DESC, alert_key`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list dismissals", zap.Error(err))
		return nil, fmt.Errorf("failed to list dismissals: %w", err)
	}
	defer rows.Close()

	records := make([]entity.DismissalRecord, 0)
	for rows.Next() {
		var record entity.DismissalRecord
		var dismissedAt time.Time
		if err := rows.Scan(&record.AlertKey, &dismissedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dismissal: %w", err)
		}
		record.DismissedAt = dismissedAt
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *DismissalRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.DismissalRepository = (*DismissalRepository)(nil)
