package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/timesheet-insights/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/timesheet-insights/migrations"
	"github.com/garyjia/timesheet-insights/pkg/database"
)

// setupTestDB opens a migrated database in a temp directory
func setupTestDB(t *testing.T) (*sql.DB, *sqlite.DB) {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "insights.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(migrations.FS))
	return db.DB, sqlite.NewDB(db.DB, logger)
}

func exec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
}
