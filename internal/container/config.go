// Package container wires the insight pipeline together and owns the
// lifecycle of its database, services and background workers.
package container

import (
	"fmt"
	"time"
)

// Dismissal store kinds
const (
	DismissalStoreSQLite = "sqlite"
	DismissalStoreMemory = "memory"
)

// Config holds all configuration for the Container
type Config struct {
	Database DatabaseConfig
	Insights InsightsConfig
	Refresh  RefreshConfig
	Export   ExportConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MigrationsDir replaces the embedded migrations when set
	MigrationsDir string
}

// InsightsConfig holds pipeline and alerting settings
type InsightsConfig struct {
	DeadlineDays    int
	RealertOnChange bool
	Location        *time.Location
	DismissalStore  string
}

// RefreshConfig holds refresh worker settings
type RefreshConfig struct {
	Enabled  bool
	Interval time.Duration
	Timeout  time.Duration
}

// ExportConfig holds workbook export settings
type ExportConfig struct {
	SheetName string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/insights.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Insights: InsightsConfig{
			DeadlineDays:   7,
			Location:       time.UTC,
			DismissalStore: DismissalStoreSQLite,
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
			Timeout:  30 * time.Second,
		},
		Export: ExportConfig{
			SheetName: "Summaries",
		},
	}
}

// Validate checks that required configuration values are present
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Insights.DismissalStore {
	case DismissalStoreSQLite, DismissalStoreMemory:
	default:
		return fmt.Errorf("unknown dismissal store %q", c.Insights.DismissalStore)
	}
	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive")
	}
	return nil
}
