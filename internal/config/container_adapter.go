package config

import (
	"github.com/garyjia/timesheet-insights/internal/container"
)

// ToContainerConfig converts the file-based configuration into the
// container's configuration structure
func (c *Config) ToContainerConfig() (*container.Config, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Insights: container.InsightsConfig{
			DeadlineDays:    c.Alerts.DeadlineDays,
			RealertOnChange: c.Alerts.RealertOnChange,
			Location:        loc,
			DismissalStore:  c.Alerts.DismissalStore,
		},
		Refresh: container.RefreshConfig{
			Enabled:  c.Refresh.Enabled,
			Interval: c.Refresh.Interval,
			Timeout:  c.Refresh.Timeout,
		},
		Export: container.ExportConfig{
			SheetName: c.Export.SheetName,
		},
	}, nil
}
