package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/insights.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Alerts.DeadlineDays)
	assert.False(t, cfg.Alerts.RealertOnChange)
	assert.Equal(t, "sqlite", cfg.Alerts.DismissalStore)
	assert.True(t, cfg.Refresh.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Refresh.Interval)
	assert.Equal(t, "Summaries", cfg.Export.SheetName)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  path: /tmp/insights-test.db
alerts:
  deadline_days: 14
  realert_on_change: true
  timezone: Europe/Berlin
  dismissal_store: memory
refresh:
  interval: 90s
export:
  sheet_name: Q1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 14, cfg.Alerts.DeadlineDays)
	assert.True(t, cfg.Alerts.RealertOnChange)
	assert.Equal(t, "memory", cfg.Alerts.DismissalStore)
	assert.Equal(t, 90*time.Second, cfg.Refresh.Interval)
	assert.Equal(t, "Q1", cfg.Export.SheetName)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INSIGHTS_DB_PATH", "/tmp/from-env.db")
	t.Setenv("INSIGHTS_ALERTS_DEADLINE_DAYS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Alerts.DeadlineDays)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "x.db"},
			Alerts:   AlertsConfig{DeadlineDays: 7, Timezone: "UTC", DismissalStore: "sqlite"},
			Refresh:  RefreshConfig{Enabled: true, Interval: time.Minute},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no database path", func(c *Config) { c.Database.Path = "" }},
		{"zero deadline window", func(c *Config) { c.Alerts.DeadlineDays = 0 }},
		{"unknown timezone", func(c *Config) { c.Alerts.Timezone = "Mars/Olympus" }},
		{"unknown dismissal store", func(c *Config) { c.Alerts.DismissalStore = "redis" }},
		{"zero refresh interval", func(c *Config) { c.Refresh.Interval = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	disabled := valid()
	disabled.Refresh = RefreshConfig{Enabled: false}
	assert.NoError(t, disabled.Validate())
}

func TestToContainerConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Alerts.Timezone = "America/New_York"

	cc, err := cfg.ToContainerConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.Path, cc.Database.Path)
	assert.Equal(t, 7, cc.Insights.DeadlineDays)
	assert.Equal(t, "America/New_York", cc.Insights.Location.String())
	assert.Equal(t, cfg.Refresh.Interval, cc.Refresh.Interval)
	require.NoError(t, cc.Validate())

	cfg.Alerts.Timezone = "Nowhere/Special"
	_, err = cfg.ToContainerConfig()
	assert.Error(t, err)
}
