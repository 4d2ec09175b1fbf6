package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Export   ExportConfig   `mapstructure:"export"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// AlertsConfig holds threshold evaluation settings
type AlertsConfig struct {
	DeadlineDays    int    `mapstructure:"deadline_days"`
	RealertOnChange bool   `mapstructure:"realert_on_change"`
	Timezone        string `mapstructure:"timezone"`
	DismissalStore  string `mapstructure:"dismissal_store"` // sqlite or memory
}

// RefreshConfig holds snapshot refresh settings
type RefreshConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig holds workbook export settings
type ExportConfig struct {
	SheetName string `mapstructure:"sheet_name"`
}

// Load loads configuration from an optional YAML file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.path", "data/insights.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("alerts.deadline_days", 7)
	v.SetDefault("alerts.realert_on_change", false)
	v.SetDefault("alerts.timezone", "UTC")
	v.SetDefault("alerts.dismissal_store", "sqlite")

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.interval", 5*time.Minute)
	v.SetDefault("refresh.timeout", 30*time.Second)

	v.SetDefault("export.sheet_name", "Summaries")
}

// bindEnvVars binds the short environment names used in deployments
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "INSIGHTS_PORT")
	_ = v.BindEnv("database.path", "INSIGHTS_DB_PATH")
	_ = v.BindEnv("logger.level", "INSIGHTS_LOG_LEVEL")
	_ = v.BindEnv("alerts.timezone", "INSIGHTS_TIMEZONE")
}

// Location returns the configured time zone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Alerts.Timezone)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Alerts.DeadlineDays <= 0 {
		return fmt.Errorf("alerts.deadline_days must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("alerts.timezone: %w", err)
	}
	switch c.Alerts.DismissalStore {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("alerts.dismissal_store must be sqlite or memory, got %q", c.Alerts.DismissalStore)
	}

	if c.Refresh.Enabled && c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive when refresh is enabled")
	}

	return nil
}
