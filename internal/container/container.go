package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/timesheet-insights/internal/application/port"
	"github.com/garyjia/timesheet-insights/internal/application/service"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/export"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/worker"
	"github.com/garyjia/timesheet-insights/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	db           *database.DB
	txManager    *sqlite.DB
	repositories *RepositoryBundle
	workbook     *export.SummaryWorkbook

	// Application
	services *ServiceBundle

	// Workers
	workers   *worker.WorkerManager
	refresher *worker.RefreshWorker

	// Lifecycle
	mu     sync.Mutex
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access
type RepositoryBundle struct {
	Dismissals port.DismissalRepository
	Timesheets port.TimesheetSource
}

// ServiceBundle groups all application services
type ServiceBundle struct {
	Insights   service.InsightService
	Dismissals service.DismissalService
}

// HealthStatus represents the health of all components
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components and begins processing:
// database, repositories, services, then workers.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = dbBundle.DB
	c.txManager = dbBundle.TransactionMgr

	repos, err := ProvideRepositories(dbBundle, c.config.Insights.DismissalStore, c.logger)
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	c.repositories = repos

	services, err := ProvideServices(&ServiceDeps{
		Repos:    c.repositories,
		Insights: &c.config.Insights,
		Logger:   c.logger,
	})
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.workbook = ProvideWorkbook(&c.config.Export, c.logger)

	workers, refresher, err := ProvideWorkers(&WorkerDeps{
		Repos:      c.repositories,
		Services:   c.services,
		RefreshCfg: &c.config.Refresh,
		Logger:     c.logger,
	})
	if err != nil {
		c.closeDatabase()
		return fmt.Errorf("failed to initialize workers: %w", err)
	}
	c.workers = workers
	c.refresher = refresher

	var workerCtx context.Context
	workerCtx, c.cancel = context.WithCancel(ctx)

	if !c.config.Refresh.Enabled {
		// load once so reads work without the background loop
		if _, err := c.refresher.RefreshNow(workerCtx); err != nil {
			c.logger.Error("Initial refresh failed", zap.Error(err))
		}
	}
	if err := c.workers.StartAll(workerCtx); err != nil {
		c.cancel()
		c.closeDatabase()
		return fmt.Errorf("failed to start workers: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started successfully",
		zap.String("dismissal_store", c.config.Insights.DismissalStore),
		zap.Bool("refresh_enabled", c.config.Refresh.Enabled))

	return nil
}

// Close gracefully shuts down all components in reverse order
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	if err := c.closeDatabase(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatabase() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	}
	c.db = nil
	return err
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components
func (c *Container) Health() *HealthStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}
	set := func(name string, healthy bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: msg}
		if !healthy {
			status.Overall = false
		}
	}

	switch {
	case c.db == nil:
		set("database", false, "not initialized")
	default:
		if err := c.db.Ping(); err != nil {
			set("database", false, fmt.Sprintf("ping failed: %v", err))
		} else {
			set("database", true, "")
		}
	}

	if c.workers == nil {
		set("workers", false, "not initialized")
	} else if c.config.Refresh.Enabled {
		set("workers", c.workers.IsRunning(), fmt.Sprintf("worker count: %d", c.workers.GetWorkerCount()))
	} else {
		set("workers", true, "periodic refresh disabled")
	}

	if c.refresher == nil {
		set("snapshot", false, "not initialized")
	} else if last, err := c.refresher.Status(); last.IsZero() {
		msg := "no snapshot yet"
		if err != nil {
			msg = err.Error()
		}
		set("snapshot", false, msg)
	} else {
		msg := "refreshed at " + last.Format("2006-01-02T15:04:05Z07:00")
		if err != nil {
			msg += "; last refresh failed: " + err.Error()
		}
		set("snapshot", true, msg)
	}

	return status
}

// Getters for accessing container components

// DB returns the transaction manager
func (c *Container) DB() port.TransactionManager {
	return c.txManager
}

// Repositories returns all repositories
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Refresher returns the refresh worker used for on-demand refreshes
func (c *Container) Refresher() *worker.RefreshWorker {
	return c.refresher
}

// Workbook returns the summary workbook writer
func (c *Container) Workbook() *export.SummaryWorkbook {
	return c.workbook
}

// Workers returns the worker manager
func (c *Container) Workers() *worker.WorkerManager {
	return c.workers
}

// Logger returns the container's logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the key-value Logger interfaces
// used by services and HTTP handlers
type zapLoggerAdapter struct {
	logger *zap.Logger
}

// NewServiceLogger wraps a zap logger for the service layer
func NewServiceLogger(logger *zap.Logger) service.Logger {
	return &zapLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
