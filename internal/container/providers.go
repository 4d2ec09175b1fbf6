package container

import (
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/garyjia/timesheet-insights/internal/application/port"
	"github.com/garyjia/timesheet-insights/internal/application/service"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/export"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/persistence/repository"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/worker"
	"github.com/garyjia/timesheet-insights/migrations"
	"github.com/garyjia/timesheet-insights/pkg/database"
)

// DatabaseBundle holds database-related components
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database and applies pending migrations
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		source = os.DirFS(cfg.MigrationsDir)
	}
	if err := database.NewMigrator(db, logger).Run(source); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates the dismissal store and the timesheet source
func ProvideRepositories(bundle *DatabaseBundle, dismissalStore string, logger *zap.Logger) (*RepositoryBundle, error) {
	if bundle == nil || bundle.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	var dismissals port.DismissalRepository
	switch dismissalStore {
	case DismissalStoreMemory:
		dismissals = repository.NewMemoryDismissalRepository()
	case DismissalStoreSQLite, "":
		dismissals = repository.NewDismissalRepository(bundle.DB.DB, bundle.TransactionMgr, logger)
	default:
		return nil, fmt.Errorf("unknown dismissal store %q", dismissalStore)
	}

	return &RepositoryBundle{
		Dismissals: dismissals,
		Timesheets: repository.NewTimesheetRepository(bundle.DB.DB, logger),
	}, nil
}

// ServiceDeps holds dependencies required for creating services
type ServiceDeps struct {
	Repos    *RepositoryBundle
	Insights *InsightsConfig
	Logger   *zap.Logger
}

// ProvideServices creates all application services
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Insights == nil {
		return nil, fmt.Errorf("insights config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := NewServiceLogger(deps.Logger)

	dismissals := service.NewDismissalService(deps.Repos.Dismissals, serviceLogger)
	insights := service.NewInsightService(service.InsightConfig{
		DeadlineDays:    deps.Insights.DeadlineDays,
		RealertOnChange: deps.Insights.RealertOnChange,
		Location:        deps.Insights.Location,
	}, dismissals, serviceLogger)

	return &ServiceBundle{
		Insights:   insights,
		Dismissals: dismissals,
	}, nil
}

// WorkerDeps holds dependencies required for creating workers
type WorkerDeps struct {
	Repos      *RepositoryBundle
	Services   *ServiceBundle
	RefreshCfg *RefreshConfig
	Logger     *zap.Logger
}

// ProvideWorkers creates the worker manager and the refresh worker. The
// refresh loop is only registered when periodic refresh is enabled.
func ProvideWorkers(deps *WorkerDeps) (*worker.WorkerManager, *worker.RefreshWorker, error) {
	if deps == nil || deps.Repos == nil || deps.Services == nil || deps.RefreshCfg == nil {
		return nil, nil, fmt.Errorf("worker dependencies are required")
	}
	if deps.Logger == nil {
		return nil, nil, fmt.Errorf("logger is required")
	}

	refresher := worker.NewRefreshWorker(
		deps.Repos.Timesheets,
		deps.Services.Insights,
		worker.RefreshConfig{Interval: deps.RefreshCfg.Interval, Timeout: deps.RefreshCfg.Timeout},
		deps.Logger,
	)

	manager := worker.NewWorkerManager(deps.Logger)
	if deps.RefreshCfg.Enabled {
		manager.Register(refresher)
	}
	return manager, refresher, nil
}

// ProvideWorkbook creates the summary workbook writer
func ProvideWorkbook(cfg *ExportConfig, logger *zap.Logger) *export.SummaryWorkbook {
	return export.NewSummaryWorkbook(cfg.SheetName, logger)
}
