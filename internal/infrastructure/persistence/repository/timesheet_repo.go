package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/timesheet-insights/internal/application/port"
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
	"github.com/garyjia/timesheet-insights/internal/infrastructure/persistence/sqlite"
)

// TimesheetRepository reads raw timesheet records. Numeric and date columns
// are returned as stored so that coercion happens in one place.
type TimesheetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTimesheetRepository creates a new timesheet repository
func NewTimesheetRepository(db *sql.DB, logger *zap.Logger) port.TimesheetSource {
	return &TimesheetRepository{
		db:     db,
		logger: logger,
	}
}

// LoadBatch reads all employees, projects and time entries
func (r *TimesheetRepository) LoadBatch(ctx context.Context) (entity.RawBatch, error) {
	var batch entity.RawBatch
	var err error

	if batch.Employees, err = r.loadEmployees(ctx); err != nil {
		return entity.RawBatch{}, err
	}
	if batch.Projects, err = r.loadProjects(ctx); err != nil {
		return entity.RawBatch{}, err
	}
	if batch.Entries, err = r.loadEntries(ctx); err != nil {
		return entity.RawBatch{}, err
	}

	r.logger.Debug("Timesheet batch loaded",
		zap.Int("employees", len(batch.Employees)),
		zap.Int("projects", len(batch.Projects)),
		zap.Int("entries", len(batch.Entries)))
	return batch, nil
}

func (r *TimesheetRepository) loadEmployees(ctx context.Context) ([]entity.RawEmployee, error) {
	rows, err := r.getExecutor(ctx).QueryContext(ctx, `SELECT id, name, hourly_rate FROM employees ORDER BY id`)
	if err != nil {
		r.logger.Error("Failed to query employees", zap.Error(err))
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []entity.RawEmployee
	for rows.Next() {
		var id string
		var name, rate sql.NullString
		if err := rows.Scan(&id, &name, &rate); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, entity.RawEmployee{
			ID:         id,
			Name:       name.String,
			HourlyRate: nullable(rate),
		})
	}
	return employees, rows.Err()
}

func (r *TimesheetRepository) loadProjects(ctx context.Context) ([]entity.RawProject, error) {
	query := `SELECT id, name, budget, end_date, status, manager_id FROM projects ORDER BY id`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query projects", zap.Error(err))
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []entity.RawProject
	for rows.Next() {
		var id string
		var name, budget, endDate, status, managerID sql.NullString
		if err := rows.Scan(&id, &name, &budget, &endDate, &status, &managerID); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, entity.RawProject{
			ID:        id,
			Name:      name.String,
			Budget:    nullable(budget),
			EndDate:   nullable(endDate),
			Status:    status.String,
			ManagerID: managerID.String,
		})
	}
	return projects, rows.Err()
}

func (r *TimesheetRepository) loadEntries(ctx context.Context) ([]entity.RawTimeEntry, error) {
	query := `SELECT id, employee_id, project_id, entry_date, hours, approved FROM time_entries ORDER BY id`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query time entries", zap.Error(err))
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.RawTimeEntry
	for rows.Next() {
		var id string
		var employeeID, projectID, date, hours sql.NullString
		var approved int64
		if err := rows.Scan(&id, &employeeID, &projectID, &date, &hours, &approved); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entity.RawTimeEntry{
			ID:         id,
			EmployeeID: employeeID.String,
			ProjectID:  projectID.String,
			Date:       nullable(date),
			Hours:      nullable(hours),
			Approved:   approved != 0,
		})
	}
	return entries, rows.Err()
}

func (r *TimesheetRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// nullable maps SQL NULL to a nil raw value
func nullable(s sql.NullString) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}

// Verify interface compliance
var _ port.TimesheetSource = (*TimesheetRepository)(nil)
