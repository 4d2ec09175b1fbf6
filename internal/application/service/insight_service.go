package service

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/garyjia/timesheet-insights/internal/domain/alert"
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
	"github.com/garyjia/timesheet-insights/internal/domain/finance"
	"github.com/garyjia/timesheet-insights/internal/domain/normalize"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// portfolioSubject is the trend subject of the admin scope
const portfolioSubject = "portfolio"

// InsightConfig holds pipeline settings
type InsightConfig struct {
	DeadlineDays    int
	RealertOnChange bool
	// Location is used for zone-less dates and period boundaries
	Location *time.Location
}

// Snapshot is the viewer-independent result of one refresh.
// It is replaced as a whole and never modified after publication.
type Snapshot struct {
	Batch          entity.Batch              `json:"-"`
	Issues         []normalize.Issue         `json:"issues"`
	Rollups        []entity.CostRollup       `json:"rollups"`
	EmployeeTotals []entity.EmployeeTotal    `json:"employee_totals"`
	Summaries      []entity.FinancialSummary `json:"summaries"`
	Portfolio      entity.FinancialSummary   `json:"portfolio"`
	Trend          entity.PeriodTrend        `json:"trend"`
	RefreshedAt    time.Time                 `json:"refreshed_at"`
}

// Report is what one viewer gets to see after evaluation and dismissal filtering
type Report struct {
	Viewer        entity.Viewer             `json:"viewer"`
	Summaries     []entity.FinancialSummary `json:"summaries"`
	Portfolio     entity.FinancialSummary   `json:"portfolio"`
	Trend         entity.PeriodTrend        `json:"trend"`
	Deadlines     []alert.DeadlineStatus    `json:"deadlines"`
	Events        []entity.TriggerEvent     `json:"events"`
	Notifications []entity.Notification     `json:"notifications"`
	Suppressed    int                       `json:"suppressed"`
	GeneratedAt   time.Time                 `json:"generated_at"`
}

// InsightService runs the rollup and alerting pipeline
type InsightService interface {
	// Refresh recomputes the snapshot from raw records and publishes it atomically.
	// On error the previous snapshot stays published.
	Refresh(ctx context.Context, raw entity.RawBatch) (*Snapshot, error)

	// Snapshot returns the last published snapshot
	Snapshot() (*Snapshot, error)

	// Evaluate builds the viewer's report from the published snapshot
	Evaluate(ctx context.Context, viewer entity.Viewer, now time.Time) (*Report, error)

	// EvaluateBatch builds a report from raw records without publishing anything
	EvaluateBatch(ctx context.Context, raw entity.RawBatch, viewer entity.Viewer, now time.Time) (*Report, error)
}

type insightServiceImpl struct {
	config     InsightConfig
	normalizer *normalize.Normalizer
	factory    *alert.Factory
	dismissals DismissalService
	logger     Logger
	now        func() time.Time

	current atomic.Pointer[Snapshot]
}

// NewInsightService creates a new InsightService
func NewInsightService(cfg InsightConfig, dismissals DismissalService, logger Logger) InsightService {
	if cfg.DeadlineDays <= 0 {
		cfg.DeadlineDays = alert.DefaultDeadlineDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &insightServiceImpl{
		config:     cfg,
		normalizer: normalize.NewNormalizer(cfg.Location),
		factory:    alert.NewFactory(alert.FactoryConfig{RealertOnChange: cfg.RealertOnChange}),
		dismissals: dismissals,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh runs normalize, rollup, summary and trend and swaps the snapshot
func (s *insightServiceImpl) Refresh(ctx context.Context, raw entity.RawBatch) (*Snapshot, error) {
	snap, err := s.buildSnapshot(raw, s.now().In(s.config.Location))
	if err != nil {
		s.logger.Error("Refresh failed, keeping previous snapshot", "error", err)
		return nil, err
	}

	s.current.Store(snap)

	s.logger.Info("Snapshot refreshed",
		"projects", len(snap.Batch.Projects),
		"entries", len(snap.Batch.Entries),
		"employees", len(snap.Batch.Employees),
		"issues", len(snap.Issues),
	)
	return snap, nil
}

// Snapshot returns the last published snapshot
func (s *insightServiceImpl) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Evaluate builds the viewer's report from the published snapshot
func (s *insightServiceImpl) Evaluate(ctx context.Context, viewer entity.Viewer, now time.Time) (*Report, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, snap, viewer, now.In(s.config.Location)), nil
}

// EvaluateBatch builds a report from raw records without publishing anything
func (s *insightServiceImpl) EvaluateBatch(ctx context.Context, raw entity.RawBatch, viewer entity.Viewer, now time.Time) (*Report, error) {
	now = now.In(s.config.Location)
	snap, err := s.buildSnapshot(raw, now)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, snap, viewer, now), nil
}

func (s *insightServiceImpl) buildSnapshot(raw entity.RawBatch, now time.Time) (*Snapshot, error) {
	res := s.normalizer.Normalize(raw)
	for _, issue := range res.Issues {
		if issue.Skipped {
			s.logger.Info("Record skipped during normalization", "issue", issue.String())
		}
	}

	rollups, err := finance.Rollup(res.Batch.Entries, res.Batch.Employees)
	if err != nil {
		return nil, fmt.Errorf("rollup: %w", err)
	}

	summaries := finance.SummarizeAll(res.Batch.Projects, rollups)

	return &Snapshot{
		Batch:          res.Batch,
		Issues:         res.Issues,
		Rollups:        rollups,
		EmployeeTotals: finance.EmployeeTotals(rollups),
		Summaries:      summaries,
		Portfolio:      finance.Portfolio(summaries),
		Trend:          finance.WeekOverWeek(res.Batch.Entries, res.Batch.Employees, now),
		RefreshedAt:    now,
	}, nil
}

func (s *insightServiceImpl) evaluate(ctx context.Context, snap *Snapshot, viewer entity.Viewer, now time.Time) *Report {
	sc := newScope(snap, viewer)

	trend := finance.WeekOverWeek(sc.entries, snap.Batch.Employees, now)
	weekStart, _ := finance.Week.Bounds(now)

	in := alert.Input{
		Deadlines: alert.Deadlines(sc.projects, now, s.config.DeadlineDays),
		Trends: []alert.SubjectTrend{{
			// the week is part of the subject so that each week is its own condition
			SubjectID:   sc.trendSubject + "@" + weekStart.Format("2006-01-02"),
			SubjectName: sc.trendName,
			Hours:       trend.Hours,
		}},
		ComputedAt: now,
	}
	if sc.financials {
		in.Summaries = sc.summaries
	}
	if sc.approver {
		in.Pending = []alert.PendingCount{{SubjectID: viewer.UserID, Count: sc.pending}}
	}

	events := alert.Evaluate(in)

	notifications := make([]entity.Notification, 0, len(events))
	for _, e := range events {
		notifications = append(notifications, s.factory.Build(e, []string{viewer.UserID})...)
	}
	sortNotifications(notifications)

	visible := s.dismissals.Filter(ctx, notifications)

	report := &Report{
		Viewer:        viewer,
		Trend:         trend,
		Deadlines:     in.Deadlines,
		Events:        events,
		Notifications: visible,
		Suppressed:    len(notifications) - len(visible),
		GeneratedAt:   now,
	}
	if sc.financials {
		report.Summaries = sc.summaries
		report.Portfolio = finance.Portfolio(sc.summaries)
	}
	return report
}

// sortNotifications orders by severity, then kind, then subject
func sortNotifications(ns []entity.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		a, b := ns[i], ns[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Metadata[entity.MetaKind] != b.Metadata[entity.MetaKind] {
			return a.Metadata[entity.MetaKind] < b.Metadata[entity.MetaKind]
		}
		return a.Metadata[entity.MetaSubjectID] < b.Metadata[entity.MetaSubjectID]
	})
}

// scope is the part of a snapshot a viewer is allowed to act on
type scope struct {
	projects     []entity.Project
	summaries    []entity.FinancialSummary
	entries      []entity.TimeEntry
	pending      int
	financials   bool
	approver     bool
	trendSubject string
	trendName    string
}

// newScope applies recipient scoping. Admins see everything, managers see the
// projects they manage, everyone else sees the projects they logged time on
// and gets no budget or approval alerts.
func newScope(snap *Snapshot, viewer entity.Viewer) scope {
	var sc scope
	visible := make(map[string]bool)

	switch viewer.Role {
	case entity.RoleAdmin:
		sc.financials, sc.approver = true, true
		sc.trendSubject, sc.trendName = portfolioSubject, "all projects"
		for _, p := range snap.Batch.Projects {
			visible[p.ID] = true
		}
	case entity.RoleManager:
		sc.financials, sc.approver = true, true
		sc.trendSubject, sc.trendName = viewer.UserID, "your projects"
		for _, p := range snap.Batch.Projects {
			if p.ManagerID != "" && p.ManagerID == viewer.UserID {
				visible[p.ID] = true
			}
		}
	default:
		sc.trendSubject, sc.trendName = viewer.UserID, "your projects"
		for _, e := range snap.Batch.Entries {
			if e.EmployeeID == viewer.UserID {
				visible[e.ProjectID] = true
			}
		}
	}

	for _, p := range snap.Batch.Projects {
		if visible[p.ID] {
			sc.projects = append(sc.projects, p)
		}
	}
	for _, s := range snap.Summaries {
		if visible[s.ProjectID] {
			sc.summaries = append(sc.summaries, s)
		}
	}
	for _, e := range snap.Batch.Entries {
		switch viewer.Role {
		case entity.RoleAdmin:
		case entity.RoleManager:
			if !visible[e.ProjectID] {
				continue
			}
		default:
			if e.EmployeeID != viewer.UserID {
				continue
			}
		}
		sc.entries = append(sc.entries, e)
		if !e.Approved {
			sc.pending++
		}
	}

	return sc
}
