package alert

import (
	"time"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// PendingCount is the number of unapproved entries visible to a subject
type PendingCount struct {
	SubjectID string `json:"subject_id"`
	Count     int    `json:"count"`
}

// SubjectTrend is a week-over-week hours trend for one scope
type SubjectTrend struct {
	SubjectID   string             `json:"subject_id"`
	SubjectName string             `json:"subject_name"`
	Hours       entity.TrendResult `json:"hours"`
}

// Input holds the already-computed figures one evaluation pass looks at
type Input struct {
	Summaries  []entity.FinancialSummary
	Trends     []SubjectTrend
	Pending    []PendingCount
	Deadlines  []DeadlineStatus
	ComputedAt time.Time
}

// Evaluate applies the fixed rule table and returns the trigger events.
// It is pure: the same input always yields the same events. Conditions of
// different kinds are reported independently; the budget ladder reports only
// its highest rung per project. Dismissals are not consulted here.
func Evaluate(in Input) []entity.TriggerEvent {
	events := make([]entity.TriggerEvent, 0)

	for _, s := range in.Summaries {
		if !s.HasBudget {
			continue
		}
		rung, ok := HighestBudgetRung(s.UtilizationPct)
		if !ok {
			continue
		}
		events = append(events, entity.TriggerEvent{
			Kind:        entity.AlertKindBudget,
			SubjectID:   s.ProjectID,
			SubjectName: s.ProjectName,
			Severity:    rung.Severity,
			Bucket:      rung.Bucket,
			Value:       s.UtilizationPct,
			ComputedAt:  in.ComputedAt,
		})
	}

	for _, d := range in.Deadlines {
		if !d.ShouldAlert {
			continue
		}
		events = append(events, entity.TriggerEvent{
			Kind:        entity.AlertKindDeadline,
			SubjectID:   d.ProjectID,
			SubjectName: d.ProjectName,
			Severity:    entity.SeverityWarning,
			Bucket:      d.Bucket(),
			Value:       float64(d.DaysRemaining),
			ComputedAt:  in.ComputedAt,
		})
	}

	for _, p := range in.Pending {
		if p.Count <= 0 {
			continue
		}
		events = append(events, entity.TriggerEvent{
			Kind:       entity.AlertKindPendingApproval,
			SubjectID:  p.SubjectID,
			Severity:   entity.SeverityWarning,
			Bucket:     BucketPending,
			Value:      float64(p.Count),
			ComputedAt: in.ComputedAt,
		})
	}

	for _, t := range in.Trends {
		delta := t.Hours.DeltaPct
		var bucket string
		var severity entity.Severity
		switch {
		case delta < TrendDropPct:
			bucket, severity = BucketTrendDrop, entity.SeverityInfo
		case delta > TrendRisePct:
			bucket, severity = BucketTrendRise, entity.SeveritySuccess
		default:
			continue
		}
		events = append(events, entity.TriggerEvent{
			Kind:        entity.AlertKindTrend,
			SubjectID:   t.SubjectID,
			SubjectName: t.SubjectName,
			Severity:    severity,
			Bucket:      bucket,
			Value:       delta,
			ComputedAt:  in.ComputedAt,
		})
	}

	return events
}
