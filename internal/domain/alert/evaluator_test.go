package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

func eventsOfKind(events []entity.TriggerEvent, kind entity.AlertKind) []entity.TriggerEvent {
	var out []entity.TriggerEvent
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestEvaluate_Budget(t *testing.T) {
	computedAt := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	in := Input{
		Summaries: []entity.FinancialSummary{
			{ProjectID: "under", HasBudget: true, UtilizationPct: 79.99},
			{ProjectID: "eighty", HasBudget: true, UtilizationPct: 80},
			{ProjectID: "over", ProjectName: "Over Co", HasBudget: true, UtilizationPct: 105},
			{ProjectID: "nobudget", HasBudget: false, UtilizationPct: 0, ActualCost: 5000},
		},
		ComputedAt: computedAt,
	}

	events := Evaluate(in)
	require.Len(t, events, 2, "one event per project, highest rung only")

	assert.Equal(t, "eighty", events[0].SubjectID)
	assert.Equal(t, "80", events[0].Bucket)
	assert.Equal(t, entity.SeverityInfo, events[0].Severity)

	assert.Equal(t, "over", events[1].SubjectID)
	assert.Equal(t, "Over Co", events[1].SubjectName)
	assert.Equal(t, "100", events[1].Bucket)
	assert.Equal(t, entity.SeverityDanger, events[1].Severity)
	assert.Equal(t, 105.0, events[1].Value)
	assert.Equal(t, computedAt, events[1].ComputedAt)
}

func TestEvaluate_MultipleKindsOnOneProject(t *testing.T) {
	in := Input{
		Summaries: []entity.FinancialSummary{
			{ProjectID: "proj-1", HasBudget: true, UtilizationPct: 92},
		},
		Deadlines: []DeadlineStatus{
			{ProjectID: "proj-1", DaysRemaining: 3, Threshold: 7, ShouldAlert: true},
			{ProjectID: "proj-2", DaysRemaining: 12, Threshold: 7, ShouldAlert: false},
		},
	}

	events := Evaluate(in)
	require.Len(t, events, 2)
	assert.Equal(t, entity.AlertKindBudget, events[0].Kind)
	assert.Equal(t, entity.AlertKindDeadline, events[1].Kind)
	assert.Equal(t, "7", events[1].Bucket)
	assert.Equal(t, 3.0, events[1].Value)
	assert.Equal(t, entity.SeverityWarning, events[1].Severity)
}

func TestEvaluate_PendingApprovals(t *testing.T) {
	in := Input{
		Pending: []PendingCount{
			{SubjectID: "mgr-1", Count: 4},
			{SubjectID: "mgr-2", Count: 0},
		},
	}

	events := eventsOfKind(Evaluate(in), entity.AlertKindPendingApproval)
	require.Len(t, events, 1)
	assert.Equal(t, "mgr-1", events[0].SubjectID)
	assert.Equal(t, BucketPending, events[0].Bucket)
	assert.Equal(t, 4.0, events[0].Value)
}

func TestEvaluate_Trend(t *testing.T) {
	tests := []struct {
		name         string
		delta        float64
		wantFire     bool
		wantBucket   string
		wantSeverity entity.Severity
	}{
		{name: "sharp drop", delta: -25, wantFire: true, wantBucket: BucketTrendDrop, wantSeverity: entity.SeverityInfo},
		{name: "drop at boundary", delta: -10, wantFire: false},
		{name: "flat", delta: 0, wantFire: false},
		{name: "rise at boundary", delta: 10, wantFire: false},
		{name: "rise", delta: 10.5, wantFire: true, wantBucket: BucketTrendRise, wantSeverity: entity.SeveritySuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{Trends: []SubjectTrend{
				{SubjectID: "all", SubjectName: "all projects", Hours: entity.TrendResult{DeltaPct: tt.delta}},
			}}

			events := Evaluate(in)
			if !tt.wantFire {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, entity.AlertKindTrend, events[0].Kind)
			assert.Equal(t, tt.wantBucket, events[0].Bucket)
			assert.Equal(t, tt.wantSeverity, events[0].Severity)
		})
	}
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	in := Input{
		Summaries: []entity.FinancialSummary{{ProjectID: "p", HasBudget: true, UtilizationPct: 95}},
		Deadlines: []DeadlineStatus{{ProjectID: "p", DaysRemaining: 2, Threshold: 7, ShouldAlert: true}},
		Pending:   []PendingCount{{SubjectID: "u", Count: 1}},
		Trends:    []SubjectTrend{{SubjectID: "u", Hours: entity.TrendResult{DeltaPct: -40}}},
	}

	assert.Equal(t, Evaluate(in), Evaluate(in))
	assert.Len(t, Evaluate(in), 4)
}

func TestEvaluate_EmptyInput(t *testing.T) {
	events := Evaluate(Input{})
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
