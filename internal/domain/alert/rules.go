// Package alert evaluates the fixed business thresholds over financial
// summaries and trends and turns the resulting trigger events into notifications.
package alert

import (
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// Fixed business thresholds. These are contracts, not tunables.
const (
	// DefaultDeadlineDays is the deadline look-ahead window in days
	DefaultDeadlineDays = 7

	// TrendDropPct and TrendRisePct bound the quiet zone of week-over-week hours
	TrendDropPct = -10.0
	TrendRisePct = 10.0

	// thresholdTolerance absorbs float noise so that exactly 80/90/100 fire
	thresholdTolerance = 1e-9
)

// Trend buckets
const (
	BucketTrendDrop = "drop"
	BucketTrendRise = "rise"
	BucketPending   = "pending"
)

// BudgetRung is one step of the budget utilization ladder
type BudgetRung struct {
	Threshold float64
	Bucket    string
	Severity  entity.Severity
}

// budgetLadder is ordered highest rung first
var budgetLadder = []BudgetRung{
	{Threshold: 100, Bucket: "100", Severity: entity.SeverityDanger},
	{Threshold: 90, Bucket: "90", Severity: entity.SeverityWarning},
	{Threshold: 80, Bucket: "80", Severity: entity.SeverityInfo},
}

// BudgetLadder returns a copy of the budget rungs, highest first
func BudgetLadder() []BudgetRung {
	out := make([]BudgetRung, len(budgetLadder))
	copy(out, budgetLadder)
	return out
}

// HighestBudgetRung returns the highest rung reached by utilizationPct.
// A project past 100% satisfies every rung but reports only the top one.
func HighestBudgetRung(utilizationPct float64) (BudgetRung, bool) {
	for _, rung := range budgetLadder {
		if utilizationPct >= rung.Threshold-thresholdTolerance {
			return rung, true
		}
	}
	return BudgetRung{}, false
}
