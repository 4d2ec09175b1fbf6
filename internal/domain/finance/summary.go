package finance

import (
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// Summarize derives the financial summary of one project.
// Only rollups of the given project are counted. Percentages are 0 when the
// project has no budget; utilization has no upper clamp.
func Summarize(project entity.Project, rollups []entity.CostRollup) entity.FinancialSummary {
	var actualCost, actualHours float64
	for _, r := range rollups {
		if r.ProjectID != project.ID {
			continue
		}
		actualCost += r.Cost
		actualHours += r.Hours
	}

	s := newSummary(project.Budget, actualCost, actualHours)
	s.ProjectID = project.ID
	s.ProjectName = project.DisplayName()
	return s
}

// SummarizeAll summarizes every project in input order
func SummarizeAll(projects []entity.Project, rollups []entity.CostRollup) []entity.FinancialSummary {
	byProject := make(map[string][]entity.CostRollup)
	for _, r := range rollups {
		byProject[r.ProjectID] = append(byProject[r.ProjectID], r)
	}

	summaries := make([]entity.FinancialSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, Summarize(p, byProject[p.ID]))
	}
	return summaries
}

// Portfolio aggregates project summaries. Percentages are recomputed from
// the unrounded totals rather than averaged.
func Portfolio(summaries []entity.FinancialSummary) entity.FinancialSummary {
	var fixed, actual, hours float64
	for _, s := range summaries {
		fixed += s.FixedCost
		actual += s.ActualCost
		hours += s.ActualHours
	}

	p := newSummary(fixed, actual, hours)
	p.ProjectName = "Portfolio"
	return p
}

func newSummary(fixedCost, actualCost, actualHours float64) entity.FinancialSummary {
	if fixedCost < 0 {
		fixedCost = 0
	}

	s := entity.FinancialSummary{
		FixedCost:   fixedCost,
		ActualCost:  actualCost,
		ActualHours: actualHours,
		ProfitLoss:  fixedCost - actualCost,
		HasBudget:   fixedCost > 0,
	}

	if s.HasBudget {
		s.ProfitLossPct = s.ProfitLoss / fixedCost * 100
		s.UtilizationPct = actualCost * 100 / fixedCost
		if s.UtilizationPct < 0 {
			s.UtilizationPct = 0
		}
	}

	return s
}
