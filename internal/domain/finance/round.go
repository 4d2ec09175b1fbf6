package finance

import (
	"github.com/shopspring/decimal"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// Round2 rounds a currency or percentage value to 2 decimal places, half away
// from zero. Use it at the presentation boundary only.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// RoundSummary returns a copy of s with every money and percentage field rounded
func RoundSummary(s entity.FinancialSummary) entity.FinancialSummary {
	s.FixedCost = Round2(s.FixedCost)
	s.ActualCost = Round2(s.ActualCost)
	s.ActualHours = Round2(s.ActualHours)
	s.ProfitLoss = Round2(s.ProfitLoss)
	s.ProfitLossPct = Round2(s.ProfitLossPct)
	s.UtilizationPct = Round2(s.UtilizationPct)
	return s
}

// RoundTrend returns a copy of t with every value rounded
func RoundTrend(t entity.TrendResult) entity.TrendResult {
	t.CurrentValue = Round2(t.CurrentValue)
	t.PriorValue = Round2(t.PriorValue)
	t.DeltaPct = Round2(t.DeltaPct)
	return t
}
