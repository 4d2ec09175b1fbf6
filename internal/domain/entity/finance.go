package entity

// CostRollup is the approved hours and cost of one employee on one project
type CostRollup struct {
	ProjectID  string  `json:"project_id"`
	EmployeeID string  `json:"employee_id"`
	Hours      float64 `json:"hours"`
	Cost       float64 `json:"cost"`
}

// EmployeeTotal is the approved hours and cost of one employee across projects
type EmployeeTotal struct {
	EmployeeID string  `json:"employee_id"`
	Hours      float64 `json:"hours"`
	Cost       float64 `json:"cost"`
}

// FinancialSummary holds the derived money figures of a project.
// All values are unrounded; UtilizationPct is only meaningful when HasBudget is true.
type FinancialSummary struct {
	ProjectID      string  `json:"project_id"`
	ProjectName    string  `json:"project_name,omitempty"`
	FixedCost      float64 `json:"fixed_cost"`
	ActualCost     float64 `json:"actual_cost"`
	ActualHours    float64 `json:"actual_hours"`
	ProfitLoss     float64 `json:"profit_loss"`
	ProfitLossPct  float64 `json:"profit_loss_pct"`
	UtilizationPct float64 `json:"utilization_pct"`
	HasBudget      bool    `json:"has_budget"`
}

// TrendResult compares a current period value with the prior period
type TrendResult struct {
	CurrentValue float64 `json:"current_value"`
	PriorValue   float64 `json:"prior_value"`
	DeltaPct     float64 `json:"delta_pct"`
}

// PeriodTrend holds hours and cost trends for one pair of periods
type PeriodTrend struct {
	Period string      `json:"period"`
	Hours  TrendResult `json:"hours"`
	Cost   TrendResult `json:"cost"`
}
