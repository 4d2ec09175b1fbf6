// Package finance computes cost rollups, financial summaries and trends
// from normalized timesheet records.
package finance

import (
	"fmt"
	"math"
	"sort"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

type rollupKey struct {
	projectID  string
	employeeID string
}

// Rollup aggregates approved entries per (project, employee).
// Hours are summed first and multiplied by the employee's current rate once per
// group. Entries of unknown employees keep their hours at zero cost.
func Rollup(entries []entity.TimeEntry, employees []entity.Employee) ([]entity.CostRollup, error) {
	rates := make(map[string]float64, len(employees))
	for _, emp := range employees {
		rates[emp.ID] = emp.HourlyRate
	}

	hours := make(map[rollupKey]float64)
	for _, e := range entries {
		if math.IsNaN(e.Hours) || math.IsInf(e.Hours, 0) || e.Hours < 0 {
			return nil, fmt.Errorf("%w: entry %s has %v hours", ErrContractViolation, e.ID, e.Hours)
		}
		if !e.Approved {
			continue
		}
		hours[rollupKey{projectID: e.ProjectID, employeeID: e.EmployeeID}] += e.Hours
	}

	rollups := make([]entity.CostRollup, 0, len(hours))
	for k, h := range hours {
		rollups = append(rollups, entity.CostRollup{
			ProjectID:  k.projectID,
			EmployeeID: k.employeeID,
			Hours:      h,
			Cost:       h * rates[k.employeeID],
		})
	}

	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].ProjectID != rollups[j].ProjectID {
			return rollups[i].ProjectID < rollups[j].ProjectID
		}
		return rollups[i].EmployeeID < rollups[j].EmployeeID
	})

	return rollups, nil
}

// EmployeeTotals sums rollups per employee across projects
func EmployeeTotals(rollups []entity.CostRollup) []entity.EmployeeTotal {
	byEmployee := make(map[string]*entity.EmployeeTotal)
	order := make([]string, 0)
	for _, r := range rollups {
		t, ok := byEmployee[r.EmployeeID]
		if !ok {
			t = &entity.EmployeeTotal{EmployeeID: r.EmployeeID}
			byEmployee[r.EmployeeID] = t
			order = append(order, r.EmployeeID)
		}
		t.Hours += r.Hours
		t.Cost += r.Cost
	}

	sort.Strings(order)
	totals := make([]entity.EmployeeTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, *byEmployee[id])
	}
	return totals
}
