package finance

import (
	"time"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// Trend compares a current value with a prior one.
// A zero prior yields +100% for any positive current value and 0% otherwise.
func Trend(current, prior float64) entity.TrendResult {
	t := entity.TrendResult{CurrentValue: current, PriorValue: prior}
	switch {
	case prior > 0:
		t.DeltaPct = (current - prior) / prior * 100
	case current > 0:
		t.DeltaPct = 100
	}
	return t
}

// Totals are the approved hours and cost inside one bucket
type Totals struct {
	Hours float64 `json:"hours"`
	Cost  float64 `json:"cost"`
}

// BucketTotals sums approved, validly dated entries into the bucket containing
// now and the bucket before it. Cost follows the rollup policy: hours are summed
// per employee first and multiplied by the current rate once.
func BucketTotals(entries []entity.TimeEntry, employees []entity.Employee, period Period, now time.Time) (current, prior Totals) {
	rates := make(map[string]float64, len(employees))
	for _, emp := range employees {
		rates[emp.ID] = emp.HourlyRate
	}

	curStart, curEnd := period.Bounds(now)
	priorStart, priorEnd := period.PriorBounds(now)

	curHours := make(map[string]float64)
	priorHours := make(map[string]float64)
	for _, e := range entries {
		if !e.Approved || !e.DateValid || e.Hours <= 0 {
			continue
		}
		switch {
		case within(e.Date, curStart, curEnd):
			curHours[e.EmployeeID] += e.Hours
		case within(e.Date, priorStart, priorEnd):
			priorHours[e.EmployeeID] += e.Hours
		}
	}

	for id, h := range curHours {
		current.Hours += h
		current.Cost += h * rates[id]
	}
	for id, h := range priorHours {
		prior.Hours += h
		prior.Cost += h * rates[id]
	}
	return current, prior
}

// PeriodTrend computes hours and cost trends for the bucket containing now
func PeriodTrend(entries []entity.TimeEntry, employees []entity.Employee, period Period, now time.Time) entity.PeriodTrend {
	current, prior := BucketTotals(entries, employees, period, now)
	return entity.PeriodTrend{
		Period: period.Name,
		Hours:  Trend(current.Hours, prior.Hours),
		Cost:   Trend(current.Cost, prior.Cost),
	}
}

// WeekOverWeek is PeriodTrend over calendar weeks starting Monday
func WeekOverWeek(entries []entity.TimeEntry, employees []entity.Employee, now time.Time) entity.PeriodTrend {
	return PeriodTrend(entries, employees, Week, now)
}
