package alert

import (
	"math"
	"strconv"
	"time"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// DeadlineStatus describes how close a project is to its end date
type DeadlineStatus struct {
	ProjectID     string `json:"project_id"`
	ProjectName   string `json:"project_name"`
	DaysRemaining int    `json:"days_remaining"`
	Threshold     int    `json:"threshold"`
	ShouldAlert   bool   `json:"should_alert"`
	// Overdue is set once the end date is today or in the past. It never alerts.
	Overdue bool `json:"overdue"`
}

// Bucket returns the threshold bucket used in the alert key
func (d DeadlineStatus) Bucket() string {
	return strconv.Itoa(d.Threshold)
}

// DeadlineFor computes the deadline status of a project relative to today.
// DaysRemaining counts calendar days from today to the end date; the end date
// is read as the calendar date it was recorded with. A project without an end
// date never alerts. threshold <= 0 selects DefaultDeadlineDays.
func DeadlineFor(project entity.Project, today time.Time, threshold int) DeadlineStatus {
	if threshold <= 0 {
		threshold = DefaultDeadlineDays
	}

	status := DeadlineStatus{
		ProjectID:   project.ID,
		ProjectName: project.DisplayName(),
		Threshold:   threshold,
	}
	if project.EndDate == nil {
		return status
	}

	loc := today.Location()
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	ey, em, ed := project.EndDate.Date()
	end := time.Date(ey, em, ed, 0, 0, 0, 0, loc)

	// rounding absorbs DST shifts of one hour
	status.DaysRemaining = int(math.Round(end.Sub(start).Hours() / 24))
	status.ShouldAlert = status.DaysRemaining > 0 && status.DaysRemaining <= threshold
	status.Overdue = status.DaysRemaining <= 0
	return status
}

// Deadlines computes the status of every project
func Deadlines(projects []entity.Project, today time.Time, threshold int) []DeadlineStatus {
	out := make([]DeadlineStatus, 0, len(projects))
	for _, p := range projects {
		out = append(out, DeadlineFor(p, today, threshold))
	}
	return out
}
