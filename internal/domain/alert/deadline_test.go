package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

func projectEnding(end *time.Time) entity.Project {
	return entity.Project{ID: "proj-1", Name: "Portal", EndDate: end}
}

func TestDeadlineFor(t *testing.T) {
	today := time.Date(2024, 3, 7, 14, 45, 0, 0, time.UTC)
	in := func(days int) *time.Time {
		d := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
		return &d
	}

	tests := []struct {
		name        string
		end         *time.Time
		threshold   int
		wantDays    int
		wantAlert   bool
		wantOverdue bool
	}{
		{name: "five days out", end: in(5), threshold: 7, wantDays: 5, wantAlert: true},
		{name: "ten days out", end: in(10), threshold: 7, wantDays: 10, wantAlert: false},
		{name: "exactly at threshold", end: in(7), threshold: 7, wantDays: 7, wantAlert: true},
		{name: "tomorrow", end: in(1), threshold: 7, wantDays: 1, wantAlert: true},
		{name: "due today", end: in(0), threshold: 7, wantDays: 0, wantAlert: false, wantOverdue: true},
		{name: "past due", end: in(-3), threshold: 7, wantDays: -3, wantAlert: false, wantOverdue: true},
		{name: "no end date", end: nil, threshold: 7, wantDays: 0, wantAlert: false},
		{name: "default threshold", end: in(6), threshold: 0, wantDays: 6, wantAlert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := DeadlineFor(projectEnding(tt.end), today, tt.threshold)
			assert.Equal(t, tt.wantDays, status.DaysRemaining)
			assert.Equal(t, tt.wantAlert, status.ShouldAlert)
			assert.Equal(t, tt.wantOverdue, status.Overdue)
		})
	}
}

func TestDeadlineFor_EndDateTimeOfDayIsIgnored(t *testing.T) {
	today := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 12, 23, 59, 0, 0, time.UTC)

	status := DeadlineFor(projectEnding(&end), today, 7)
	assert.Equal(t, 5, status.DaysRemaining)
	assert.Equal(t, "7", status.Bucket())
}

func TestDeadlines(t *testing.T) {
	today := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	soon := today.AddDate(0, 0, 2)
	projects := []entity.Project{
		{ID: "a", EndDate: &soon},
		{ID: "b"},
	}

	statuses := Deadlines(projects, today, 7)
	assert.Len(t, statuses, 2)
	assert.True(t, statuses[0].ShouldAlert)
	assert.Equal(t, "a", statuses[0].ProjectName)
	assert.False(t, statuses[1].ShouldAlert)
}
