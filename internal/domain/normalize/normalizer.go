// Package normalize turns raw, loosely typed records into the typed records
// the financial pipeline works on. Dirty values are substituted, never fatal.
package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// IssueKind classifies a data quality problem found while normalizing
type IssueKind string

const (
	IssueInvalidNumber IssueKind = "INVALID_NUMBER"
	IssueNegativeValue IssueKind = "NEGATIVE_VALUE"
	IssueInvalidDate   IssueKind = "INVALID_DATE"
	IssueMissingField  IssueKind = "MISSING_FIELD"
)

// Issue describes one substitution or skip decision
type Issue struct {
	Kind     IssueKind `json:"kind"`
	Record   string    `json:"record"` // time_entry, project or employee
	RecordID string    `json:"record_id"`
	Field    string    `json:"field"`
	Skipped  bool      `json:"skipped"`
	Detail   string    `json:"detail,omitempty"`
}

// String returns a human-readable representation of the issue
func (i Issue) String() string {
	action := "substituted"
	if i.Skipped {
		action = "skipped"
	}
	return fmt.Sprintf("%s %s[%s].%s %s: %s", i.Kind, i.Record, i.RecordID, i.Field, action, i.Detail)
}

// Result is the normalized batch together with every issue encountered
type Result struct {
	Batch  entity.Batch
	Issues []Issue
}

// Normalizer converts raw records into typed records
type Normalizer struct {
	// location is applied to date strings that carry no zone
	location *time.Location
}

// NewNormalizer creates a normalizer that reads zone-less dates in loc.
// A nil loc means UTC.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{location: loc}
}

// Normalize converts a raw batch. It never fails.
func (n *Normalizer) Normalize(raw entity.RawBatch) Result {
	var res Result

	res.Batch.Employees = make([]entity.Employee, 0, len(raw.Employees))
	for _, re := range raw.Employees {
		if emp, ok := n.employee(re, &res.Issues); ok {
			res.Batch.Employees = append(res.Batch.Employees, emp)
		}
	}

	res.Batch.Projects = make([]entity.Project, 0, len(raw.Projects))
	for _, rp := range raw.Projects {
		if p, ok := n.project(rp, &res.Issues); ok {
			res.Batch.Projects = append(res.Batch.Projects, p)
		}
	}

	res.Batch.Entries = make([]entity.TimeEntry, 0, len(raw.Entries))
	for _, rt := range raw.Entries {
		if te, ok := n.timeEntry(rt, &res.Issues); ok {
			res.Batch.Entries = append(res.Batch.Entries, te)
		}
	}

	return res
}

func (n *Normalizer) timeEntry(raw entity.RawTimeEntry, issues *[]Issue) (entity.TimeEntry, bool) {
	const record = "time_entry"

	id := strings.TrimSpace(raw.ID)
	projectID := strings.TrimSpace(raw.ProjectID)
	if id == "" || projectID == "" {
		*issues = append(*issues, Issue{
			Kind: IssueMissingField, Record: record, RecordID: id,
			Field: "id/project_id", Skipped: true, Detail: "entry has no id or project",
		})
		return entity.TimeEntry{}, false
	}

	hours, ok := ToNumber(raw.Hours)
	if !ok {
		*issues = append(*issues, Issue{
			Kind: IssueInvalidNumber, Record: record, RecordID: id,
			Field: "hours", Detail: fmt.Sprintf("%v treated as 0", raw.Hours),
		})
	}
	if hours < 0 {
		*issues = append(*issues, Issue{
			Kind: IssueNegativeValue, Record: record, RecordID: id,
			Field: "hours", Skipped: true, Detail: fmt.Sprintf("%v hours rejected", hours),
		})
		return entity.TimeEntry{}, false
	}

	entry := entity.TimeEntry{
		ID:         id,
		EmployeeID: strings.TrimSpace(raw.EmployeeID),
		ProjectID:  projectID,
		Hours:      hours,
		Approved:   toBool(raw.Approved),
	}

	date, ok := n.ToDate(raw.Date)
	if ok {
		entry.Date = date
		entry.DateValid = true
	} else {
		*issues = append(*issues, Issue{
			Kind: IssueInvalidDate, Record: record, RecordID: id,
			Field: "date", Detail: "excluded from dated aggregations",
		})
	}

	return entry, true
}

func (n *Normalizer) project(raw entity.RawProject, issues *[]Issue) (entity.Project, bool) {
	const record = "project"

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		*issues = append(*issues, Issue{
			Kind: IssueMissingField, Record: record, Field: "id", Skipped: true,
		})
		return entity.Project{}, false
	}

	budget := n.nonNegative(raw.Budget, record, id, "budget", issues)

	p := entity.Project{
		ID:        id,
		Name:      strings.TrimSpace(raw.Name),
		Budget:    budget,
		Status:    strings.ToUpper(strings.TrimSpace(raw.Status)),
		ManagerID: strings.TrimSpace(raw.ManagerID),
	}

	if raw.EndDate != nil && raw.EndDate != "" {
		if end, ok := n.ToDate(raw.EndDate); ok {
			p.EndDate = &end
		} else {
			*issues = append(*issues, Issue{
				Kind: IssueInvalidDate, Record: record, RecordID: id,
				Field: "end_date", Detail: "treated as no end date",
			})
		}
	}

	return p, true
}

func (n *Normalizer) employee(raw entity.RawEmployee, issues *[]Issue) (entity.Employee, bool) {
	const record = "employee"

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		*issues = append(*issues, Issue{
			Kind: IssueMissingField, Record: record, Field: "id", Skipped: true,
		})
		return entity.Employee{}, false
	}

	return entity.Employee{
		ID:         id,
		Name:       strings.TrimSpace(raw.Name),
		HourlyRate: n.nonNegative(raw.HourlyRate, record, id, "hourly_rate", issues),
	}, true
}

// nonNegative coerces a configuration amount; unparseable and negative values become 0
func (n *Normalizer) nonNegative(v interface{}, record, id, field string, issues *[]Issue) float64 {
	f, ok := ToNumber(v)
	if !ok {
		*issues = append(*issues, Issue{
			Kind: IssueInvalidNumber, Record: record, RecordID: id,
			Field: field, Detail: fmt.Sprintf("%v treated as 0", v),
		})
		return 0
	}
	if f < 0 {
		*issues = append(*issues, Issue{
			Kind: IssueNegativeValue, Record: record, RecordID: id,
			Field: field, Detail: fmt.Sprintf("%v treated as 0", f),
		})
		return 0
	}
	return f
}

// ToNumber coerces v to a finite float64. nil and empty strings are a valid 0.
// Anything else that does not parse to a finite number yields (0, false).
func ToNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return 0, true
		}
		v = t
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToDate parses a native time value or a date string.
// Zone-less strings are read in the normalizer's location.
func (n *Normalizer) ToDate(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		d, err := cast.ToTimeInDefaultLocationE(s, n.location)
		if err != nil || d.IsZero() {
			return time.Time{}, false
		}
		return d, true
	}
	return time.Time{}, false
}

func toBool(v interface{}) bool {
	if s, ok := v.(string); ok {
		v = strings.ToLower(strings.TrimSpace(s))
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false
	}
	return b
}
