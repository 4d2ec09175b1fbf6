package entity

import "time"

// Viewer roles used for recipient scoping
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Project status constants
const (
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusOnHold    = "ON_HOLD"
	ProjectStatusCompleted = "COMPLETED"
)

// RawTimeEntry is a time entry as delivered by the data layer.
// Hours, Date and Approved are untyped: numbers may arrive as strings,
// dates as ISO strings or time.Time values, and any field may be nil.
type RawTimeEntry struct {
	ID         string      `json:"id"`
	EmployeeID string      `json:"employee_id"`
	ProjectID  string      `json:"project_id"`
	Date       interface{} `json:"date"`
	Hours      interface{} `json:"hours"`
	Approved   interface{} `json:"approved"`
}

// RawProject is a project record as delivered by the data layer
type RawProject struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Budget    interface{} `json:"budget"`
	EndDate   interface{} `json:"end_date"`
	Status    string      `json:"status"`
	ManagerID string      `json:"manager_id"`
}

// RawEmployee is an employee record as delivered by the data layer
type RawEmployee struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	HourlyRate interface{} `json:"hourly_rate"`
}

// RawBatch groups one fetch worth of raw records
type RawBatch struct {
	Entries   []RawTimeEntry `json:"entries"`
	Projects  []RawProject   `json:"projects"`
	Employees []RawEmployee  `json:"employees"`
}

// TimeEntry is a normalized time entry.
// DateValid is false when the source date could not be parsed; such entries
// still count toward lifetime totals but never toward dated buckets.
type TimeEntry struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	ProjectID  string    `json:"project_id"`
	Date       time.Time `json:"date"`
	DateValid  bool      `json:"date_valid"`
	Hours      float64   `json:"hours"`
	Approved   bool      `json:"approved"`
}

// Employee is a normalized employee with the current hourly rate
type Employee struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourly_rate"`
}

// Project is a normalized project. Budget 0 means no budget is configured.
type Project struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Budget    float64    `json:"budget"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Status    string     `json:"status"`
	ManagerID string     `json:"manager_id,omitempty"`
}

// DisplayName returns the project name, falling back to its ID
func (p Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Batch is the normalized counterpart of RawBatch
type Batch struct {
	Entries   []TimeEntry `json:"entries"`
	Projects  []Project   `json:"projects"`
	Employees []Employee  `json:"employees"`
}

// Viewer identifies the user a report is evaluated for
type Viewer struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
