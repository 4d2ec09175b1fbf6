package entity

import (
	"fmt"
	"strings"
	"time"
)

// AlertKind identifies the business condition behind a trigger event
type AlertKind string

const (
	AlertKindBudget          AlertKind = "BudgetAlert"
	AlertKindDeadline        AlertKind = "DeadlineAlert"
	AlertKindPendingApproval AlertKind = "PendingApprovalAlert"
	AlertKindTrend           AlertKind = "TrendAlert"
)

// String returns the string representation of the kind
func (k AlertKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is one of the fixed alert kinds
func (k AlertKind) IsValid() bool {
	switch k {
	case AlertKindBudget, AlertKindDeadline, AlertKindPendingApproval, AlertKindTrend:
		return true
	}
	return false
}

// Severity of a trigger event and its notifications
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Rank orders severities for display, most urgent first
func (s Severity) Rank() int {
	switch s {
	case SeverityDanger:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	case SeveritySuccess:
		return 3
	}
	return 4
}

// TriggerEvent signals that a business condition has been met during one
// evaluation pass. Events are produced fresh on every pass and never queued.
type TriggerEvent struct {
	Kind        AlertKind `json:"kind"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name,omitempty"`
	Severity    Severity  `json:"severity"`
	// Bucket is the fixed threshold rung the condition crossed (e.g. "90")
	Bucket string `json:"bucket"`
	// Value is the measured quantity: utilization %, days remaining, pending count or delta %
	Value      float64   `json:"value"`
	ComputedAt time.Time `json:"computed_at"`
}

// Key returns the stable identity of the condition behind the event
func (e TriggerEvent) Key() AlertKey {
	return AlertKey{Kind: e.Kind, SubjectID: e.SubjectID, Bucket: e.Bucket}
}

// AlertKey is the identity used to suppress a dismissed condition.
// It is built from the condition, never from rendered text. Detail is empty
// unless re-alerting on value changes has been switched on.
type AlertKey struct {
	Kind      AlertKind
	SubjectID string
	Bucket    string
	Detail    string
}

// String renders the key as kind:subject:bucket[:detail]
func (k AlertKey) String() string {
	s := fmt.Sprintf("%s:%s:%s", k.Kind, k.SubjectID, k.Bucket)
	if k.Detail != "" {
		s += ":" + k.Detail
	}
	return s
}

// ParseAlertKey parses a rendered alert key
func ParseAlertKey(s string) (AlertKey, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 3 {
		return AlertKey{}, fmt.Errorf("alert key %q: expected kind:subject:bucket", s)
	}
	key := AlertKey{Kind: AlertKind(parts[0]), SubjectID: parts[1], Bucket: parts[2]}
	if len(parts) == 4 {
		key.Detail = parts[3]
	}
	if !key.Kind.IsValid() {
		return AlertKey{}, fmt.Errorf("alert key %q: unknown kind %q", s, parts[0])
	}
	if key.SubjectID == "" || key.Bucket == "" {
		return AlertKey{}, fmt.Errorf("alert key %q: empty subject or bucket", s)
	}
	return key, nil
}

// Notification types
const (
	NotificationTypeBudget          = "budget_alert"
	NotificationTypeDeadline        = "deadline_alert"
	NotificationTypePendingApproval = "pending_approval"
	NotificationTypeTrend           = "trend_alert"
)

// Notification metadata keys
const (
	MetaAlertKey      = "alert_key"
	MetaKind          = "kind"
	MetaSubjectID     = "subject_id"
	MetaBucket        = "bucket"
	MetaSeverity      = "severity"
	MetaProjectID     = "project_id"
	MetaThreshold     = "threshold"
	MetaDaysRemaining = "days_remaining"
	MetaPendingCount  = "pending_count"
	MetaDeltaPct      = "delta_pct"
)

// Notification is an addressed, display-only alert. It is immutable once built.
type Notification struct {
	Type      string            `json:"type"`
	UserID    string            `json:"user_id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Link      string            `json:"link,omitempty"`
	Severity  Severity          `json:"severity"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// AlertKey returns the dismissal key carried in the metadata
func (n Notification) AlertKey() string {
	return n.Metadata[MetaAlertKey]
}

// DismissalRecord records that a user acknowledged an alert condition
type DismissalRecord struct {
	AlertKey    string    `json:"alert_key"`
	DismissedAt time.Time `json:"dismissed_at"`
}
