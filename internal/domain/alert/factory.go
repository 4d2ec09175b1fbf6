package alert

import (
	"fmt"
	"math"
	"strconv"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

// FactoryConfig controls notification construction
type FactoryConfig struct {
	// RealertOnChange adds the rendered value to the alert key so that a changed
	// percentage, count or day figure surfaces again after a dismissal.
	RealertOnChange bool
}

// Factory maps trigger events to addressed notifications
type Factory struct {
	config FactoryConfig
}

// NewFactory creates a new notification factory
func NewFactory(cfg FactoryConfig) *Factory {
	return &Factory{config: cfg}
}

// Build creates one notification per recipient for the event.
// Empty recipient ids are skipped.
func (f *Factory) Build(event entity.TriggerEvent, recipients []string) []entity.Notification {
	key := f.Key(event)
	notifications := make([]entity.Notification, 0, len(recipients))

	for _, userID := range recipients {
		if userID == "" {
			continue
		}
		n := entity.Notification{
			UserID:    userID,
			Severity:  event.Severity,
			Metadata:  baseMetadata(event, key),
			CreatedAt: event.ComputedAt,
		}
		render(&n, event)
		notifications = append(notifications, n)
	}

	return notifications
}

// Key returns the dismissal key of the event under this factory's configuration
func (f *Factory) Key(event entity.TriggerEvent) entity.AlertKey {
	key := event.Key()
	if f.config.RealertOnChange {
		key.Detail = valueText(event)
	}
	return key
}

func baseMetadata(event entity.TriggerEvent, key entity.AlertKey) map[string]string {
	return map[string]string{
		entity.MetaAlertKey:  key.String(),
		entity.MetaKind:      event.Kind.String(),
		entity.MetaSubjectID: event.SubjectID,
		entity.MetaBucket:    event.Bucket,
		entity.MetaSeverity:  string(event.Severity),
	}
}

// render fills type, title, message, link and kind-specific metadata.
// All dynamic values are interpolated here and nowhere earlier.
func render(n *entity.Notification, event entity.TriggerEvent) {
	name := event.SubjectName
	if name == "" {
		name = event.SubjectID
	}

	switch event.Kind {
	case entity.AlertKindBudget:
		n.Type = entity.NotificationTypeBudget
		n.Link = "/projects/" + event.SubjectID
		n.Metadata[entity.MetaProjectID] = event.SubjectID
		n.Metadata[entity.MetaThreshold] = event.Bucket
		if event.Severity == entity.SeverityDanger {
			n.Title = fmt.Sprintf("Over budget: %s", name)
			n.Message = fmt.Sprintf("%s has used %.1f%% of its budget.", name, event.Value)
		} else {
			n.Title = fmt.Sprintf("Budget alert: %s", name)
			n.Message = fmt.Sprintf("%s has used %.1f%% of its budget (threshold %s%%).", name, event.Value, event.Bucket)
		}

	case entity.AlertKindDeadline:
		days := int(event.Value)
		n.Type = entity.NotificationTypeDeadline
		n.Link = "/projects/" + event.SubjectID
		n.Metadata[entity.MetaProjectID] = event.SubjectID
		n.Metadata[entity.MetaThreshold] = event.Bucket
		n.Metadata[entity.MetaDaysRemaining] = strconv.Itoa(days)
		n.Title = fmt.Sprintf("Deadline approaching: %s", name)
		n.Message = fmt.Sprintf("%s is due in %d %s.", name, days, plural(days, "day", "days"))

	case entity.AlertKindPendingApproval:
		count := int(event.Value)
		n.Type = entity.NotificationTypePendingApproval
		n.Link = "/approvals"
		n.Metadata[entity.MetaPendingCount] = strconv.Itoa(count)
		n.Title = "Pending approvals"
		n.Message = fmt.Sprintf("%d time %s waiting for approval.", count, plural(count, "entry is", "entries are"))

	case entity.AlertKindTrend:
		n.Type = entity.NotificationTypeTrend
		n.Link = "/dashboard"
		n.Metadata[entity.MetaDeltaPct] = strconv.FormatFloat(event.Value, 'f', 1, 64)
		if event.Bucket == BucketTrendDrop {
			n.Title = "Logged hours are down"
			n.Message = fmt.Sprintf("Hours logged for %s are down %.1f%% week over week.", name, math.Abs(event.Value))
		} else {
			n.Title = "Logged hours are up"
			n.Message = fmt.Sprintf("Hours logged for %s are up %.1f%% week over week.", name, event.Value)
		}

	default:
		n.Type = string(event.Kind)
		n.Title = string(event.Kind)
		n.Message = fmt.Sprintf("%s: %s", event.Kind, name)
	}
}

func valueText(event entity.TriggerEvent) string {
	switch event.Kind {
	case entity.AlertKindDeadline, entity.AlertKindPendingApproval:
		return strconv.Itoa(int(event.Value))
	}
	return strconv.FormatFloat(event.Value, 'f', 1, 64)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
