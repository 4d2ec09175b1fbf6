package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/timesheet-insights/internal/domain/entity"
)

var computedAt = time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

func budgetEvent(pct float64) entity.TriggerEvent {
	rung, _ := HighestBudgetRung(pct)
	return entity.TriggerEvent{
		Kind:        entity.AlertKindBudget,
		SubjectID:   "proj-1",
		SubjectName: "Portal",
		Severity:    rung.Severity,
		Bucket:      rung.Bucket,
		Value:       pct,
		ComputedAt:  computedAt,
	}
}

func TestFactory_Build_OnePerRecipient(t *testing.T) {
	f := NewFactory(FactoryConfig{})

	notifications := f.Build(budgetEvent(91.2), []string{"u-1", "", "u-2"})
	require.Len(t, notifications, 2)

	for i, userID := range []string{"u-1", "u-2"} {
		n := notifications[i]
		assert.Equal(t, userID, n.UserID)
		assert.Equal(t, entity.NotificationTypeBudget, n.Type)
		assert.Equal(t, "Budget alert: Portal", n.Title)
		assert.Equal(t, "Portal has used 91.2% of its budget (threshold 90%).", n.Message)
		assert.Equal(t, "/projects/proj-1", n.Link)
		assert.Equal(t, entity.SeverityWarning, n.Severity)
		assert.Equal(t, computedAt, n.CreatedAt)
		assert.Equal(t, "BudgetAlert:proj-1:90", n.AlertKey())
		assert.Equal(t, "proj-1", n.Metadata[entity.MetaProjectID])
		assert.Equal(t, "90", n.Metadata[entity.MetaThreshold])
	}
}

func TestFactory_Build_MetadataIsNotShared(t *testing.T) {
	f := NewFactory(FactoryConfig{})
	notifications := f.Build(budgetEvent(85), []string{"u-1", "u-2"})
	require.Len(t, notifications, 2)

	notifications[0].Metadata["extra"] = "x"
	assert.NotContains(t, notifications[1].Metadata, "extra")
}

func TestFactory_KeyIgnoresRenderedValue(t *testing.T) {
	f := NewFactory(FactoryConfig{})

	first := f.Build(budgetEvent(90.0), []string{"u-1"})[0]
	second := f.Build(budgetEvent(91.2), []string{"u-1"})[0]

	assert.NotEqual(t, first.Message, second.Message)
	assert.Equal(t, first.AlertKey(), second.AlertKey())
	assert.Equal(t, "BudgetAlert:proj-1:90", first.AlertKey())
}

func TestFactory_RealertOnChange(t *testing.T) {
	f := NewFactory(FactoryConfig{RealertOnChange: true})

	first := f.Build(budgetEvent(90.0), []string{"u-1"})[0]
	second := f.Build(budgetEvent(91.2), []string{"u-1"})[0]

	assert.Equal(t, "BudgetAlert:proj-1:90:90.0", first.AlertKey())
	assert.Equal(t, "BudgetAlert:proj-1:90:91.2", second.AlertKey())
}

func TestFactory_Build_Templates(t *testing.T) {
	f := NewFactory(FactoryConfig{})

	tests := []struct {
		name        string
		event       entity.TriggerEvent
		wantType    string
		wantTitle   string
		wantMessage string
		wantLink    string
		wantMeta    map[string]string
	}{
		{
			name:        "over budget",
			event:       budgetEvent(105),
			wantType:    entity.NotificationTypeBudget,
			wantTitle:   "Over budget: Portal",
			wantMessage: "Portal has used 105.0% of its budget.",
			wantLink:    "/projects/proj-1",
			wantMeta:    map[string]string{entity.MetaThreshold: "100", entity.MetaSeverity: "danger"},
		},
		{
			name: "deadline",
			event: entity.TriggerEvent{
				Kind: entity.AlertKindDeadline, SubjectID: "proj-1", SubjectName: "Portal",
				Severity: entity.SeverityWarning, Bucket: "7", Value: 1,
			},
			wantType:    entity.NotificationTypeDeadline,
			wantTitle:   "Deadline approaching: Portal",
			wantMessage: "Portal is due in 1 day.",
			wantLink:    "/projects/proj-1",
			wantMeta:    map[string]string{entity.MetaDaysRemaining: "1", entity.MetaAlertKey: "DeadlineAlert:proj-1:7"},
		},
		{
			name: "pending approvals",
			event: entity.TriggerEvent{
				Kind: entity.AlertKindPendingApproval, SubjectID: "mgr-1",
				Severity: entity.SeverityWarning, Bucket: BucketPending, Value: 3,
			},
			wantType:    entity.NotificationTypePendingApproval,
			wantTitle:   "Pending approvals",
			wantMessage: "3 time entries are waiting for approval.",
			wantLink:    "/approvals",
			wantMeta:    map[string]string{entity.MetaPendingCount: "3", entity.MetaAlertKey: "PendingApprovalAlert:mgr-1:pending"},
		},
		{
			name: "trend drop",
			event: entity.TriggerEvent{
				Kind: entity.AlertKindTrend, SubjectID: "all", SubjectName: "all projects",
				Severity: entity.SeverityInfo, Bucket: BucketTrendDrop, Value: -25,
			},
			wantType:    entity.NotificationTypeTrend,
			wantTitle:   "Logged hours are down",
			wantMessage: "Hours logged for all projects are down 25.0% week over week.",
			wantLink:    "/dashboard",
			wantMeta:    map[string]string{entity.MetaDeltaPct: "-25.0"},
		},
		{
			name: "trend rise",
			event: entity.TriggerEvent{
				Kind: entity.AlertKindTrend, SubjectID: "all", SubjectName: "all projects",
				Severity: entity.SeveritySuccess, Bucket: BucketTrendRise, Value: 100,
			},
			wantType:    entity.NotificationTypeTrend,
			wantTitle:   "Logged hours are up",
			wantMessage: "Hours logged for all projects are up 100.0% week over week.",
			wantLink:    "/dashboard",
			wantMeta:    map[string]string{entity.MetaBucket: BucketTrendRise},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifications := f.Build(tt.event, []string{"u-1"})
			require.Len(t, notifications, 1)
			n := notifications[0]

			assert.Equal(t, tt.wantType, n.Type)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantMessage, n.Message)
			assert.Equal(t, tt.wantLink, n.Link)
			for k, v := range tt.wantMeta {
				assert.Equal(t, v, n.Metadata[k], "metadata %s", k)
			}
			assert.Equal(t, tt.event.Kind.String(), n.Metadata[entity.MetaKind])
			assert.Equal(t, tt.event.SubjectID, n.Metadata[entity.MetaSubjectID])
		})
	}
}
