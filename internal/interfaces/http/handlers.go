package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/timesheet-insights/internal/application/service"
	"github.com/garyjia/timesheet-insights/internal/domain/alert"
	"github.com/garyjia/timesheet-insights/internal/domain/entity"
	"github.com/garyjia/timesheet-insights/internal/domain/finance"
	"github.com/garyjia/timesheet-insights/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	insights   service.InsightService
	dismissals service.DismissalService
	refresher  SnapshotRefresher
	workbook   WorkbookWriter
	logger     Logger
	now        func() time.Time
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, logger Logger) *Handlers {
	return &Handlers{
		insights:   deps.Insights,
		dismissals: deps.Dismissals,
		refresher:  deps.Refresher,
		workbook:   deps.Workbook,
		logger:     logger,
		now:        time.Now,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Version     string  `json:"version"`
	RefreshedAt *string `json:"refreshed_at,omitempty"`
}

// SummaryResponse is a financial summary rounded for display
type SummaryResponse struct {
	ProjectID      string   `json:"project_id,omitempty"`
	ProjectName    string   `json:"project_name"`
	FixedCost      float64  `json:"fixed_cost"`
	ActualCost     float64  `json:"actual_cost"`
	ActualHours    float64  `json:"actual_hours"`
	ProfitLoss     float64  `json:"profit_loss"`
	ProfitLossPct  *float64 `json:"profit_loss_pct"`
	UtilizationPct float64  `json:"utilization_pct"`
	HasBudget      bool     `json:"has_budget"`
}

// TrendResponse is a period trend rounded for display
type TrendResponse struct {
	Period string             `json:"period"`
	Hours  entity.TrendResult `json:"hours"`
	Cost   entity.TrendResult `json:"cost"`
}

// NotificationsResponse is the viewer's visible notifications
type NotificationsResponse struct {
	Notifications []entity.Notification  `json:"notifications"`
	Suppressed    int                    `json:"suppressed"`
	Deadlines     []alert.DeadlineStatus `json:"deadlines"`
	GeneratedAt   string                 `json:"generated_at"`
}

// ReportResponse is a full evaluation result
type ReportResponse struct {
	Viewer        entity.Viewer         `json:"viewer"`
	Summaries     []SummaryResponse     `json:"summaries"`
	Portfolio     *SummaryResponse      `json:"portfolio,omitempty"`
	Trend         TrendResponse         `json:"trend"`
	Events        []entity.TriggerEvent `json:"events"`
	Notifications []entity.Notification `json:"notifications"`
	Suppressed    int                   `json:"suppressed"`
	GeneratedAt   string                `json:"generated_at"`
}

// DismissRequest carries one key or a list of keys
type DismissRequest struct {
	AlertKey  string   `json:"alert_key"`
	AlertKeys []string `json:"alert_keys"`
}

// EvaluateRequest carries raw records to evaluate without publishing them
type EvaluateRequest struct {
	Viewer entity.Viewer   `json:"viewer"`
	Batch  entity.RawBatch `json:"batch"`
	// Now overrides the evaluation time
	Now *time.Time `json:"now"`
}

// RefreshResponse describes the snapshot just published
type RefreshResponse struct {
	Projects    int    `json:"projects"`
	Entries     int    `json:"entries"`
	Employees   int    `json:"employees"`
	Issues      int    `json:"issues"`
	RefreshedAt string `json:"refreshed_at"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}
	if snap, err := h.insights.Snapshot(); err == nil {
		ts := snap.RefreshedAt.UTC().Format(time.RFC3339)
		response.RefreshedAt = &ts
	} else {
		response.Status = "warming_up"
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// GetSummaries handles GET /api/summaries
func (h *Handlers) GetSummaries(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toSummaryResponses(snap.Summaries),
	})
}

// GetPortfolio handles GET /api/portfolio
func (h *Handlers) GetPortfolio(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toSummaryResponse(snap.Portfolio),
	})
}

// GetTrend handles GET /api/trend
func (h *Handlers) GetTrend(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toTrendResponse(snap.Trend),
	})
}

// ExportSummaries handles GET /api/summaries/export
func (h *Handlers) ExportSummaries(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.workbook.Write(&buf, snap.Summaries, snap.Portfolio); err != nil {
		h.logger.Error("Failed to export summaries", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to export summaries",
		})
		return
	}

	filename := fmt.Sprintf("summaries-%s.xlsx", snap.RefreshedAt.Format("20060102-1504"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetNotifications handles GET /api/notifications?user_id=&role=
func (h *Handlers) GetNotifications(c *gin.Context) {
	viewer, err := parseViewer(c.Query("user_id"), c.Query("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	report, err := h.insights.Evaluate(c.Request.Context(), viewer, h.now())
	if err != nil {
		h.writeServiceError(c, err, "failed to evaluate alerts")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: NotificationsResponse{
			Notifications: report.Notifications,
			Suppressed:    report.Suppressed,
			Deadlines:     report.Deadlines,
			GeneratedAt:   report.GeneratedAt.Format(time.RFC3339),
		},
	})
}

// DismissAlerts handles POST /api/alerts/dismiss
func (h *Handlers) DismissAlerts(c *gin.Context) {
	var req DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	keys := req.AlertKeys
	if req.AlertKey != "" {
		keys = append(keys, req.AlertKey)
	}
	if len(keys) == 0 {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "alert_key or alert_keys is required",
		})
		return
	}

	if err := h.dismissals.DismissAll(c.Request.Context(), keys); err != nil {
		h.writeServiceError(c, err, "failed to dismiss alerts")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"dismissed": len(keys)},
	})
}

// ListDismissals handles GET /api/alerts/dismissals
func (h *Handlers) ListDismissals(c *gin.Context) {
	records, err := h.dismissals.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list dismissals", "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "failed to list dismissals",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// Refresh handles POST /api/refresh
func (h *Handlers) Refresh(c *gin.Context) {
	if h.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "refresh is not configured",
		})
		return
	}

	snap, err := h.refresher.RefreshNow(c.Request.Context())
	if err != nil {
		h.logger.Error("Manual refresh failed", "error", err)
		c.JSON(http.StatusBadGateway, Response{
			Success: false,
			Error:   "refresh failed; previous snapshot kept",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: RefreshResponse{
			Projects:    len(snap.Batch.Projects),
			Entries:     len(snap.Batch.Entries),
			Employees:   len(snap.Batch.Employees),
			Issues:      len(snap.Issues),
			RefreshedAt: snap.RefreshedAt.Format(time.RFC3339),
		},
	})
}

// Evaluate handles POST /api/evaluate
func (h *Handlers) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	viewer, err := parseViewer(req.Viewer.UserID, req.Viewer.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	now := h.now()
	if req.Now != nil {
		now = *req.Now
	}

	report, err := h.insights.EvaluateBatch(c.Request.Context(), req.Batch, viewer, now)
	if err != nil {
		h.writeServiceError(c, err, "failed to evaluate batch")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    toReportResponse(report),
	})
}

// snapshot writes a 503 and returns false until the first refresh
func (h *Handlers) snapshot(c *gin.Context) (*service.Snapshot, bool) {
	snap, err := h.insights.Snapshot()
	if err != nil {
		h.writeServiceError(c, err, "failed to load snapshot")
		return nil, false
	}
	return snap, true
}

func (h *Handlers) writeServiceError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNoSnapshot):
		c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "no data available yet",
		})
	case errors.Is(err, service.ErrInvalidAlertKey):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, finance.ErrContractViolation):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
		})
	default:
		h.logger.Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   msg,
		})
	}
}

func parseViewer(userID, role string) (entity.Viewer, error) {
	userID = utils.SanitizeString(userID)
	if err := utils.ValidateUserID(userID); err != nil {
		return entity.Viewer{}, err
	}
	r, err := utils.NormalizeRole(role, entity.RoleAdmin, entity.RoleManager, entity.RoleEmployee)
	if err != nil {
		return entity.Viewer{}, err
	}
	return entity.Viewer{UserID: userID, Role: r}, nil
}

func toSummaryResponse(s entity.FinancialSummary) SummaryResponse {
	s = finance.RoundSummary(s)
	resp := SummaryResponse{
		ProjectID:      s.ProjectID,
		ProjectName:    s.ProjectName,
		FixedCost:      s.FixedCost,
		ActualCost:     s.ActualCost,
		ActualHours:    s.ActualHours,
		ProfitLoss:     s.ProfitLoss,
		UtilizationPct: s.UtilizationPct,
		HasBudget:      s.HasBudget,
	}
	if s.HasBudget {
		pct := s.ProfitLossPct
		resp.ProfitLossPct = &pct
	}
	return resp
}

func toSummaryResponses(summaries []entity.FinancialSummary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toSummaryResponse(s))
	}
	return out
}

func toTrendResponse(t entity.PeriodTrend) TrendResponse {
	return TrendResponse{
		Period: t.Period,
		Hours:  finance.RoundTrend(t.Hours),
		Cost:   finance.RoundTrend(t.Cost),
	}
}

func toReportResponse(r *service.Report) ReportResponse {
	resp := ReportResponse{
		Viewer:        r.Viewer,
		Summaries:     toSummaryResponses(r.Summaries),
		Trend:         toTrendResponse(r.Trend),
		Events:        r.Events,
		Notifications: r.Notifications,
		Suppressed:    r.Suppressed,
		GeneratedAt:   r.GeneratedAt.Format(time.RFC3339),
	}
	if len(r.Summaries) > 0 {
		p := toSummaryResponse(r.Portfolio)
		resp.Portfolio = &p
	}
	return resp
}
