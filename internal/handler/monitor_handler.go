package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type monitorService interface {
	Open(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error)
	View(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error)
	DismissOverlay(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error)
	TapDesk(ctx context.Context, userID string, req dto.MonitorTapDeskRequest) (*service.MonitorView, error)
	TapLapSelector(ctx context.Context, userID string, req dto.MonitorLapRequest) (*service.MonitorView, error)
	TapPerformanceZone(ctx context.Context, userID string, req dto.MonitorZoneRequest) (*service.MonitorView, error)
	ToggleMode(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error)
	OpenListView(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error)
	CloseListView(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error)
	SetAttendance(ctx context.Context, userID string, req dto.MonitorAttendanceRequest) (*service.MonitorView, error)
	BulkAttendance(ctx context.Context, userID string, req dto.MonitorBulkRequest) (*service.MonitorView, error)
}

// MonitorHandler drives the live classroom monitor. Every endpoint answers with the session view.
type MonitorHandler struct {
	service monitorService
}

// NewMonitorHandler constructs the handler.
func NewMonitorHandler(svc monitorService) *MonitorHandler {
	return &MonitorHandler{service: svc}
}

// respond keeps the view in the body when a store write failed after the snapshot was resynced.
func respond(c *gin.Context, view *service.MonitorView, err error) {
	switch {
	case err != nil && view != nil:
		response.ErrorWithData(c, err, view)
	case err != nil:
		response.Error(c, err)
	default:
		response.OK(c, view)
	}
}

// View godoc
// @Summary Current monitor session
// @Tags Monitor
// @Produce json
// @Security BearerAuth
// @Param blockId query string true "Block ID"
// @Param date query string false "Effective date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /monitor [get]
func (h *MonitorHandler) View(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MonitorSessionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid monitor query"))
		return
	}
	view, err := h.service.View(c.Request.Context(), user.ID, req)
	respond(c, view, err)
}

// Open godoc
// @Summary Open the monitor
// @Description Starts a fresh session in attendance mode with the overlay shown
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorSessionRequest true "Session"
// @Success 200 {object} response.Envelope
// @Router /monitor/open [post]
func (h *MonitorHandler) Open(c *gin.Context) {
	h.session(c, h.service.Open)
}

// DismissOverlay godoc
// @Summary Hide the attendance overlay
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorSessionRequest true "Session"
// @Success 200 {object} response.Envelope
// @Router /monitor/dismiss-overlay [post]
func (h *MonitorHandler) DismissOverlay(c *gin.Context) {
	h.session(c, h.service.DismissOverlay)
}

// ToggleMode godoc
// @Summary Switch between attendance and performance mode
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorSessionRequest true "Session"
// @Success 200 {object} response.Envelope
// @Router /monitor/toggle-mode [post]
func (h *MonitorHandler) ToggleMode(c *gin.Context) {
	h.session(c, h.service.ToggleMode)
}

// OpenListView godoc
// @Summary Open the attendance list view
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorSessionRequest true "Session"
// @Success 200 {object} response.Envelope
// @Router /monitor/list/open [post]
func (h *MonitorHandler) OpenListView(c *gin.Context) {
	h.session(c, h.service.OpenListView)
}

// CloseListView godoc
// @Summary Close the attendance list view
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorSessionRequest true "Session"
// @Success 200 {object} response.Envelope
// @Router /monitor/list/close [post]
func (h *MonitorHandler) CloseListView(c *gin.Context) {
	h.session(c, h.service.CloseListView)
}

func (h *MonitorHandler) session(c *gin.Context, action func(context.Context, string, dto.MonitorSessionRequest) (*service.MonitorView, error)) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MonitorSessionRequest
	if !bindJSON(c, &req, "invalid monitor payload") {
		return
	}
	view, err := action(c.Request.Context(), user.ID, req)
	respond(c, view, err)
}

// TapDesk godoc
// @Summary Tap a desk
// @Description Advances the student's attendance status one step
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorTapDeskRequest true "Desk"
// @Success 200 {object} response.Envelope
// @Router /monitor/tap-desk [post]
func (h *MonitorHandler) TapDesk(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MonitorTapDeskRequest
	if !bindJSON(c, &req, "invalid monitor payload") {
		return
	}
	view, err := h.service.TapDesk(c.Request.Context(), user.ID, req)
	respond(c, view, err)
}

// TapLap godoc
// @Summary Tap a lap selector
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorLapRequest true "Lap"
// @Success 200 {object} response.Envelope
// @Router /monitor/tap-lap [post]
func (h *MonitorHandler) TapLap(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MonitorLapRequest
	if !bindJSON(c, &req, "invalid monitor payload") {
		return
	}
	view, err := h.service.TapLapSelector(c.Request.Context(), user.ID, req)
	respond(c, view, err)
}

// TapZone godoc
// @Summary Tap a performance zone
// @Description Advances the lap color of the desk's student one step
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorZoneRequest true "Zone"
// @Success 200 {object} response.Envelope
// @Router /monitor/tap-zone [post]
func (h *MonitorHandler) TapZone(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MonitorZoneRequest
	if !bindJSON(c, &req, "invalid monitor payload") {
		return
	}
	view, err := h.service.TapPerformanceZone(c.Request.Context(), user.ID, req)
	respond(c, view, err)
}

// SetAttendance godoc
// @Summary Set a status from the list view
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorAttendanceRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /monitor/attendance [post]
func (h *MonitorHandler) SetAttendance(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MonitorAttendanceRequest
	if !bindJSON(c, &req, "invalid monitor payload") {
		return
	}
	view, err := h.service.SetAttendance(c.Request.Context(), user.ID, req)
	respond(c, view, err)
}

// BulkAttendance godoc
// @Summary Mark every active student
// @Description Without confirmed=true the view carries a confirmation prompt and nothing is written
// @Tags Monitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MonitorBulkRequest true "Bulk status"
// @Success 200 {object} response.Envelope
// @Router /monitor/bulk-attendance [post]
func (h *MonitorHandler) BulkAttendance(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.MonitorBulkRequest
	if !bindJSON(c, &req, "invalid monitor payload") {
		return
	}
	view, err := h.service.BulkAttendance(c.Request.Context(), user.ID, req)
	respond(c, view, err)
}
