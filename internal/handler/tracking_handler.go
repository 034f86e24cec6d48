package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type attendanceService interface {
	List(ctx context.Context, userID, blockID, rawDate string) ([]models.AttendanceRecord, error)
	Record(ctx context.Context, userID string, req dto.AttendanceRequest) (*service.AttendanceWriteResult, error)
}

type performanceService interface {
	List(ctx context.Context, userID, blockID, rawDate string) ([]models.LapPerformance, error)
	Record(ctx context.Context, userID string, req dto.PerformanceRequest) (*models.LapPerformance, error)
}

type lapService interface {
	ListWeek(ctx context.Context, userID, blockID, rawWeek string) ([]models.LapDefinition, error)
	Upsert(ctx context.Context, userID string, req dto.LapDefinitionRequest) (*models.LapDefinition, error)
	CopyWeek(ctx context.Context, userID string, req dto.CopyLapWeekRequest) (*dto.CopyLapWeekResponse, error)
}

// TrackingHandler serves attendance, lap performance and lap naming endpoints.
type TrackingHandler struct {
	attendance  attendanceService
	performance performanceService
	laps        lapService
}

// NewTrackingHandler constructs the handler.
func NewTrackingHandler(attendance attendanceService, performance performanceService, laps lapService) *TrackingHandler {
	return &TrackingHandler{attendance: attendance, performance: performance, laps: laps}
}

// ListAttendance godoc
// @Summary Attendance for a block and date
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param blockId query string true "Block ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *TrackingHandler) ListAttendance(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	records, err := h.attendance.List(c.Request.Context(), user.ID, c.Query("blockId"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records)
}

// RecordAttendance godoc
// @Summary Record attendance
// @Description mode=bulk marks every active student of the block
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AttendanceRequest true "Attendance"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *TrackingHandler) RecordAttendance(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.AttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	result, err := h.attendance.Record(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ListPerformance godoc
// @Summary Lap colors for a block and date
// @Tags Performance
// @Produce json
// @Security BearerAuth
// @Param blockId query string true "Block ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /performance [get]
func (h *TrackingHandler) ListPerformance(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	records, err := h.performance.List(c.Request.Context(), user.ID, c.Query("blockId"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records)
}

// RecordPerformance godoc
// @Summary Store or remove a lap color
// @Tags Performance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.PerformanceRequest true "Performance"
// @Success 200 {object} response.Envelope
// @Success 204
// @Router /performance [post]
func (h *TrackingHandler) RecordPerformance(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.PerformanceRequest
	if !bindJSON(c, &req, "invalid performance payload") {
		return
	}
	record, err := h.performance.Record(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if record == nil {
		response.NoContent(c)
		return
	}
	response.OK(c, record)
}

// ListLaps godoc
// @Summary Lap names for a block and week
// @Tags Laps
// @Produce json
// @Security BearerAuth
// @Param blockId query string true "Block ID"
// @Param weekStart query string true "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /laps [get]
func (h *TrackingHandler) ListLaps(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	laps, err := h.laps.ListWeek(c.Request.Context(), user.ID, c.Query("blockId"), c.Query("weekStart"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, laps)
}

// UpsertLap godoc
// @Summary Name a lap
// @Tags Laps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.LapDefinitionRequest true "Lap"
// @Success 200 {object} response.Envelope
// @Router /laps [post]
func (h *TrackingHandler) UpsertLap(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.LapDefinitionRequest
	if !bindJSON(c, &req, "invalid lap payload") {
		return
	}
	lap, err := h.laps.Upsert(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lap)
}

// CopyLapWeek godoc
// @Summary Copy a week of lap names to another block
// @Tags Laps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CopyLapWeekRequest true "Copy"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /laps/copy [post]
func (h *TrackingHandler) CopyLapWeek(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.CopyLapWeekRequest
	if !bindJSON(c, &req, "invalid copy payload") {
		return
	}
	res, err := h.laps.CopyWeek(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Standards godoc
// @Summary Curriculum standards laps can reference
// @Tags Laps
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /standards [get]
func (h *TrackingHandler) Standards(c *gin.Context) {
	response.OK(c, service.Standards)
}
