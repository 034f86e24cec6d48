package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	"github.com/noah-isme/academic-monitor-api/pkg/response"
)

type reportService interface {
	Run(ctx context.Context, userID string, req dto.ReportRequest) (*models.ReportResult, error)
	Export(ctx context.Context, userID string, req dto.ReportRequest, rawFormat string) (*service.ExportFile, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Run godoc
// @Summary Run a report
// @Description Pivots lap colors into one row per student (class view) or one row per rated lap (student view)
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ReportRequest true "Filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/run [post]
func (h *ReportHandler) Run(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ReportRequest
	if !bindJSON(c, &req, "invalid report filter") {
		return
	}
	result, err := h.reports.Run(c.Request.Context(), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Export godoc
// @Summary Export a report
// @Tags Reports
// @Accept json
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param payload body dto.ReportRequest true "Filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.ReportRequest
	if !bindJSON(c, &req, "invalid report filter") {
		return
	}
	file, err := h.reports.Export(c.Request.Context(), user.ID, req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
