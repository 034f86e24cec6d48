package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/middleware"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type reportServiceMock struct {
	result     *models.ReportResult
	file       *service.ExportFile
	err        error
	lastUser   string
	lastReq    dto.ReportRequest
	lastFormat string
}

func (m *reportServiceMock) Run(ctx context.Context, userID string, req dto.ReportRequest) (*models.ReportResult, error) {
	m.lastUser, m.lastReq = userID, req
	return m.result, m.err
}

func (m *reportServiceMock) Export(ctx context.Context, userID string, req dto.ReportRequest, rawFormat string) (*service.ExportFile, error) {
	m.lastUser, m.lastReq, m.lastFormat = userID, req, rawFormat
	return m.file, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withUser(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.User{ID: "user-1", Email: "teacher@example.com"})
}

func TestReportHandlerRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{result: &models.ReportResult{
		Columns: []string{"student", "2025-01-06 Lap 1"},
		Rows:    []map[string]string{{"student": "Ada", "2025-01-06 Lap 1": "GREEN"}},
	}}
	handler := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReportRequest{Blocks: []string{"block-1"}, WeekStart: "2025-01-06"})
	c, w := newGinContext(http.MethodPost, "/reports/run", payload)
	withUser(c)

	handler.Run(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastUser)
	assert.Equal(t, []string{"block-1"}, mockSvc.lastReq.Blocks)

	var body struct {
		Data models.ReportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "GREEN", body.Data.Rows[0]["2025-01-06 Lap 1"])
}

func TestReportHandlerRunErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{err: appErrors.ErrNoBlocks})

	c, w := newGinContext(http.MethodPost, "/reports/run", []byte(`{}`))
	handler.Run(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodPost, "/reports/run", []byte(`{}`))
	withUser(c)
	handler.Run(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"no_blocks"`)

	c, w = newGinContext(http.MethodPost, "/reports/run", []byte(`{"blocks":`))
	withUser(c)
	handler.Run(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"invalid"`)
}

func TestReportHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{file: &service.ExportFile{
		Filename:    "academic-monitor-report.csv",
		ContentType: "text/csv; charset=utf-8",
		Payload:     []byte("student\nAda\n"),
	}}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/reports/export?format=csv", []byte(`{"blocks":["block-1"]}`))
	withUser(c)

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.lastFormat)
	assert.Equal(t, `attachment; filename="academic-monitor-report.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "student\nAda\n", w.Body.String())
}
