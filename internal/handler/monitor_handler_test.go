package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/service"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type monitorServiceMock struct {
	view    *service.MonitorView
	err     error
	calls   []string
	session dto.MonitorSessionRequest
}

func (m *monitorServiceMock) record(name string, req dto.MonitorSessionRequest) (*service.MonitorView, error) {
	m.calls = append(m.calls, name)
	m.session = req
	return m.view, m.err
}

func (m *monitorServiceMock) Open(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error) {
	return m.record("open", req)
}

func (m *monitorServiceMock) View(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error) {
	return m.record("view", req)
}

func (m *monitorServiceMock) DismissOverlay(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error) {
	return m.record("dismiss_overlay", req)
}

func (m *monitorServiceMock) TapDesk(ctx context.Context, userID string, req dto.MonitorTapDeskRequest) (*service.MonitorView, error) {
	return m.record("tap_desk:"+req.DeskID, req.MonitorSessionRequest)
}

func (m *monitorServiceMock) TapLapSelector(ctx context.Context, userID string, req dto.MonitorLapRequest) (*service.MonitorView, error) {
	return m.record("tap_lap", req.MonitorSessionRequest)
}

func (m *monitorServiceMock) TapPerformanceZone(ctx context.Context, userID string, req dto.MonitorZoneRequest) (*service.MonitorView, error) {
	return m.record("tap_zone", req.MonitorSessionRequest)
}

func (m *monitorServiceMock) ToggleMode(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error) {
	return m.record("toggle_mode", req)
}

func (m *monitorServiceMock) OpenListView(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error) {
	return m.record("open_list", req)
}

func (m *monitorServiceMock) CloseListView(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*service.MonitorView, error) {
	return m.record("close_list", req)
}

func (m *monitorServiceMock) SetAttendance(ctx context.Context, userID string, req dto.MonitorAttendanceRequest) (*service.MonitorView, error) {
	return m.record("set_attendance", req.MonitorSessionRequest)
}

func (m *monitorServiceMock) BulkAttendance(ctx context.Context, userID string, req dto.MonitorBulkRequest) (*service.MonitorView, error) {
	return m.record("bulk_attendance", req.MonitorSessionRequest)
}

func stubView(effect service.MonitorEffect) *service.MonitorView {
	return &service.MonitorView{
		State:  &models.MonitorState{Mode: models.MonitorModeAttendance},
		Block:  models.Block{ID: "block-1", Number: 1, Name: "Math"},
		Effect: effect,
	}
}

func TestMonitorHandlerTapDesk(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &monitorServiceMock{view: stubView(service.MonitorEffect{Kind: service.EffectAttendance})}
	handler := NewMonitorHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/monitor/tap-desk", []byte(`{"blockId":"block-1","date":"2025-01-06","deskId":"desk-1"}`))
	withUser(c)

	handler.TapDesk(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"tap_desk:desk-1"}, mockSvc.calls)
	assert.Equal(t, "2025-01-06", mockSvc.session.Date)
}

func TestMonitorHandlerKeepsViewOnStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	failure := appErrors.Wrap(errors.New("connection reset"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	mockSvc := &monitorServiceMock{view: stubView(service.MonitorEffect{Kind: service.EffectFailed}), err: failure}
	handler := NewMonitorHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/monitor/tap-desk", []byte(`{"blockId":"block-1","deskId":"desk-1"}`))
	withUser(c)

	handler.TapDesk(c)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Data  service.MonitorView `json:"data"`
		Error appErrors.Error     `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal", body.Error.Code)
	assert.Equal(t, service.EffectFailed, body.Data.Effect.Kind)
	assert.Equal(t, "block-1", body.Data.Block.ID)
}

func TestMonitorHandlerErrorWithoutView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMonitorHandler(&monitorServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "block not found")})

	c, w := newGinContext(http.MethodPost, "/monitor/open", []byte(`{"blockId":"missing"}`))
	withUser(c)

	handler.Open(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), `"data"`)
}

func TestMonitorHandlerViewBindsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &monitorServiceMock{view: stubView(service.MonitorEffect{Kind: service.EffectNone})}
	handler := NewMonitorHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/monitor?blockId=block-1&date=2025-01-07", nil)
	withUser(c)

	handler.View(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "block-1", mockSvc.session.BlockID)
	assert.Equal(t, "2025-01-07", mockSvc.session.Date)
}

func TestMonitorHandlerSessionActions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &monitorServiceMock{view: stubView(service.MonitorEffect{Kind: service.EffectNone})}
	handler := NewMonitorHandler(mockSvc)

	for _, action := range []gin.HandlerFunc{handler.DismissOverlay, handler.ToggleMode, handler.OpenListView, handler.CloseListView} {
		c, w := newGinContext(http.MethodPost, "/monitor", []byte(`{"blockId":"block-1"}`))
		withUser(c)
		action(c)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, []string{"dismiss_overlay", "toggle_mode", "open_list", "close_list"}, mockSvc.calls)
}
