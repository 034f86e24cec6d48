package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

var monitorDay = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

type monitorFixture struct {
	svc   *MonitorService
	room  *classroom
	clock *fixedClock
	req   dto.MonitorSessionRequest
}

func newMonitorFixture(t *testing.T, delay time.Duration) *monitorFixture {
	t.Helper()
	room := newClassroom()
	room.addBlock("block-1", 1, "Math")
	room.addStudent("student-a", "block-1", "Ada", 1, true)
	room.addStudent("student-b", "block-1", "Ben", 2, true)
	room.addDesk("desk-a", "block-1", "student-a")
	room.addDesk("desk-b", "block-1", "student-b")
	room.nameLaps("block-1", monitorDay)

	clock := &fixedClock{now: monitorDay.Add(15 * time.Hour)}
	svc := NewMonitorService(room.repos(), nil, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, nil, nil, zap.NewNop(), MonitorConfig{
		AutoSwitchDelay: delay,
		BannerDuration:  1500 * time.Millisecond,
		Now:             clock.Now,
	})
	return &monitorFixture{svc: svc, room: room, clock: clock, req: dto.MonitorSessionRequest{BlockID: "block-1", Date: "2025-01-06"}}
}

func (f *monitorFixture) tapDesk(t *testing.T, deskID string) *MonitorView {
	t.Helper()
	view, err := f.svc.TapDesk(context.Background(), "user-1", dto.MonitorTapDeskRequest{MonitorSessionRequest: f.req, DeskID: deskID})
	require.NoError(t, err)
	return view
}

func (f *monitorFixture) tapZone(t *testing.T, deskID string, zone int) *MonitorView {
	t.Helper()
	view, err := f.svc.TapPerformanceZone(context.Background(), "user-1", dto.MonitorZoneRequest{MonitorSessionRequest: f.req, DeskID: deskID, ZoneIndex: zone})
	require.NoError(t, err)
	return view
}

func (f *monitorFixture) tapLap(t *testing.T, lap int) *MonitorView {
	t.Helper()
	view, err := f.svc.TapLapSelector(context.Background(), "user-1", dto.MonitorLapRequest{MonitorSessionRequest: f.req, LapNumber: lap})
	require.NoError(t, err)
	return view
}

func TestMonitorEndToEndScenario(t *testing.T) {
	f := newMonitorFixture(t, 0)
	ctx := context.Background()

	view, err := f.svc.Open(ctx, "user-1", f.req)
	require.NoError(t, err)
	assert.Equal(t, models.MonitorModeAttendance, view.State.Mode)
	assert.True(t, view.State.AttendanceOverlayVisible)
	assert.False(t, view.Predicates.AttendanceComplete)

	f.tapDesk(t, "desk-a")
	f.tapDesk(t, "desk-a")
	view = f.tapDesk(t, "desk-a")
	status, ok := f.room.status("student-a", monitorDay)
	require.True(t, ok)
	assert.Equal(t, models.AttendanceStatusTardy, status)
	assert.False(t, view.Predicates.AttendanceComplete)
	assert.False(t, view.State.AttendanceOverlayVisible)

	view = f.tapDesk(t, "desk-b")
	status, _ = f.room.status("student-b", monitorDay)
	assert.Equal(t, models.AttendanceStatusPresent, status)
	assert.True(t, view.Predicates.AttendanceComplete)
	assert.Equal(t, models.MonitorModePerformance, view.State.Mode)
	assert.True(t, view.State.CompletionBannerVisible)

	view = f.tapLap(t, 1)
	assert.Equal(t, []int{1}, view.State.SelectedLaps)
	assert.True(t, view.Predicates.ReadyForPerformance)

	view = f.tapZone(t, "desk-a", 0)
	color, ok := f.room.color("student-a", monitorDay, 1)
	require.True(t, ok)
	assert.Equal(t, models.PerformanceGreen, color)
	assert.Equal(t, EffectPerformance, view.Effect.Kind)

	f.tapZone(t, "desk-a", 0)
	color, _ = f.room.color("student-a", monitorDay, 1)
	assert.Equal(t, models.PerformanceYellow, color)
}

func TestMonitorAttendanceCycleWraps(t *testing.T) {
	f := newMonitorFixture(t, 0)
	_, err := f.svc.Open(context.Background(), "user-1", f.req)
	require.NoError(t, err)

	f.tapDesk(t, "desk-a")
	first, _ := f.room.status("student-a", monitorDay)
	for i := 0; i < 4; i++ {
		f.tapDesk(t, "desk-a")
	}
	last, _ := f.room.status("student-a", monitorDay)
	assert.Equal(t, first, last)
	assert.Equal(t, 5, f.room.writes)
}

func TestMonitorPerformanceCycleDeletesOnWrap(t *testing.T) {
	f := newMonitorFixture(t, 0)
	ctx := context.Background()
	_, err := fakeAttendance{f.room}.BulkUpsert(ctx, "year-1", "block-1", monitorDay, models.AttendanceStatusPresent)
	require.NoError(t, err)

	view, err := f.svc.Open(ctx, "user-1", f.req)
	require.NoError(t, err)
	require.Equal(t, models.MonitorModePerformance, view.State.Mode)
	f.tapLap(t, 2)

	expected := []models.PerformanceColor{models.PerformanceGreen, models.PerformanceYellow, models.PerformanceRed}
	for _, want := range expected {
		f.tapZone(t, "desk-b", 0)
		got, ok := f.room.color("student-b", monitorDay, 2)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	view = f.tapZone(t, "desk-b", 0)
	_, ok := f.room.color("student-b", monitorDay, 2)
	assert.False(t, ok)
	assert.Equal(t, 1, f.room.deletes)
	assert.Equal(t, "", view.Effect.Color)
	for _, desk := range view.Desks {
		if desk.ID == "desk-b" {
			require.Len(t, desk.Zones, 1)
			assert.Equal(t, "", desk.Zones[0].Color)
		}
	}
}

func TestMonitorSeatingGateBlocksWrites(t *testing.T) {
	f := newMonitorFixture(t, 0)
	f.room.addStudent("student-c", "block-1", "Cy", 3, true)
	ctx := context.Background()

	view, err := f.svc.Open(ctx, "user-1", f.req)
	require.NoError(t, err)
	assert.False(t, view.Predicates.SeatingComplete)
	assert.Equal(t, 1, view.Predicates.UnseatedCount)

	view = f.tapDesk(t, "desk-a")
	assert.Equal(t, EffectIgnored, view.Effect.Kind)
	assert.Equal(t, ReasonSeatingIncomplete, view.Effect.Reason)

	view = f.tapZone(t, "desk-a", 0)
	assert.Equal(t, EffectIgnored, view.Effect.Kind)

	view, err = f.svc.BulkAttendance(ctx, "user-1", dto.MonitorBulkRequest{MonitorSessionRequest: f.req, Status: "PRESENT", Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, ReasonSeatingIncomplete, view.Effect.Reason)

	view, err = f.svc.SetAttendance(ctx, "user-1", dto.MonitorAttendanceRequest{MonitorSessionRequest: f.req, StudentID: "student-a", Status: "ABSENT"})
	require.NoError(t, err)
	assert.Equal(t, EffectIgnored, view.Effect.Kind)

	assert.Zero(t, f.room.writes)
	assert.Zero(t, f.room.deletes)
}

func TestMonitorBulkAttendanceNeedsConfirmation(t *testing.T) {
	f := newMonitorFixture(t, 0)
	ctx := context.Background()

	view, err := f.svc.BulkAttendance(ctx, "user-1", dto.MonitorBulkRequest{MonitorSessionRequest: f.req, Status: "LEFT_EARLY"})
	require.NoError(t, err)
	assert.Equal(t, EffectConfirmationRequired, view.Effect.Kind)
	assert.Equal(t, "Mark all students as LEFT EARLY?", view.Effect.Prompt)
	assert.Zero(t, f.room.writes)

	view, err = f.svc.BulkAttendance(ctx, "user-1", dto.MonitorBulkRequest{MonitorSessionRequest: f.req, Status: "LEFT_EARLY", Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, EffectBulkAttendance, view.Effect.Kind)
	assert.Equal(t, 2, f.room.writes)
	assert.True(t, view.Predicates.AttendanceComplete)
}

func TestMonitorStoreFailureReturnsResyncedView(t *testing.T) {
	f := newMonitorFixture(t, 0)
	f.room.writeErr = errors.New("connection reset")

	view, err := f.svc.TapDesk(context.Background(), "user-1", dto.MonitorTapDeskRequest{MonitorSessionRequest: f.req, DeskID: "desk-a"})
	require.Error(t, err)
	require.NotNil(t, view)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, EffectFailed, view.Effect.Kind)
	assert.Len(t, view.Desks, 2)
	_, ok := f.room.status("student-a", monitorDay)
	assert.False(t, ok)
}

func TestMonitorLapSelectorNavigatesWhenLapsUnnamed(t *testing.T) {
	f := newMonitorFixture(t, 0)
	f.room.laps = nil
	_, err := fakeAttendance{f.room}.BulkUpsert(context.Background(), "year-1", "block-1", monitorDay, models.AttendanceStatusPresent)
	require.NoError(t, err)

	view := f.tapLap(t, 1)
	assert.Equal(t, EffectNavigate, view.Effect.Kind)
	assert.Equal(t, "/setup/laps?returnTo=%2Fmonitor%3FblockId%3Dblock-1&focusDate=2025-01-06", view.Effect.Navigate)
	assert.Empty(t, view.State.SelectedLaps)
	require.Len(t, view.Laps, 3)
	assert.Equal(t, "Lap 1", view.Laps[0].Name)
}

func TestMonitorLapSelectorReturnsToAttendance(t *testing.T) {
	f := newMonitorFixture(t, 0)
	view := f.tapLap(t, 1)
	assert.Equal(t, EffectMode, view.Effect.Kind)
	assert.Equal(t, models.MonitorModeAttendance, view.State.Mode)
	assert.Empty(t, view.State.SelectedLaps)
}

func TestMonitorDelayedAutoSwitch(t *testing.T) {
	f := newMonitorFixture(t, 3*time.Second)
	ctx := context.Background()
	_, err := f.svc.Open(ctx, "user-1", f.req)
	require.NoError(t, err)

	f.tapDesk(t, "desk-a")
	view := f.tapDesk(t, "desk-b")
	assert.True(t, view.Predicates.AttendanceComplete)
	assert.Equal(t, models.MonitorModeAttendance, view.State.Mode)
	require.NotNil(t, view.State.PendingSwitchAt)

	f.clock.Advance(3 * time.Second)
	view, err = f.svc.View(ctx, "user-1", f.req)
	require.NoError(t, err)
	assert.Equal(t, models.MonitorModePerformance, view.State.Mode)
	assert.True(t, view.State.CompletionBannerVisible)

	f.clock.Advance(2 * time.Second)
	view, err = f.svc.View(ctx, "user-1", f.req)
	require.NoError(t, err)
	assert.False(t, view.State.CompletionBannerVisible)
	assert.Equal(t, models.MonitorModePerformance, view.State.Mode)
}

func TestMonitorUnknownBlock(t *testing.T) {
	f := newMonitorFixture(t, 0)
	_, err := f.svc.Open(context.Background(), "user-1", dto.MonitorSessionRequest{BlockID: "missing", Date: "2025-01-06"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestMonitorSetAttendanceRequiresStudent(t *testing.T) {
	f := newMonitorFixture(t, 0)
	_, err := f.svc.SetAttendance(context.Background(), "user-1", dto.MonitorAttendanceRequest{MonitorSessionRequest: f.req})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStudentRequired))

	_, err = f.svc.SetAttendance(context.Background(), "user-1", dto.MonitorAttendanceRequest{MonitorSessionRequest: f.req, StudentID: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStudentNotFound))
}

func TestMonitorListViewSetsStatusDirectly(t *testing.T) {
	f := newMonitorFixture(t, 0)
	ctx := context.Background()

	view, err := f.svc.OpenListView(ctx, "user-1", f.req)
	require.NoError(t, err)
	assert.True(t, view.State.ListViewOpen)
	require.Len(t, view.Roster, 2)

	_, err = f.svc.SetAttendance(ctx, "user-1", dto.MonitorAttendanceRequest{MonitorSessionRequest: f.req, StudentID: "student-a", Status: "absent"})
	require.NoError(t, err)
	status, _ := f.room.status("student-a", monitorDay)
	assert.Equal(t, models.AttendanceStatusAbsent, status)

	view, err = f.svc.CloseListView(ctx, "user-1", f.req)
	require.NoError(t, err)
	assert.False(t, view.State.ListViewOpen)
}

func TestMemorySessionStoreExpires(t *testing.T) {
	clock := &fixedClock{now: monitorDay}
	store := NewMemorySessionStore(clock.Now)
	key := models.MonitorSessionKey{UserID: "u", BlockID: "b", Date: monitorDay}
	state := &models.MonitorState{BlockID: "b", SelectedLaps: []int{1}}

	require.NoError(t, store.Save(context.Background(), key, state, time.Minute))
	state.SelectedLaps[0] = 3

	loaded, ok, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{1}, loaded.SelectedLaps)

	clock.Advance(time.Minute)
	_, ok, err = store.Load(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonitorZonesMapToSelectedLapsInAscendingOrder(t *testing.T) {
	f := newMonitorFixture(t, 0)
	ctx := context.Background()
	_, err := fakeAttendance{f.room}.BulkUpsert(ctx, "year-1", "block-1", monitorDay, models.AttendanceStatusPresent)
	require.NoError(t, err)
	_, err = f.svc.Open(ctx, "user-1", f.req)
	require.NoError(t, err)

	f.tapLap(t, 3)
	view := f.tapLap(t, 1)
	assert.Equal(t, []int{1, 3}, view.State.SelectedLaps)

	view = f.tapZone(t, "desk-a", 1)
	assert.Equal(t, 3, view.Effect.LapNumber)
	color, ok := f.room.color("student-a", monitorDay, 3)
	require.True(t, ok)
	assert.Equal(t, models.PerformanceGreen, color)
	_, ok = f.room.color("student-a", monitorDay, 1)
	assert.False(t, ok)

	view = f.tapZone(t, "desk-a", 0)
	assert.Equal(t, 1, view.Effect.LapNumber)
	color, ok = f.room.color("student-a", monitorDay, 1)
	require.True(t, ok)
	assert.Equal(t, models.PerformanceGreen, color)

	for _, desk := range view.Desks {
		if desk.ID == "desk-a" {
			require.Len(t, desk.Zones, 2)
			assert.Equal(t, 1, desk.Zones[0].LapNumber)
			assert.Equal(t, 3, desk.Zones[1].LapNumber)
		}
	}

	writes := f.room.writes
	_, err = f.svc.TapPerformanceZone(ctx, "user-1", dto.MonitorZoneRequest{MonitorSessionRequest: f.req, DeskID: "desk-a", ZoneIndex: 2})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = f.svc.TapPerformanceZone(ctx, "user-1", dto.MonitorZoneRequest{MonitorSessionRequest: f.req, DeskID: "desk-a", ZoneIndex: -1})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, writes, f.room.writes)
}
