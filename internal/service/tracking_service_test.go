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

type fakeAttendanceRepo struct{ fakeAttendance }

func (f fakeAttendanceRepo) ListByBlockDate(ctx context.Context, schoolYearID, blockID string, date time.Time) ([]models.AttendanceRecord, error) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	var out []models.AttendanceRecord
	for _, record := range f.c.attendance {
		if record.BlockID == blockID && models.FormatDate(record.Date) == models.FormatDate(date) {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakePerformanceRepo struct{ fakePerformance }

func (f fakePerformanceRepo) ListByBlockDate(ctx context.Context, schoolYearID, blockID string, date time.Time) ([]models.LapPerformance, error) {
	return f.List(ctx, models.PerformanceFilter{Dates: []time.Time{date}})
}

func newTrackingRoom() *classroom {
	room := newClassroom()
	room.addBlock("block-1", 1, "Math")
	room.addStudent("a", "block-1", "Ada", 1, true)
	room.addStudent("b", "block-1", "Ben", 2, true)
	room.addStudent("c", "block-1", "Cy", 3, false)
	return room
}

func TestAttendanceServiceRecordSingle(t *testing.T) {
	room := newTrackingRoom()
	svc := NewAttendanceService(fakeAttendanceRepo{fakeAttendance{room}}, fakeBlocks{room}, fakeStudents{room}, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, nil, zap.NewNop())
	ctx := context.Background()
	day := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)

	res, err := svc.Record(ctx, "user-1", dto.AttendanceRequest{BlockID: "block-1", Date: "2025-09-03", StudentID: "a", Status: "tardy"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	status, ok := room.status("a", day)
	require.True(t, ok)
	assert.Equal(t, models.AttendanceStatusTardy, status)

	_, err = svc.Record(ctx, "user-1", dto.AttendanceRequest{BlockID: "block-1", Date: "2025-09-03", StudentID: "a", Status: "sleeping"})
	require.NoError(t, err)
	status, _ = room.status("a", day)
	assert.Equal(t, models.AttendanceStatusPresent, status)

	records, err := svc.List(ctx, "user-1", "block-1", "2025-09-03")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceServiceRecordRejectsBadInput(t *testing.T) {
	room := newTrackingRoom()
	svc := NewAttendanceService(fakeAttendanceRepo{fakeAttendance{room}}, fakeBlocks{room}, fakeStudents{room}, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, "user-1", dto.AttendanceRequest{BlockID: "block-1", Date: "2025-09-03"})
	assert.True(t, errors.Is(err, appErrors.ErrStudentRequired))

	_, err = svc.Record(ctx, "user-1", dto.AttendanceRequest{BlockID: "block-1", Date: "09/03/2025", StudentID: "a"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Record(ctx, "user-1", dto.AttendanceRequest{BlockID: "block-9", Date: "2025-09-03", StudentID: "a"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Record(ctx, "user-1", dto.AttendanceRequest{BlockID: "block-1", Date: "2025-09-03", StudentID: "z"})
	assert.True(t, errors.Is(err, appErrors.ErrStudentNotFound))

	_, err = svc.List(ctx, "user-1", "", "2025-09-03")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Zero(t, room.writes)
}

func TestAttendanceServiceBulkSkipsInactive(t *testing.T) {
	room := newTrackingRoom()
	svc := NewAttendanceService(fakeAttendanceRepo{fakeAttendance{room}}, fakeBlocks{room}, fakeStudents{room}, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, nil, nil)
	day := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)

	res, err := svc.Record(context.Background(), "user-1", dto.AttendanceRequest{BlockID: "block-1", Date: "2025-09-03", Mode: "BULK", Status: "ABSENT"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Nil(t, res.Record)

	_, ok := room.status("c", day)
	assert.False(t, ok)
	status, _ := room.status("b", day)
	assert.Equal(t, models.AttendanceStatusAbsent, status)
}

func TestPerformanceServiceRecordAndRemove(t *testing.T) {
	room := newTrackingRoom()
	svc := NewPerformanceService(fakePerformanceRepo{fakePerformance{room}}, fakeStudents{room}, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, nil, zap.NewNop())
	ctx := context.Background()
	day := time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC)

	record, err := svc.Record(ctx, "user-1", dto.PerformanceRequest{BlockID: "block-1", StudentID: "a", Date: "2025-09-03", LapNumber: 2, Color: "purple"})
	require.NoError(t, err)
	assert.Equal(t, models.PerformanceGreen, record.Color)

	_, err = svc.Record(ctx, "user-1", dto.PerformanceRequest{BlockID: "block-1", StudentID: "a", Date: "2025-09-03", LapNumber: 2, Color: "red"})
	require.NoError(t, err)
	color, ok := room.color("a", day, 2)
	require.True(t, ok)
	assert.Equal(t, models.PerformanceRed, color)

	listed, err := svc.List(ctx, "user-1", "block-1", "2025-09-03")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	removed, err := svc.Record(ctx, "user-1", dto.PerformanceRequest{BlockID: "block-1", StudentID: "a", Date: "2025-09-03", LapNumber: 2, Remove: true})
	require.NoError(t, err)
	assert.Nil(t, removed)
	_, ok = room.color("a", day, 2)
	assert.False(t, ok)
}

func TestPerformanceServiceRejectsLapOutOfRange(t *testing.T) {
	room := newTrackingRoom()
	svc := NewPerformanceService(fakePerformanceRepo{fakePerformance{room}}, fakeStudents{room}, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, nil, nil)

	_, err := svc.Record(context.Background(), "user-1", dto.PerformanceRequest{BlockID: "block-1", StudentID: "a", Date: "2025-09-03", LapNumber: 4, Color: "GREEN"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Record(context.Background(), "user-1", dto.PerformanceRequest{BlockID: "block-1", StudentID: "z", Date: "2025-09-03", LapNumber: 1, Color: "GREEN"})
	assert.True(t, errors.Is(err, appErrors.ErrStudentNotFound))
	assert.Zero(t, room.writes)
}
