package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/repository"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type fakeLapRepo struct {
	fakeLaps
	copied int
}

func (f *fakeLapRepo) Upsert(ctx context.Context, lap *models.LapDefinition) error {
	for i, existing := range f.c.laps {
		if existing.BlockID == lap.BlockID && existing.WeekStart.Equal(lap.WeekStart) && existing.DayIndex == lap.DayIndex && existing.LapNumber == lap.LapNumber {
			f.c.laps[i] = *lap
			return nil
		}
	}
	f.c.laps = append(f.c.laps, *lap)
	return nil
}

func (f *fakeLapRepo) CopyWeek(ctx context.Context, schoolYearID, fromBlockID, toBlockID string, weekStart time.Time, overwrite bool) (int, error) {
	target, _ := f.ListByWeek(ctx, schoolYearID, toBlockID, weekStart)
	if len(target) > 0 && !overwrite {
		return 0, repository.ErrLapWeekExists
	}
	source, _ := f.ListByWeek(ctx, schoolYearID, fromBlockID, weekStart)
	for _, lap := range source {
		lap.BlockID = toBlockID
		_ = f.Upsert(ctx, &lap)
	}
	f.copied += len(source)
	return len(source), nil
}

func newLapFixture() (*LapService, *fakeLapRepo) {
	room := newClassroom()
	room.addBlock("block-1", 1, "Math")
	room.addBlock("block-2", 2, "Science")
	repo := &fakeLapRepo{fakeLaps: fakeLaps{room}}
	svc := NewLapService(repo, fakeBlocks{room}, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, nil, nil)
	return svc, repo
}

func TestLapServiceUpsertNormalisesWeek(t *testing.T) {
	svc, _ := newLapFixture()
	code := " RP.2 "

	lap, err := svc.Upsert(context.Background(), "user-1", dto.LapDefinitionRequest{
		BlockID:      "block-1",
		WeekStart:    "2025-01-08",
		DayIndex:     2,
		LapNumber:    1,
		Name:         " Ratios ",
		StandardCode: &code,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", models.FormatDate(lap.WeekStart))
	assert.Equal(t, "Ratios", lap.Name)
	require.NotNil(t, lap.StandardCode)
	assert.Equal(t, "RP.2", *lap.StandardCode)

	laps, err := svc.ListWeek(context.Background(), "user-1", "block-1", "2025-01-10")
	require.NoError(t, err)
	assert.Len(t, laps, 1)
}

func TestLapServiceUpsertValidation(t *testing.T) {
	svc, _ := newLapFixture()

	_, err := svc.Upsert(context.Background(), "user-1", dto.LapDefinitionRequest{BlockID: "block-1", WeekStart: "2025-01-06", DayIndex: 5, LapNumber: 1, Name: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Upsert(context.Background(), "user-1", dto.LapDefinitionRequest{BlockID: "block-1", WeekStart: "2025-01-06", DayIndex: 0, LapNumber: 4, Name: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Upsert(context.Background(), "user-1", dto.LapDefinitionRequest{BlockID: "block-9", WeekStart: "2025-01-06", DayIndex: 0, LapNumber: 1, Name: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestLapServiceCopyWeek(t *testing.T) {
	svc, repo := newLapFixture()
	repo.c.nameLaps("block-1", reportWeek)
	req := dto.CopyLapWeekRequest{FromBlockID: "block-1", ToBlockID: "block-2", WeekStart: "2025-01-07"}

	resp, err := svc.CopyWeek(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Created)

	_, err = svc.CopyWeek(context.Background(), "user-1", req)
	assert.True(t, errors.Is(err, appErrors.ErrExists))

	req.Force = true
	_, err = svc.CopyWeek(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, 6, repo.copied)

	_, err = svc.CopyWeek(context.Background(), "user-1", dto.CopyLapWeekRequest{FromBlockID: "block-1", ToBlockID: "block-1", WeekStart: "2025-01-06"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
