package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type fakeSetupRepo struct {
	counts   models.SetupCounts
	err      error
	schoolID string
}

func (f *fakeSetupRepo) Counts(ctx context.Context, schoolYearID string) (*models.SetupCounts, error) {
	f.schoolID = schoolYearID
	if f.err != nil {
		return nil, f.err
	}
	counts := f.counts
	return &counts, nil
}

func TestDeriveSetupStatusEmptyYear(t *testing.T) {
	status := DeriveSetupStatus(models.SetupCounts{})

	require.Len(t, status.Steps, 5)
	assert.True(t, status.Unlocked(models.SetupStepBlocks))
	assert.Equal(t, "Create your first block.", status.Steps[0].Helper)
	for _, step := range status.Steps[1:] {
		assert.False(t, step.Unlocked, step.Step)
		assert.NotEmpty(t, step.Helper)
	}
}

func TestDeriveSetupStatusUnlocksInOrder(t *testing.T) {
	status := DeriveSetupStatus(models.SetupCounts{BlocksCount: 1, StudentsCount: 3})

	assert.True(t, status.Unlocked(models.SetupStepStudents))
	assert.True(t, status.Unlocked(models.SetupStepSeating))
	assert.False(t, status.Unlocked(models.SetupStepLaps))
	assert.False(t, status.Unlocked(models.SetupStepReporting))
	assert.Empty(t, status.Steps[1].Helper)
	assert.Equal(t, "Create a seating chart to unlock laps.", status.Steps[3].Helper)
	assert.Equal(t, "/reports", status.Steps[4].Href)

	status = DeriveSetupStatus(models.SetupCounts{BlocksCount: 1, StudentsCount: 1, DesksCount: 1, LapsCount: 1})
	for _, step := range status.Steps {
		assert.True(t, step.Unlocked, step.Step)
	}
}

func TestSetupServiceStatus(t *testing.T) {
	repo := &fakeSetupRepo{counts: models.SetupCounts{BlocksCount: 2}}
	svc := NewSetupService(repo, &fakeYears{year: models.SchoolYear{ID: "year-1"}})

	status, err := svc.Status(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "year-1", repo.schoolID)
	assert.Equal(t, 2, status.BlocksCount)
	assert.True(t, status.Unlocked(models.SetupStepStudents))

	repo.err = errors.New("db down")
	_, err = svc.Status(context.Background(), "user-1")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
