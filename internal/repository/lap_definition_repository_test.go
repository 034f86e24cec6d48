package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

func newLapRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var lapRowColumns = []string{"id", "school_year_id", "block_id", "week_start", "day_index", "lap_number", "name", "standard_code", "created_at", "updated_at"}

func TestLapDefinitionRepositoryUpsertNormalisesWeek(t *testing.T) {
	db, mock, cleanup := newLapRepoMock(t)
	defer cleanup()
	repo := NewLapDefinitionRepository(db)

	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (block_id, week_start, day_index, lap_number) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "year-1", "block-1", monday, 2, 1, "Ratios", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(lapRowColumns).AddRow("lap-1", "year-1", "block-1", monday, 2, 1, "Ratios", "RP.1", now, now))

	lap := &models.LapDefinition{
		SchoolYearID: "year-1",
		BlockID:      "block-1",
		WeekStart:    time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC),
		DayIndex:     2,
		LapNumber:    1,
		Name:         "Ratios",
	}
	require.NoError(t, repo.Upsert(context.Background(), lap))
	assert.Equal(t, monday, lap.WeekStart)
	require.NotNil(t, lap.StandardCode)
	assert.Equal(t, "RP.1", *lap.StandardCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLapDefinitionRepositoryCopyWeekRefusesExistingTarget(t *testing.T) {
	db, mock, cleanup := newLapRepoMock(t)
	defer cleanup()
	repo := NewLapDefinitionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lap_definitions")).
		WithArgs("year-1", "block-2", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	created, err := repo.CopyWeek(context.Background(), "year-1", "block-1", "block-2", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), false)
	assert.ErrorIs(t, err, ErrLapWeekExists)
	assert.Zero(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLapDefinitionRepositoryCopyWeekOverwrites(t *testing.T) {
	db, mock, cleanup := newLapRepoMock(t)
	defer cleanup()
	repo := NewLapDefinitionRepository(db)

	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lap_definitions")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("DELETE FROM lap_definitions").
		WithArgs("year-1", "block-2", monday).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM lap_definitions WHERE school_year_id").
		WithArgs("year-1", "block-1", monday).
		WillReturnRows(sqlmock.NewRows(lapRowColumns).
			AddRow("lap-1", "year-1", "block-1", monday, 0, 1, "Warm up", nil, now, now).
			AddRow("lap-2", "year-1", "block-1", monday, 0, 2, "Ratios", "RP.1", now, now))
	mock.ExpectExec("INSERT INTO lap_definitions").
		WithArgs(sqlmock.AnyArg(), "year-1", "block-2", monday, 0, 1, "Warm up", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO lap_definitions").
		WithArgs(sqlmock.AnyArg(), "year-1", "block-2", monday, 0, 2, "Ratios", "RP.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.CopyWeek(context.Background(), "year-1", "block-1", "block-2", monday, true)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}
