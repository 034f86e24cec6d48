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

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var attendanceRowColumns = []string{"id", "school_year_id", "block_id", "student_id", "date", "status", "created_at", "updated_at"}

func TestAttendanceRepositoryListForStudentsWithoutStudents(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	records, err := repo.ListForStudents(context.Background(), "year-1", nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertKeepsOneRecordPerDay(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status")).
		WithArgs(sqlmock.AnyArg(), "year-1", "block-1", "s1", day, models.AttendanceStatusTardy, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).AddRow("att-1", "year-1", "block-0", "s1", day, "TARDY", now, now))

	record := &models.AttendanceRecord{
		SchoolYearID: "year-1",
		BlockID:      "block-1",
		StudentID:    "s1",
		Date:         time.Date(2025, 1, 7, 14, 30, 0, 0, time.UTC),
		Status:       models.AttendanceStatusTardy,
	}
	require.NoError(t, repo.Upsert(context.Background(), record))

	assert.Equal(t, "att-1", record.ID)
	assert.Equal(t, "block-0", record.BlockID)
	assert.Equal(t, day, record.Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertCoversActiveStudents(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM students WHERE school_year_id = $1 AND block_id = $2 AND active = TRUE")).
		WithArgs("year-1", "block-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s1").AddRow("s2"))
	for _, id := range []string{"s1", "s2"} {
		mock.ExpectQuery("INSERT INTO attendance_records").
			WithArgs(sqlmock.AnyArg(), "year-1", "block-1", id, day, models.AttendanceStatusAbsent, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(attendanceRowColumns).AddRow("att-"+id, "year-1", "block-1", id, day, "ABSENT", now, now))
	}
	mock.ExpectCommit()

	written, err := repo.BulkUpsert(context.Background(), "year-1", "block-1", day, models.AttendanceStatusAbsent)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}
