package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/pkg/database"
)

const attendanceColumns = `id, school_year_id, block_id, student_id, date, status, created_at, updated_at`

// upsertAttendanceQuery keeps the original block id on conflict; only the status changes.
const upsertAttendanceQuery = `INSERT INTO attendance_records (id, school_year_id, block_id, student_id, date, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
        ON CONFLICT (student_id, date) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
        RETURNING ` + attendanceColumns

// AttendanceRepository persists daily attendance keyed by (student, date).
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByBlockDate returns records filed under the block for the date.
func (r *AttendanceRepository) ListByBlockDate(ctx context.Context, schoolYearID, blockID string, date time.Time) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE school_year_id = $1 AND block_id = $2 AND date = $3`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, schoolYearID, blockID, models.NormalizeDate(date)); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ListForStudents returns the date's records for the given students whichever block they were filed under.
func (r *AttendanceRepository) ListForStudents(ctx context.Context, schoolYearID string, studentIDs []string, date time.Time) ([]models.AttendanceRecord, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE school_year_id = $1 AND student_id = ANY($2) AND date = $3`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, schoolYearID, pq.Array(studentIDs), models.NormalizeDate(date)); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return records, nil
}

// Upsert records a status, overwriting any existing status for the same student and day.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.Date = models.NormalizeDate(record.Date)
	now := time.Now().UTC()
	if err := r.db.GetContext(ctx, record, upsertAttendanceQuery, record.ID, record.SchoolYearID, record.BlockID, record.StudentID, record.Date, record.Status, now); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// BulkUpsert sets the status of every active student in the block for the date and returns the number written.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, schoolYearID, blockID string, date time.Time, status models.AttendanceStatus) (int, error) {
	day := models.NormalizeDate(date)
	written := 0
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var studentIDs []string
		const activeStudents = `SELECT id FROM students WHERE school_year_id = $1 AND block_id = $2 AND active = TRUE ORDER BY seat_number ASC`
		if err := tx.SelectContext(ctx, &studentIDs, activeStudents, schoolYearID, blockID); err != nil {
			return fmt.Errorf("list active students: %w", err)
		}
		now := time.Now().UTC()
		for _, studentID := range studentIDs {
			var record models.AttendanceRecord
			if err := tx.GetContext(ctx, &record, upsertAttendanceQuery, uuid.NewString(), schoolYearID, blockID, studentID, day, status, now); err != nil {
				return fmt.Errorf("bulk upsert attendance: %w", err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
