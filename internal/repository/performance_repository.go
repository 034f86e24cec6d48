package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

const performanceColumns = `id, school_year_id, block_id, student_id, date, lap_number, color, created_at, updated_at`

// PerformanceRepository persists lap colors keyed by (student, date, lap).
type PerformanceRepository struct {
	db *sqlx.DB
}

// NewPerformanceRepository constructs a PerformanceRepository.
func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// ListByBlockDate returns the colors filed under the block for the date.
func (r *PerformanceRepository) ListByBlockDate(ctx context.Context, schoolYearID, blockID string, date time.Time) ([]models.LapPerformance, error) {
	query := `SELECT ` + performanceColumns + ` FROM lap_performances WHERE school_year_id = $1 AND block_id = $2 AND date = $3 ORDER BY lap_number ASC`
	var records []models.LapPerformance
	if err := r.db.SelectContext(ctx, &records, query, schoolYearID, blockID, models.NormalizeDate(date)); err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}
	return records, nil
}

// List returns performance records matching a report filter.
func (r *PerformanceRepository) List(ctx context.Context, filter models.PerformanceFilter) ([]models.LapPerformance, error) {
	conditions := []string{"school_year_id = $1"}
	args := []interface{}{filter.SchoolYearID}

	if len(filter.BlockIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("block_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.BlockIDs))
	}
	if len(filter.StudentIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("student_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.StudentIDs))
	}
	if len(filter.Dates) > 0 {
		conditions = append(conditions, fmt.Sprintf("date = ANY($%d::date[])", len(args)+1))
		args = append(args, pq.Array(dateStrings(filter.Dates)))
	}
	if len(filter.LapNumbers) > 0 {
		conditions = append(conditions, fmt.Sprintf("lap_number = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.LapNumbers))
	}

	query := `SELECT ` + performanceColumns + ` FROM lap_performances WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY date DESC, lap_number ASC`
	var records []models.LapPerformance
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}
	return records, nil
}

// Upsert stores a color, overwriting any existing color for the same student, day and lap.
func (r *PerformanceRepository) Upsert(ctx context.Context, record *models.LapPerformance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.Date = models.NormalizeDate(record.Date)
	now := time.Now().UTC()
	query := `INSERT INTO lap_performances (id, school_year_id, block_id, student_id, date, lap_number, color, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
        ON CONFLICT (student_id, date, lap_number) DO UPDATE SET color = EXCLUDED.color, updated_at = EXCLUDED.updated_at
        RETURNING ` + performanceColumns
	if err := r.db.GetContext(ctx, record, query, record.ID, record.SchoolYearID, record.BlockID, record.StudentID, record.Date, record.LapNumber, record.Color, now); err != nil {
		return fmt.Errorf("upsert performance: %w", err)
	}
	return nil
}

// Delete removes the color for a student, day and lap. Deleting a missing record is not an error.
func (r *PerformanceRepository) Delete(ctx context.Context, schoolYearID, studentID string, date time.Time, lapNumber int) error {
	const query = `DELETE FROM lap_performances WHERE school_year_id = $1 AND student_id = $2 AND date = $3 AND lap_number = $4`
	if _, err := r.db.ExecContext(ctx, query, schoolYearID, studentID, models.NormalizeDate(date), lapNumber); err != nil {
		return fmt.Errorf("delete performance: %w", err)
	}
	return nil
}
