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
	"github.com/noah-isme/academic-monitor-api/pkg/database"
)

const lapDefinitionColumns = `id, school_year_id, block_id, week_start, day_index, lap_number, name, standard_code, created_at, updated_at`

// LapDefinitionRepository persists named lap slots keyed by (block, week, day, lap).
type LapDefinitionRepository struct {
	db *sqlx.DB
}

// NewLapDefinitionRepository constructs a LapDefinitionRepository.
func NewLapDefinitionRepository(db *sqlx.DB) *LapDefinitionRepository {
	return &LapDefinitionRepository{db: db}
}

// ListByWeek returns a block's definitions for one week ordered by day then lap.
func (r *LapDefinitionRepository) ListByWeek(ctx context.Context, schoolYearID, blockID string, weekStart time.Time) ([]models.LapDefinition, error) {
	query := `SELECT ` + lapDefinitionColumns + ` FROM lap_definitions WHERE school_year_id = $1 AND block_id = $2 AND week_start = $3 ORDER BY day_index ASC, lap_number ASC`
	var laps []models.LapDefinition
	if err := r.db.SelectContext(ctx, &laps, query, schoolYearID, blockID, models.WeekStart(weekStart)); err != nil {
		return nil, fmt.Errorf("list lap definitions: %w", err)
	}
	return laps, nil
}

// List returns definitions matching a report filter.
func (r *LapDefinitionRepository) List(ctx context.Context, filter models.LapDefinitionFilter) ([]models.LapDefinition, error) {
	conditions := []string{"school_year_id = $1"}
	args := []interface{}{filter.SchoolYearID}

	if len(filter.BlockIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("block_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.BlockIDs))
	}
	if len(filter.WeekStarts) > 0 {
		conditions = append(conditions, fmt.Sprintf("week_start = ANY($%d::date[])", len(args)+1))
		args = append(args, pq.Array(dateStrings(filter.WeekStarts)))
	}
	if len(filter.DayIndexes) > 0 {
		conditions = append(conditions, fmt.Sprintf("day_index = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.DayIndexes))
	}
	if len(filter.LapNumbers) > 0 {
		conditions = append(conditions, fmt.Sprintf("lap_number = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.LapNumbers))
	}

	query := `SELECT ` + lapDefinitionColumns + ` FROM lap_definitions WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY week_start ASC, day_index ASC, lap_number ASC`
	var laps []models.LapDefinition
	if err := r.db.SelectContext(ctx, &laps, query, args...); err != nil {
		return nil, fmt.Errorf("list lap definitions: %w", err)
	}
	return laps, nil
}

// Upsert names a slot, replacing the name and standard of an existing one.
func (r *LapDefinitionRepository) Upsert(ctx context.Context, lap *models.LapDefinition) error {
	if lap.ID == "" {
		lap.ID = uuid.NewString()
	}
	lap.WeekStart = models.WeekStart(lap.WeekStart)
	now := time.Now().UTC()
	query := `INSERT INTO lap_definitions (id, school_year_id, block_id, week_start, day_index, lap_number, name, standard_code, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
        ON CONFLICT (block_id, week_start, day_index, lap_number) DO UPDATE SET name = EXCLUDED.name, standard_code = EXCLUDED.standard_code, updated_at = EXCLUDED.updated_at
        RETURNING ` + lapDefinitionColumns
	if err := r.db.GetContext(ctx, lap, query, lap.ID, lap.SchoolYearID, lap.BlockID, lap.WeekStart, lap.DayIndex, lap.LapNumber, lap.Name, lap.StandardCode, now); err != nil {
		return fmt.Errorf("upsert lap definition: %w", err)
	}
	return nil
}

// CopyWeek copies one block's week onto another block. When the target week already has definitions
// it fails with ErrLapWeekExists unless overwrite is set, in which case the target week is replaced.
func (r *LapDefinitionRepository) CopyWeek(ctx context.Context, schoolYearID, fromBlockID, toBlockID string, weekStart time.Time, overwrite bool) (int, error) {
	week := models.WeekStart(weekStart)
	created := 0
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var existing int
		const count = `SELECT COUNT(*) FROM lap_definitions WHERE school_year_id = $1 AND block_id = $2 AND week_start = $3`
		if err := tx.GetContext(ctx, &existing, count, schoolYearID, toBlockID, week); err != nil {
			return fmt.Errorf("count target laps: %w", err)
		}
		if existing > 0 {
			if !overwrite {
				return ErrLapWeekExists
			}
			const clear = `DELETE FROM lap_definitions WHERE school_year_id = $1 AND block_id = $2 AND week_start = $3`
			if _, err := tx.ExecContext(ctx, clear, schoolYearID, toBlockID, week); err != nil {
				return fmt.Errorf("clear target laps: %w", err)
			}
		}

		var source []models.LapDefinition
		query := `SELECT ` + lapDefinitionColumns + ` FROM lap_definitions WHERE school_year_id = $1 AND block_id = $2 AND week_start = $3 ORDER BY day_index ASC, lap_number ASC`
		if err := tx.SelectContext(ctx, &source, query, schoolYearID, fromBlockID, week); err != nil {
			return fmt.Errorf("list source laps: %w", err)
		}

		now := time.Now().UTC()
		const insert = `INSERT INTO lap_definitions (id, school_year_id, block_id, week_start, day_index, lap_number, name, standard_code, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
		for _, lap := range source {
			if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), schoolYearID, toBlockID, week, lap.DayIndex, lap.LapNumber, lap.Name, lap.StandardCode, now); err != nil {
				return fmt.Errorf("copy lap definition: %w", err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func dateStrings(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = models.FormatDate(d)
	}
	return out
}
