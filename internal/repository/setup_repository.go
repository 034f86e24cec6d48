package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

// SetupRepository aggregates the counts behind the setup checklist.
type SetupRepository struct {
	db *sqlx.DB
}

// NewSetupRepository constructs a SetupRepository.
func NewSetupRepository(db *sqlx.DB) *SetupRepository {
	return &SetupRepository{db: db}
}

// Counts returns non-archived blocks, active students, student desks and lap definitions of the year.
func (r *SetupRepository) Counts(ctx context.Context, schoolYearID string) (*models.SetupCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM blocks WHERE school_year_id = $1 AND archived = FALSE) AS blocks_count,
        (SELECT COUNT(*) FROM students WHERE school_year_id = $1 AND active = TRUE) AS students_count,
        (SELECT COUNT(*) FROM desks WHERE school_year_id = $1 AND kind = 'STUDENT') AS desks_count,
        (SELECT COUNT(*) FROM lap_definitions WHERE school_year_id = $1) AS laps_count`
	var counts models.SetupCounts
	if err := r.db.GetContext(ctx, &counts, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("setup counts: %w", err)
	}
	return &counts, nil
}
