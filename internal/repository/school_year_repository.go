package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

// SchoolYearRepository persists the school years that scope classroom data.
type SchoolYearRepository struct {
	db *sqlx.DB
}

// NewSchoolYearRepository constructs a SchoolYearRepository.
func NewSchoolYearRepository(db *sqlx.DB) *SchoolYearRepository {
	return &SchoolYearRepository{db: db}
}

// FindActive returns the newest active, non-archived year for a user. sql.ErrNoRows is returned untouched.
func (r *SchoolYearRepository) FindActive(ctx context.Context, userID string) (*models.SchoolYear, error) {
	const query = `SELECT id, user_id, label, active, archived, created_at FROM school_years WHERE user_id = $1 AND active = TRUE AND archived = FALSE ORDER BY created_at DESC LIMIT 1`
	var year models.SchoolYear
	if err := r.db.GetContext(ctx, &year, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active school year: %w", err)
	}
	return &year, nil
}

// Create inserts a school year.
func (r *SchoolYearRepository) Create(ctx context.Context, year *models.SchoolYear) error {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	if year.CreatedAt.IsZero() {
		year.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO school_years (id, user_id, label, active, archived, created_at) VALUES (:id, :user_id, :label, :active, :archived, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, year); err != nil {
		return fmt.Errorf("create school year: %w", err)
	}
	return nil
}
