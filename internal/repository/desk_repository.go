package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/pkg/database"
)

const deskColumns = `id, school_year_id, block_id, kind, student_id, seat_number, x, y, width, height, rotation, group_id, created_at, updated_at`

// DeskRepository manages persistence for seating chart desks.
type DeskRepository struct {
	db *sqlx.DB
}

// NewDeskRepository constructs a DeskRepository.
func NewDeskRepository(db *sqlx.DB) *DeskRepository {
	return &DeskRepository{db: db}
}

// List returns desks of the year, optionally restricted to one block.
func (r *DeskRepository) List(ctx context.Context, schoolYearID, blockID string) ([]models.Desk, error) {
	query := `SELECT ` + deskColumns + ` FROM desks WHERE school_year_id = $1`
	args := []interface{}{schoolYearID}
	if blockID != "" {
		query += fmt.Sprintf(" AND block_id = $%d", len(args)+1)
		args = append(args, blockID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var desks []models.Desk
	if err := r.db.SelectContext(ctx, &desks, query, args...); err != nil {
		return nil, fmt.Errorf("list desks: %w", err)
	}
	return desks, nil
}

// FindByID returns a desk inside the school year.
func (r *DeskRepository) FindByID(ctx context.Context, schoolYearID, id string) (*models.Desk, error) {
	query := `SELECT ` + deskColumns + ` FROM desks WHERE school_year_id = $1 AND id = $2`
	var desk models.Desk
	if err := r.db.GetContext(ctx, &desk, query, schoolYearID, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find desk: %w", err)
	}
	return &desk, nil
}

// FindByStudent returns the desk referencing a student.
func (r *DeskRepository) FindByStudent(ctx context.Context, studentID string) (*models.Desk, error) {
	query := `SELECT ` + deskColumns + ` FROM desks WHERE student_id = $1 LIMIT 1`
	var desk models.Desk
	if err := r.db.GetContext(ctx, &desk, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find desk by student: %w", err)
	}
	return &desk, nil
}

// Create inserts a desk.
func (r *DeskRepository) Create(ctx context.Context, desk *models.Desk) error {
	now := time.Now().UTC()
	if desk.ID == "" {
		desk.ID = uuid.NewString()
	}
	desk.CreatedAt, desk.UpdatedAt = now, now
	const query = `INSERT INTO desks (id, school_year_id, block_id, kind, student_id, seat_number, x, y, width, height, rotation, group_id, created_at, updated_at)
        VALUES (:id, :school_year_id, :block_id, :kind, :student_id, :seat_number, :x, :y, :width, :height, :rotation, :group_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, desk); err != nil {
		return fmt.Errorf("create desk: %w", err)
	}
	return nil
}

// Update writes geometry, group and assignment of one desk.
func (r *DeskRepository) Update(ctx context.Context, desk *models.Desk) error {
	desk.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, updateDeskQuery, desk)
	if err != nil {
		return fmt.Errorf("update desk: %w", err)
	}
	return expectAffected(res)
}

// UpdatePositions persists a group move atomically.
func (r *DeskRepository) UpdatePositions(ctx context.Context, desks []models.Desk) error {
	if len(desks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE desks SET x = $3, y = $4, updated_at = $5 WHERE school_year_id = $1 AND id = $2`
		for i := range desks {
			if _, err := tx.ExecContext(ctx, query, desks[i].SchoolYearID, desks[i].ID, desks[i].X, desks[i].Y, now); err != nil {
				return fmt.Errorf("move desk %s: %w", desks[i].ID, err)
			}
			desks[i].UpdatedAt = now
		}
		return nil
	})
}

// Delete removes a desk.
func (r *DeskRepository) Delete(ctx context.Context, schoolYearID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM desks WHERE school_year_id = $1 AND id = $2`, schoolYearID, id)
	if err != nil {
		return fmt.Errorf("delete desk: %w", err)
	}
	return expectAffected(res)
}

const updateDeskQuery = `UPDATE desks SET student_id = :student_id, seat_number = :seat_number, x = :x, y = :y, width = :width, height = :height, rotation = :rotation, group_id = :group_id, updated_at = :updated_at
        WHERE school_year_id = :school_year_id AND id = :id`
