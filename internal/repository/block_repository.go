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

const blockColumns = `id, school_year_id, block_number, block_name, archived, created_at, updated_at`

// BlockRepository manages persistence for class blocks.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository constructs a BlockRepository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// List returns the year's blocks ordered by number.
func (r *BlockRepository) List(ctx context.Context, schoolYearID string, includeArchived bool) ([]models.Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks WHERE school_year_id = $1`
	if !includeArchived {
		query += ` AND archived = FALSE`
	}
	query += ` ORDER BY block_number ASC`

	var blocks []models.Block
	if err := r.db.SelectContext(ctx, &blocks, query, schoolYearID); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// FindByID returns a block inside the school year.
func (r *BlockRepository) FindByID(ctx context.Context, schoolYearID, id string) (*models.Block, error) {
	query := `SELECT ` + blockColumns + ` FROM blocks WHERE school_year_id = $1 AND id = $2`
	var block models.Block
	if err := r.db.GetContext(ctx, &block, query, schoolYearID, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find block: %w", err)
	}
	return &block, nil
}

// Create inserts a block.
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	now := time.Now().UTC()
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	block.CreatedAt, block.UpdatedAt = now, now
	const query = `INSERT INTO blocks (id, school_year_id, block_number, block_name, archived, created_at, updated_at) VALUES (:id, :school_year_id, :block_number, :block_name, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// Update writes number, name and archived flag.
func (r *BlockRepository) Update(ctx context.Context, block *models.Block) error {
	block.UpdatedAt = time.Now().UTC()
	const query = `UPDATE blocks SET block_number = $3, block_name = $4, archived = $5, updated_at = $6 WHERE school_year_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, block.SchoolYearID, block.ID, block.Number, block.Name, block.Archived, block.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update block: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a block and its desks. Students keep their block id.
func (r *BlockRepository) Delete(ctx context.Context, schoolYearID, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM desks WHERE school_year_id = $1 AND block_id = $2`, schoolYearID, id); err != nil {
			return fmt.Errorf("delete block desks: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM blocks WHERE school_year_id = $1 AND id = $2`, schoolYearID, id)
		if err != nil {
			return fmt.Errorf("delete block: %w", err)
		}
		return expectAffected(res)
	})
}
