package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/pkg/database"
)

const userColumns = `id, email, password_hash, teacher_name, display_name, created_at, updated_at`

// UserRepository provides database access for teacher accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address. Emails are stored lower-cased.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// CreateWithSchoolYear inserts the user and its first active school year in one transaction.
func (r *UserRepository) CreateWithSchoolYear(ctx context.Context, user *models.User, year *models.SchoolYear) error {
	now := time.Now().UTC()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt, user.UpdatedAt = now, now

	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	year.UserID = user.ID
	year.Active = true
	year.CreatedAt = now

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insertUser = `INSERT INTO users (id, email, password_hash, teacher_name, display_name, created_at, updated_at) VALUES (:id, :email, :password_hash, :teacher_name, :display_name, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insertUser, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		const insertYear = `INSERT INTO school_years (id, user_id, label, active, archived, created_at) VALUES (:id, :user_id, :label, :active, :archived, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insertYear, year); err != nil {
			return fmt.Errorf("create school year: %w", err)
		}
		return nil
	})
}

// UpdateProfile changes the teacher's names.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, teacherName, displayName string, updatedAt time.Time) error {
	const query = `UPDATE users SET teacher_name = $2, display_name = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, teacherName, displayName, updatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectAffected(res)
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// expectAffected maps a zero-row write to sql.ErrNoRows so services can answer not_found.
func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
