package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/pkg/database"
)

const studentColumns = `s.id, s.school_year_id, s.block_id, s.display_name, s.seat_number, s.active, s.ml, s.ml_new, s.iep504, s.ec, s.ca, s.hiit, COALESCE(s.eog, '') AS eog, s.notes, s.created_at, s.updated_at`

// StudentRepository manages persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the filter ordered by block then seat.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	conditions := []string{"s.school_year_id = $1"}
	args := []interface{}{filter.SchoolYearID}

	if filter.BlockID != "" {
		conditions = append(conditions, fmt.Sprintf("s.block_id = $%d", len(args)+1))
		args = append(args, filter.BlockID)
	}
	if len(filter.BlockIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("s.block_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.BlockIDs))
	}
	if len(filter.StudentIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("s.id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.StudentIDs))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "s.active = TRUE")
	}

	query := `SELECT ` + studentColumns + ` FROM students s WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY s.block_id ASC, s.seat_number ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListUnassigned returns active students of a block that no desk references.
func (r *StudentRepository) ListUnassigned(ctx context.Context, schoolYearID, blockID string) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s
        WHERE s.school_year_id = $1 AND s.block_id = $2 AND s.active = TRUE
        AND NOT EXISTS (SELECT 1 FROM desks d WHERE d.student_id = s.id)
        ORDER BY s.seat_number ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, schoolYearID, blockID); err != nil {
		return nil, fmt.Errorf("list unassigned students: %w", err)
	}
	return students, nil
}

// FindByID returns a student inside the school year.
func (r *StudentRepository) FindByID(ctx context.Context, schoolYearID, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s WHERE s.school_year_id = $1 AND s.id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, schoolYearID, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Create inserts a student with the next seat number of the year.
// The year's seat counter only grows, so numbers freed by deletion are never handed out again.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.CreatedAt, student.UpdatedAt = now, now

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const nextSeat = `UPDATE school_years SET seat_counter = GREATEST(seat_counter, (SELECT COALESCE(MAX(seat_number), 0) FROM students WHERE school_year_id = $1)) + 1 WHERE id = $1 RETURNING seat_counter`
		if err := tx.GetContext(ctx, &student.SeatNumber, nextSeat, student.SchoolYearID); err != nil {
			return fmt.Errorf("allocate seat number: %w", err)
		}
		const insert = `INSERT INTO students (id, school_year_id, block_id, display_name, seat_number, active, ml, ml_new, iep504, ec, ca, hiit, eog, notes, created_at, updated_at)
        VALUES (:id, :school_year_id, :block_id, :display_name, :seat_number, :active, :ml, :ml_new, :iep504, :ec, :ca, :hiit, NULLIF(:eog, ''), :notes, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, insert, student); err != nil {
			return fmt.Errorf("create student: %w", err)
		}
		return nil
	})
}

// Update writes every mutable column. Moving a student to another block releases its desk in the old block.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const update = `UPDATE students SET block_id = :block_id, display_name = :display_name, active = :active, ml = :ml, ml_new = :ml_new, iep504 = :iep504, ec = :ec, ca = :ca, hiit = :hiit, eog = NULLIF(:eog, ''), notes = :notes, updated_at = :updated_at
        WHERE school_year_id = :school_year_id AND id = :id`
		res, err := tx.NamedExecContext(ctx, update, student)
		if err != nil {
			return fmt.Errorf("update student: %w", err)
		}
		if err := expectAffected(res); err != nil {
			return err
		}
		const release = `UPDATE desks SET student_id = NULL, seat_number = NULL, updated_at = $3 WHERE student_id = $1 AND block_id <> $2`
		if _, err := tx.ExecContext(ctx, release, student.ID, student.BlockID, student.UpdatedAt); err != nil {
			return fmt.Errorf("release desk: %w", err)
		}
		return nil
	})
}

// Delete removes a student with its attendance and performance history and clears desk references.
func (r *StudentRepository) Delete(ctx context.Context, schoolYearID, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records WHERE student_id = $1`, id); err != nil {
			return fmt.Errorf("delete student attendance: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM lap_performances WHERE student_id = $1`, id); err != nil {
			return fmt.Errorf("delete student performance: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE desks SET student_id = NULL, seat_number = NULL WHERE student_id = $1`, id); err != nil {
			return fmt.Errorf("clear student desk: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE school_year_id = $1 AND id = $2`, schoolYearID, id)
		if err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
		return expectAffected(res)
	})
}
