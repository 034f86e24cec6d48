package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is a teacher account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	TeacherName  string    `db:"teacher_name" json:"teacher_name"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SchoolYear scopes all classroom data for a teacher.
type SchoolYear struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Label     string    `db:"label" json:"label"`
	Active    bool      `db:"active" json:"active"`
	Archived  bool      `db:"archived" json:"archived"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DefaultSchoolYearLabel is used when a teacher has no active year.
const DefaultSchoolYearLabel = "2025-2026"

// JWTClaims represents the access token payload.
type JWTClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	TeacherName string `json:"teacher_name"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}
