package dto

import "github.com/noah-isme/academic-monitor-api/internal/models"

// RegisterRequest creates a teacher account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	TeacherName string `json:"teacherName" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

// LoginRequest authenticates a teacher.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresIn   int64       `json:"expiresIn"`
	User        CurrentUser `json:"user"`
}

// CurrentUser is the identity every data route is gated on.
type CurrentUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	TeacherName string `json:"teacherName"`
	DisplayName string `json:"displayName"`
}

// NewCurrentUser projects a stored user.
func NewCurrentUser(u *models.User) CurrentUser {
	return CurrentUser{ID: u.ID, Email: u.Email, TeacherName: u.TeacherName, DisplayName: u.DisplayName}
}

// UpdateAccountRequest changes profile names.
type UpdateAccountRequest struct {
	TeacherName string `json:"teacherName" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

// ChangePasswordRequest sets a new password. CurrentPassword is verified only when supplied.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
