package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so cloned errors still compare to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Codes surfaced to the client. They match the short codes the web client switches on.
var (
	ErrValidation           = New("invalid", http.StatusBadRequest, "invalid request")
	ErrNoBlocks             = New("no_blocks", http.StatusBadRequest, "select at least one block")
	ErrSelectOneStudent     = New("select_one_student", http.StatusBadRequest, "student view requires exactly one student")
	ErrStudentRequired      = New("student_required", http.StatusBadRequest, "studentId is required")
	ErrMissing              = New("missing", http.StatusBadRequest, "required fields missing")
	ErrInvalidPassword      = New("invalid_password", http.StatusBadRequest, "current password is incorrect")
	ErrInvalidCredentials   = New("invalid_credentials", http.StatusUnauthorized, "invalid email or password")
	ErrUnauthorized         = New("unauthorized", http.StatusUnauthorized, "please login")
	ErrNotFound             = New("not_found", http.StatusNotFound, "resource not found")
	ErrStudentNotFound      = New("student_not_found", http.StatusNotFound, "student not found")
	ErrExists               = New("exists", http.StatusConflict, "resource already exists")
	ErrSeatingIncomplete    = New("seating_incomplete", http.StatusConflict, "assign every active student to a desk first")
	ErrLapsNotNamed         = New("laps_not_named", http.StatusConflict, "name all three laps for the day first")
	ErrAttendanceIncomplete = New("attendance_incomplete", http.StatusConflict, "finish attendance first")
	ErrInternal             = New("internal", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss            = New("cache_miss", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
