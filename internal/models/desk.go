package models

import "time"

// DeskKind distinguishes student desks from the teacher desk.
type DeskKind string

const (
	DeskKindStudent DeskKind = "STUDENT"
	DeskKindTeacher DeskKind = "TEACHER"
)

// ParseDeskKind falls back to STUDENT for unknown values.
func ParseDeskKind(raw string) DeskKind {
	if DeskKind(raw) == DeskKindTeacher {
		return DeskKindTeacher
	}
	return DeskKindStudent
}

// Default desk geometry for newly placed desks.
const (
	DefaultDeskX      = 40
	DefaultDeskY      = 40
	DefaultDeskWidth  = 116
	DefaultDeskHeight = 82
)

// Desk is a seating chart slot.
type Desk struct {
	ID           string    `db:"id" json:"id"`
	SchoolYearID string    `db:"school_year_id" json:"school_year_id"`
	BlockID      string    `db:"block_id" json:"block_id"`
	Kind         DeskKind  `db:"kind" json:"type"`
	StudentID    *string   `db:"student_id" json:"student_id,omitempty"`
	SeatNumber   *int      `db:"seat_number" json:"seat_number,omitempty"`
	X            float64   `db:"x" json:"x"`
	Y            float64   `db:"y" json:"y"`
	Width        float64   `db:"width" json:"width"`
	Height       float64   `db:"height" json:"height"`
	Rotation     float64   `db:"rotation" json:"rotation"`
	GroupID      *string   `db:"group_id" json:"group_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AssignedStudent returns the student id for a student desk, or "".
func (d Desk) AssignedStudent() string {
	if d.Kind != DeskKindStudent || d.StudentID == nil {
		return ""
	}
	return *d.StudentID
}
