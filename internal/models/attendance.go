package models

import "time"

// AttendanceRecord is a student's status for one calendar day. Unique on (student_id, date).
type AttendanceRecord struct {
	ID           string           `db:"id" json:"id"`
	SchoolYearID string           `db:"school_year_id" json:"school_year_id"`
	BlockID      string           `db:"block_id" json:"block_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Date         time.Time        `db:"date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}
