package models

import "time"

// Student is a learner seated in a block.
type Student struct {
	ID           string           `db:"id" json:"id"`
	SchoolYearID string           `db:"school_year_id" json:"school_year_id"`
	BlockID      string           `db:"block_id" json:"block_id"`
	DisplayName  string           `db:"display_name" json:"display_name"`
	SeatNumber   int              `db:"seat_number" json:"seat_number"`
	Active       bool             `db:"active" json:"active"`
	ML           bool             `db:"ml" json:"ml"`
	MLNew        bool             `db:"ml_new" json:"ml_new"`
	IEP504       bool             `db:"iep504" json:"iep504"`
	EC           bool             `db:"ec" json:"ec"`
	CA           bool             `db:"ca" json:"ca"`
	HIIT         bool             `db:"hiit" json:"hiit"`
	Proficiency  ProficiencyLevel `db:"eog" json:"eog,omitempty"`
	Notes        *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// HasFlag reports whether the category flag is set.
func (s Student) HasFlag(flag CategoryFlag) bool {
	switch flag {
	case CategoryML:
		return s.ML
	case CategoryMLNew:
		return s.MLNew
	case CategoryIEP504:
		return s.IEP504
	case CategoryEC:
		return s.EC
	case CategoryCA:
		return s.CA
	case CategoryHIIT:
		return s.HIIT
	default:
		return false
	}
}

// Badges returns the badges to render for the student's set flags.
func (s Student) Badges() []Badge {
	badges := make([]Badge, 0, 6)
	for _, flag := range CategoryFlags() {
		if s.HasFlag(flag) {
			badges = append(badges, flag.Badge())
		}
	}
	return badges
}

// StudentFilter scopes student listing.
type StudentFilter struct {
	SchoolYearID string
	BlockID      string
	BlockIDs     []string
	StudentIDs   []string
	ActiveOnly   bool
}
