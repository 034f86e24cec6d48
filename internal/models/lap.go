package models

import "time"

// LapsPerDay is the number of lap slots a day has when fully named.
const LapsPerDay = 3

// ValidLapNumber reports whether n is 1..3.
func ValidLapNumber(n int) bool {
	return n >= 1 && n <= LapsPerDay
}

// ValidDayIndex reports whether d is Monday..Friday.
func ValidDayIndex(d int) bool {
	return d >= 0 && d <= 4
}

// LapDefinition names an instructional activity slot. Unique on (block_id, week_start, day_index, lap_number).
type LapDefinition struct {
	ID           string    `db:"id" json:"id"`
	SchoolYearID string    `db:"school_year_id" json:"school_year_id"`
	BlockID      string    `db:"block_id" json:"block_id"`
	WeekStart    time.Time `db:"week_start" json:"week_start"`
	DayIndex     int       `db:"day_index" json:"day_index"`
	LapNumber    int       `db:"lap_number" json:"lap_number"`
	Name         string    `db:"name" json:"name"`
	StandardCode *string   `db:"standard_code" json:"standard_code,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// LapPerformance is a student's color for one lap on one day. Unique on (student_id, date, lap_number).
type LapPerformance struct {
	ID           string           `db:"id" json:"id"`
	SchoolYearID string           `db:"school_year_id" json:"school_year_id"`
	BlockID      string           `db:"block_id" json:"block_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Date         time.Time        `db:"date" json:"date"`
	LapNumber    int              `db:"lap_number" json:"lap_number"`
	Color        PerformanceColor `db:"color" json:"color"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// PerformanceFilter scopes performance queries for reports.
type PerformanceFilter struct {
	SchoolYearID string
	BlockIDs     []string
	StudentIDs   []string
	Dates        []time.Time
	LapNumbers   []int
}

// LapDefinitionFilter scopes lap definition queries for reports.
type LapDefinitionFilter struct {
	SchoolYearID string
	BlockIDs     []string
	WeekStarts   []time.Time
	DayIndexes   []int
	LapNumbers   []int
}

// Standard is a curriculum standard a lap may reference.
type Standard struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
