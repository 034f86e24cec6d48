package dto

// Attendance write modes.
const (
	AttendanceModeSingle = "single"
	AttendanceModeBulk   = "bulk"
)

// AttendanceRequest records one student's status, or every active student's status in bulk mode.
type AttendanceRequest struct {
	BlockID   string `json:"blockId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Mode      string `json:"mode"`
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

// PerformanceRequest stores a lap color, or deletes it when Remove is set.
type PerformanceRequest struct {
	BlockID   string `json:"blockId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Date      string `json:"date" validate:"required"`
	LapNumber int    `json:"lapNumber" validate:"lap_number"`
	Color     string `json:"color"`
	Remove    bool   `json:"remove"`
}

// LapDefinitionRequest names a lap slot.
type LapDefinitionRequest struct {
	BlockID      string  `json:"blockId" validate:"required"`
	WeekStart    string  `json:"weekStart" validate:"required"`
	DayIndex     int     `json:"dayIndex" validate:"day_index"`
	LapNumber    int     `json:"lapNumber" validate:"lap_number"`
	Name         string  `json:"name" validate:"required"`
	StandardCode *string `json:"standardCode"`
}

// CopyLapWeekRequest copies one block's lap names for a week onto another block.
type CopyLapWeekRequest struct {
	FromBlockID string `json:"fromBlockId" validate:"required"`
	ToBlockID   string `json:"toBlockId" validate:"required"`
	WeekStart   string `json:"weekStart" validate:"required"`
	Force       bool   `json:"force"`
}

// CopyLapWeekResponse reports how many definitions were written.
type CopyLapWeekResponse struct {
	Created int `json:"created"`
}
