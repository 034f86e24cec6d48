package dto

// MonitorSessionRequest addresses one block on one effective date. Date defaults to today.
type MonitorSessionRequest struct {
	BlockID string `json:"blockId" form:"blockId" validate:"required"`
	Date    string `json:"date" form:"date"`
}

// MonitorTapDeskRequest taps a desk in attendance mode.
type MonitorTapDeskRequest struct {
	MonitorSessionRequest
	DeskID string `json:"deskId" validate:"required"`
}

// MonitorLapRequest taps a lap selector.
type MonitorLapRequest struct {
	MonitorSessionRequest
	LapNumber int `json:"lapNumber" validate:"lap_number"`
}

// MonitorZoneRequest taps one performance zone of a desk, counted left to right from 0.
type MonitorZoneRequest struct {
	MonitorSessionRequest
	DeskID    string `json:"deskId" validate:"required"`
	ZoneIndex int    `json:"zoneIndex" validate:"gte=0,lt=3"`
}

// MonitorAttendanceRequest sets a status directly from the list view.
type MonitorAttendanceRequest struct {
	MonitorSessionRequest
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"attendance_status"`
}

// MonitorBulkRequest marks every active student. Nothing is written until Confirmed is true.
type MonitorBulkRequest struct {
	MonitorSessionRequest
	Status    string `json:"status" validate:"attendance_status"`
	Confirmed bool   `json:"confirmed"`
}
