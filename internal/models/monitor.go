package models

import (
	"fmt"
	"time"
)

// MonitorMode is the action bound to desk taps.
type MonitorMode string

const (
	MonitorModeAttendance  MonitorMode = "ATTENDANCE"
	MonitorModePerformance MonitorMode = "PERFORMANCE"
)

// MonitorSessionKey identifies one teacher's monitor screen for a block on an effective date.
type MonitorSessionKey struct {
	UserID  string
	BlockID string
	Date    time.Time
}

// String is the storage key, e.g. "monitor:<user>:<block>:2025-01-06".
func (k MonitorSessionKey) String() string {
	return fmt.Sprintf("monitor:%s:%s:%s", k.UserID, k.BlockID, FormatDate(k.Date))
}

// MonitorState holds the transient screen state. Record-derived predicates are never stored here.
type MonitorState struct {
	BlockID                  string      `json:"blockId"`
	Date                     string      `json:"date"`
	Mode                     MonitorMode `json:"mode"`
	SelectedLaps             []int       `json:"selectedLaps"`
	AttendanceOverlayVisible bool        `json:"attendanceOverlayVisible"`
	CompletionBannerVisible  bool        `json:"completionBannerVisible"`
	BannerUntil              *time.Time  `json:"bannerUntil,omitempty"`
	ListViewOpen             bool        `json:"listViewOpen"`
	WasAttendanceComplete    bool        `json:"wasAttendanceComplete"`
	PendingSwitchAt          *time.Time  `json:"pendingSwitchAt,omitempty"`
	UpdatedAt                time.Time   `json:"updatedAt"`
}
