package service

import (
	"fmt"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

// MonitorView is everything the monitor screen renders after an action.
type MonitorView struct {
	State      *models.MonitorState `json:"state"`
	Predicates MonitorPredicates    `json:"predicates"`
	Block      models.Block         `json:"block"`
	Laps       []MonitorLapButton   `json:"laps"`
	Desks      []MonitorDeskView    `json:"desks"`
	Roster     []MonitorRosterEntry `json:"roster"`
	Effect     MonitorEffect        `json:"effect"`
}

// MonitorLapButton is one lap selector. Unnamed laps render as "Lap N".
type MonitorLapButton struct {
	LapNumber    int     `json:"lapNumber"`
	Name         string  `json:"name"`
	StandardCode *string `json:"standardCode,omitempty"`
	Named        bool    `json:"named"`
	Selected     bool    `json:"selected"`
}

// MonitorDeskView is a student desk with its tap zones.
type MonitorDeskView struct {
	ID          string                  `json:"id"`
	StudentID   string                  `json:"studentId,omitempty"`
	DisplayName string                  `json:"displayName,omitempty"`
	SeatNumber  *int                    `json:"seatNumber,omitempty"`
	X           float64                 `json:"x"`
	Y           float64                 `json:"y"`
	Width       float64                 `json:"width"`
	Height      float64                 `json:"height"`
	Rotation    float64                 `json:"rotation"`
	Status      models.AttendanceStatus `json:"status,omitempty"`
	Absent      bool                    `json:"absent"`
	Badges      []models.Badge          `json:"badges,omitempty"`
	Proficiency *models.Badge           `json:"proficiency,omitempty"`
	Zones       []MonitorZone           `json:"zones,omitempty"`
}

// MonitorZone is one of the equal-width performance tap regions, left to right in lap order.
type MonitorZone struct {
	Index     int    `json:"index"`
	LapNumber int    `json:"lapNumber"`
	Color     string `json:"color"`
	Enabled   bool   `json:"enabled"`
}

// MonitorRosterEntry is one list-view row.
type MonitorRosterEntry struct {
	StudentID   string                  `json:"studentId"`
	DisplayName string                  `json:"displayName"`
	SeatNumber  int                     `json:"seatNumber"`
	Status      models.AttendanceStatus `json:"status,omitempty"`
}

// BuildMonitorView renders the session against the snapshot.
func BuildMonitorView(state *models.MonitorState, snap MonitorSnapshot, effect MonitorEffect) *MonitorView {
	predicates := Predicates(state, snap)
	view := &MonitorView{
		State:      state,
		Predicates: predicates,
		Block:      snap.Block,
		Laps:       lapButtons(state, snap),
		Desks:      make([]MonitorDeskView, 0, len(snap.Desks)),
		Roster:     make([]MonitorRosterEntry, 0, len(snap.Students)),
		Effect:     effect,
	}

	showZones := state.Mode == models.MonitorModePerformance && len(state.SelectedLaps) > 0
	for _, desk := range snap.Desks {
		if desk.Kind != models.DeskKindStudent {
			continue
		}
		dv := MonitorDeskView{
			ID:         desk.ID,
			SeatNumber: desk.SeatNumber,
			X:          desk.X,
			Y:          desk.Y,
			Width:      clampSize(desk.Width, models.DefaultDeskWidth),
			Height:     clampSize(desk.Height, models.DefaultDeskHeight),
			Rotation:   desk.Rotation,
		}
		if studentID := desk.AssignedStudent(); studentID != "" {
			dv.StudentID = studentID
			if student, ok := snap.student(studentID); ok {
				dv.DisplayName = student.DisplayName
				dv.Badges = student.Badges()
				if badge, ok := student.Proficiency.Badge(); ok {
					dv.Proficiency = &badge
				}
			}
			dv.Status, _ = snap.StatusOf(studentID)
			dv.Absent = dv.Status == models.AttendanceStatusAbsent
			if showZones && !dv.Absent {
				for i, lap := range state.SelectedLaps {
					dv.Zones = append(dv.Zones, MonitorZone{
						Index:     i,
						LapNumber: lap,
						Color:     snap.RatingOf(studentID, lap).String(),
						Enabled:   predicates.ReadyForPerformance,
					})
				}
			}
		}
		view.Desks = append(view.Desks, dv)
	}

	for _, student := range snap.activeStudents() {
		status, _ := snap.StatusOf(student.ID)
		view.Roster = append(view.Roster, MonitorRosterEntry{
			StudentID:   student.ID,
			DisplayName: student.DisplayName,
			SeatNumber:  student.SeatNumber,
			Status:      status,
		})
	}
	return view
}

func lapButtons(state *models.MonitorState, snap MonitorSnapshot) []MonitorLapButton {
	selected := make(map[int]bool, len(state.SelectedLaps))
	for _, lap := range state.SelectedLaps {
		selected[lap] = true
	}
	buttons := make([]MonitorLapButton, 0, models.LapsPerDay)
	if snap.LapsNamed() {
		for _, lap := range snap.DayLaps() {
			buttons = append(buttons, MonitorLapButton{
				LapNumber:    lap.LapNumber,
				Name:         lap.Name,
				StandardCode: lap.StandardCode,
				Named:        true,
				Selected:     selected[lap.LapNumber],
			})
		}
		return buttons
	}
	for n := 1; n <= models.LapsPerDay; n++ {
		buttons = append(buttons, MonitorLapButton{LapNumber: n, Name: fmt.Sprintf("Lap %d", n), Selected: selected[n]})
	}
	return buttons
}

func clampSize(value, max float64) float64 {
	if value > max {
		return max
	}
	return value
}
