package service

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

// MonitorSnapshot is the authoritative record slice for one block on one date.
// Predicates are always derived from it, never cached on the session.
type MonitorSnapshot struct {
	Date        time.Time
	Block       models.Block
	Students    []models.Student
	Desks       []models.Desk
	Attendance  []models.AttendanceRecord
	Laps        []models.LapDefinition
	Performance []models.LapPerformance
}

func (s MonitorSnapshot) activeStudents() []models.Student {
	active := make([]models.Student, 0, len(s.Students))
	for _, student := range s.Students {
		if student.Active {
			active = append(active, student)
		}
	}
	return active
}

func (s MonitorSnapshot) student(id string) (models.Student, bool) {
	for _, student := range s.Students {
		if student.ID == id {
			return student, true
		}
	}
	return models.Student{}, false
}

func (s MonitorSnapshot) desk(id string) (models.Desk, bool) {
	for _, desk := range s.Desks {
		if desk.ID == id {
			return desk, true
		}
	}
	return models.Desk{}, false
}

// StatusOf returns the student's attendance status for the date.
func (s MonitorSnapshot) StatusOf(studentID string) (models.AttendanceStatus, bool) {
	for _, record := range s.Attendance {
		if record.StudentID == studentID {
			return record.Status, true
		}
	}
	return "", false
}

// RatingOf returns the stored color for a student and lap, or unrated.
func (s MonitorSnapshot) RatingOf(studentID string, lapNumber int) models.Rating {
	for _, record := range s.Performance {
		if record.StudentID == studentID && record.LapNumber == lapNumber {
			return models.Rated(record.Color)
		}
	}
	return models.Unrated()
}

// AttendanceComplete is true when every active student has a record for the date.
// A block without active students is never complete.
func (s MonitorSnapshot) AttendanceComplete() bool {
	active := s.activeStudents()
	if len(active) == 0 {
		return false
	}
	for _, student := range active {
		if _, ok := s.StatusOf(student.ID); !ok {
			return false
		}
	}
	return true
}

// UnseatedStudents lists active students not referenced by exactly one desk.
func (s MonitorSnapshot) UnseatedStudents() []string {
	seats := make(map[string]int, len(s.Desks))
	for _, desk := range s.Desks {
		if id := desk.AssignedStudent(); id != "" {
			seats[id]++
		}
	}
	var unseated []string
	for _, student := range s.activeStudents() {
		if seats[student.ID] != 1 {
			unseated = append(unseated, student.ID)
		}
	}
	return unseated
}

// SeatingComplete gates every capture action.
func (s MonitorSnapshot) SeatingComplete() bool {
	return len(s.UnseatedStudents()) == 0
}

// DayLaps returns the definitions for the snapshot date ordered by lap number.
func (s MonitorSnapshot) DayLaps() []models.LapDefinition {
	day := models.DayIndex(s.Date)
	week := models.WeekStart(s.Date)
	laps := make([]models.LapDefinition, 0, models.LapsPerDay)
	for _, lap := range s.Laps {
		if lap.DayIndex == day && models.NormalizeDate(lap.WeekStart).Equal(week) {
			laps = append(laps, lap)
		}
	}
	sort.Slice(laps, func(i, j int) bool { return laps[i].LapNumber < laps[j].LapNumber })
	return laps
}

// LapsNamed holds when exactly three definitions exist for the day.
func (s MonitorSnapshot) LapsNamed() bool {
	return len(s.DayLaps()) == models.LapsPerDay
}

// MonitorPredicates are recomputed from the snapshot on every call.
type MonitorPredicates struct {
	AttendanceComplete  bool `json:"attendanceComplete"`
	SeatingComplete     bool `json:"seatingComplete"`
	LapsNamed           bool `json:"lapsNamed"`
	ReadyForPerformance bool `json:"readyForPerformance"`
	UnseatedCount       int  `json:"unseatedCount"`
}

// Predicates evaluates the snapshot against the session's lap selection.
func Predicates(state *models.MonitorState, snap MonitorSnapshot) MonitorPredicates {
	unseated := snap.UnseatedStudents()
	complete := snap.AttendanceComplete()
	named := snap.LapsNamed()
	return MonitorPredicates{
		AttendanceComplete:  complete,
		SeatingComplete:     len(unseated) == 0,
		LapsNamed:           named,
		ReadyForPerformance: named && complete && len(state.SelectedLaps) > 0,
		UnseatedCount:       len(unseated),
	}
}

// MonitorEffectKind tells the client what a monitor action did.
type MonitorEffectKind string

const (
	EffectNone                 MonitorEffectKind = "none"
	EffectAttendance           MonitorEffectKind = "attendance"
	EffectPerformance          MonitorEffectKind = "performance"
	EffectBulkAttendance       MonitorEffectKind = "bulk_attendance"
	EffectLaps                 MonitorEffectKind = "laps"
	EffectMode                 MonitorEffectKind = "mode"
	EffectNavigate             MonitorEffectKind = "navigate"
	EffectIgnored              MonitorEffectKind = "ignored"
	EffectConfirmationRequired MonitorEffectKind = "confirmation_required"
	EffectFailed               MonitorEffectKind = "failed"
)

// Reasons attached to ignored effects.
const (
	ReasonSeatingIncomplete    = "seating_incomplete"
	ReasonLapsNotNamed         = "laps_not_named"
	ReasonAttendanceIncomplete = "attendance_incomplete"
	ReasonNoLapSelected        = "no_lap_selected"
	ReasonWrongMode            = "wrong_mode"
	ReasonUnassignedDesk       = "unassigned_desk"
	ReasonStudentAbsent        = "student_absent"
)

// MonitorEffect is returned with every session view.
type MonitorEffect struct {
	Kind      MonitorEffectKind       `json:"kind"`
	Reason    string                  `json:"reason,omitempty"`
	Navigate  string                  `json:"navigate,omitempty"`
	Prompt    string                  `json:"prompt,omitempty"`
	StudentID string                  `json:"studentId,omitempty"`
	LapNumber int                     `json:"lapNumber,omitempty"`
	Status    models.AttendanceStatus `json:"status,omitempty"`
	Color     string                  `json:"color,omitempty"`
}

func ignored(reason string) MonitorEffect {
	return MonitorEffect{Kind: EffectIgnored, Reason: reason}
}

type monitorWriteKind int

const (
	writeAttendance monitorWriteKind = iota + 1
	writeBulkAttendance
	writePerformance
)

// monitorWrite is the single store mutation an action asks for.
type monitorWrite struct {
	kind      monitorWriteKind
	studentID string
	status    models.AttendanceStatus
	lapNumber int
	rating    models.Rating
}

// MonitorMachine applies the monitor screen rules to a session. It never touches the store.
type MonitorMachine struct {
	now             func() time.Time
	autoSwitchDelay time.Duration
	bannerDuration  time.Duration
}

// NewMonitorMachine builds a machine. A nil clock uses wall time.
func NewMonitorMachine(now func() time.Time, autoSwitchDelay, bannerDuration time.Duration) *MonitorMachine {
	if now == nil {
		now = time.Now
	}
	if autoSwitchDelay < 0 {
		autoSwitchDelay = 0
	}
	return &MonitorMachine{now: now, autoSwitchDelay: autoSwitchDelay, bannerDuration: bannerDuration}
}

// NewState is the state on block or date change.
func (m *MonitorMachine) NewState(blockID string, date time.Time) *models.MonitorState {
	return &models.MonitorState{
		BlockID:                  blockID,
		Date:                     models.FormatDate(date),
		Mode:                     models.MonitorModeAttendance,
		SelectedLaps:             []int{},
		AttendanceOverlayVisible: true,
		UpdatedAt:                m.now().UTC(),
	}
}

// Reconcile advances time-driven transitions: arming and firing the automatic switch to
// performance mode when attendance becomes complete, and expiring the completion banner.
func (m *MonitorMachine) Reconcile(state *models.MonitorState, snap MonitorSnapshot) {
	now := m.now().UTC()
	if !snap.AttendanceComplete() {
		state.WasAttendanceComplete = false
		state.PendingSwitchAt = nil
	} else if !state.WasAttendanceComplete {
		state.WasAttendanceComplete = true
		at := now.Add(m.autoSwitchDelay)
		state.PendingSwitchAt = &at
	}

	if state.PendingSwitchAt != nil && !now.Before(*state.PendingSwitchAt) {
		state.PendingSwitchAt = nil
		state.Mode = models.MonitorModePerformance
		state.CompletionBannerVisible = true
		until := now.Add(m.bannerDuration)
		state.BannerUntil = &until
		state.ListViewOpen = false
	}

	if state.CompletionBannerVisible && state.BannerUntil != nil && !now.Before(*state.BannerUntil) {
		state.CompletionBannerVisible = false
		state.BannerUntil = nil
	}
	state.UpdatedAt = now
}

// DismissOverlay hides the take-attendance overlay and the completion banner.
func (m *MonitorMachine) DismissOverlay(state *models.MonitorState) MonitorEffect {
	state.AttendanceOverlayVisible = false
	state.CompletionBannerVisible = false
	state.BannerUntil = nil
	return MonitorEffect{Kind: EffectNone}
}

// TapDesk advances the seated student's attendance one step.
func (m *MonitorMachine) TapDesk(state *models.MonitorState, snap MonitorSnapshot, deskID string) (MonitorEffect, *monitorWrite, error) {
	desk, ok := snap.desk(deskID)
	if !ok {
		return MonitorEffect{}, nil, appErrors.Clone(appErrors.ErrNotFound, "desk not found")
	}
	if !snap.SeatingComplete() {
		return ignored(ReasonSeatingIncomplete), nil, nil
	}
	if state.Mode != models.MonitorModeAttendance {
		return ignored(ReasonWrongMode), nil, nil
	}
	studentID := desk.AssignedStudent()
	if studentID == "" {
		return ignored(ReasonUnassignedDesk), nil, nil
	}

	state.AttendanceOverlayVisible = false
	current, _ := snap.StatusOf(studentID)
	next := current.Next()
	effect := MonitorEffect{Kind: EffectAttendance, StudentID: studentID, Status: next}
	return effect, &monitorWrite{kind: writeAttendance, studentID: studentID, status: next}, nil
}

// TapLapSelector toggles a lap once attendance is complete and the day's laps are named.
func (m *MonitorMachine) TapLapSelector(state *models.MonitorState, snap MonitorSnapshot, lapNumber int) (MonitorEffect, error) {
	if !models.ValidLapNumber(lapNumber) {
		return MonitorEffect{}, appErrors.Clone(appErrors.ErrValidation, "lapNumber must be 1, 2 or 3")
	}
	if !snap.SeatingComplete() {
		return ignored(ReasonSeatingIncomplete), nil
	}
	if !snap.AttendanceComplete() {
		state.Mode = models.MonitorModeAttendance
		return MonitorEffect{Kind: EffectMode, Reason: ReasonAttendanceIncomplete}, nil
	}
	if !snap.LapsNamed() {
		return MonitorEffect{Kind: EffectNavigate, Reason: ReasonLapsNotNamed, Navigate: LapSetupURL(state.BlockID, snap.Date)}, nil
	}

	state.SelectedLaps = toggleLap(state.SelectedLaps, lapNumber)
	return MonitorEffect{Kind: EffectLaps, LapNumber: lapNumber}, nil
}

// TapPerformanceZone advances the rating for the lap shown in the tapped zone.
func (m *MonitorMachine) TapPerformanceZone(state *models.MonitorState, snap MonitorSnapshot, deskID string, zoneIndex int) (MonitorEffect, *monitorWrite, error) {
	desk, ok := snap.desk(deskID)
	if !ok {
		return MonitorEffect{}, nil, appErrors.Clone(appErrors.ErrNotFound, "desk not found")
	}
	if !snap.SeatingComplete() {
		return ignored(ReasonSeatingIncomplete), nil, nil
	}
	if state.Mode != models.MonitorModePerformance {
		return ignored(ReasonWrongMode), nil, nil
	}
	if !snap.LapsNamed() {
		return ignored(ReasonLapsNotNamed), nil, nil
	}
	if !snap.AttendanceComplete() {
		return ignored(ReasonAttendanceIncomplete), nil, nil
	}
	if len(state.SelectedLaps) == 0 {
		return ignored(ReasonNoLapSelected), nil, nil
	}
	if zoneIndex < 0 || zoneIndex >= len(state.SelectedLaps) {
		return MonitorEffect{}, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("desk has %d zones", len(state.SelectedLaps)))
	}
	studentID := desk.AssignedStudent()
	if studentID == "" {
		return ignored(ReasonUnassignedDesk), nil, nil
	}
	if status, _ := snap.StatusOf(studentID); status == models.AttendanceStatusAbsent {
		return ignored(ReasonStudentAbsent), nil, nil
	}

	lapNumber := state.SelectedLaps[zoneIndex]
	next := snap.RatingOf(studentID, lapNumber).Next()
	effect := MonitorEffect{Kind: EffectPerformance, StudentID: studentID, LapNumber: lapNumber, Color: next.String()}
	return effect, &monitorWrite{kind: writePerformance, studentID: studentID, lapNumber: lapNumber, rating: next}, nil
}

// ToggleMode flips between modes. Performance mode is only reachable once attendance is complete.
func (m *MonitorMachine) ToggleMode(state *models.MonitorState, snap MonitorSnapshot) MonitorEffect {
	if !snap.SeatingComplete() {
		state.AttendanceOverlayVisible = true
		return ignored(ReasonSeatingIncomplete)
	}
	complete := snap.AttendanceComplete()
	if state.Mode == models.MonitorModeAttendance && complete {
		state.Mode = models.MonitorModePerformance
	} else {
		state.Mode = models.MonitorModeAttendance
	}
	if !complete {
		state.AttendanceOverlayVisible = false
	}
	return MonitorEffect{Kind: EffectMode}
}

// OpenListView shows the roster with direct status buttons.
func (m *MonitorMachine) OpenListView(state *models.MonitorState, snap MonitorSnapshot) MonitorEffect {
	if !snap.SeatingComplete() {
		return ignored(ReasonSeatingIncomplete)
	}
	state.Mode = models.MonitorModeAttendance
	state.AttendanceOverlayVisible = false
	state.CompletionBannerVisible = false
	state.BannerUntil = nil
	state.ListViewOpen = true
	return MonitorEffect{Kind: EffectMode}
}

// CloseListView hides the roster.
func (m *MonitorMachine) CloseListView(state *models.MonitorState) MonitorEffect {
	state.ListViewOpen = false
	return MonitorEffect{Kind: EffectNone}
}

// SetAttendance writes a status directly, as the list view does.
func (m *MonitorMachine) SetAttendance(state *models.MonitorState, snap MonitorSnapshot, studentID string, status models.AttendanceStatus) (MonitorEffect, *monitorWrite, error) {
	if strings.TrimSpace(studentID) == "" {
		return MonitorEffect{}, nil, appErrors.ErrStudentRequired
	}
	if _, ok := snap.student(studentID); !ok {
		return MonitorEffect{}, nil, appErrors.ErrStudentNotFound
	}
	if !snap.SeatingComplete() {
		return ignored(ReasonSeatingIncomplete), nil, nil
	}
	effect := MonitorEffect{Kind: EffectAttendance, StudentID: studentID, Status: status}
	return effect, &monitorWrite{kind: writeAttendance, studentID: studentID, status: status}, nil
}

// BulkAttendance marks every active student once the teacher has confirmed the prompt.
func (m *MonitorMachine) BulkAttendance(state *models.MonitorState, snap MonitorSnapshot, status models.AttendanceStatus, confirmed bool) (MonitorEffect, *monitorWrite) {
	if !snap.SeatingComplete() {
		return ignored(ReasonSeatingIncomplete), nil
	}
	if !confirmed {
		return MonitorEffect{Kind: EffectConfirmationRequired, Status: status, Prompt: BulkAttendancePrompt(status)}, nil
	}
	return MonitorEffect{Kind: EffectBulkAttendance, Status: status}, &monitorWrite{kind: writeBulkAttendance, status: status}
}

// BulkAttendancePrompt is the confirmation text for a bulk status change.
func BulkAttendancePrompt(status models.AttendanceStatus) string {
	return fmt.Sprintf("Mark all students as %s?", status.Label())
}

// LapSetupURL points at lap naming for the date, returning to the monitor afterwards.
func LapSetupURL(blockID string, date time.Time) string {
	returnTo := "/monitor"
	if blockID != "" {
		returnTo = "/monitor?blockId=" + blockID
	}
	return fmt.Sprintf("/setup/laps?returnTo=%s&focusDate=%s", url.QueryEscape(returnTo), models.FormatDate(date))
}

func toggleLap(selected []int, lapNumber int) []int {
	out := make([]int, 0, len(selected)+1)
	found := false
	for _, lap := range selected {
		if lap == lapNumber {
			found = true
			continue
		}
		out = append(out, lap)
	}
	if !found {
		out = append(out, lapNumber)
	}
	sort.Ints(out)
	return out
}
