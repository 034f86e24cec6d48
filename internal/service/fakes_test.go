package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

type fakeYears struct {
	year models.SchoolYear
	err  error
}

func (f *fakeYears) Resolve(ctx context.Context, userID string) (*models.SchoolYear, error) {
	if f.err != nil {
		return nil, f.err
	}
	year := f.year
	return &year, nil
}

// classroom is an in-memory record store shared by the fake repositories.
type classroom struct {
	mu          sync.Mutex
	blocks      []models.Block
	students    []models.Student
	desks       []models.Desk
	attendance  map[string]models.AttendanceRecord
	laps        []models.LapDefinition
	performance map[string]models.LapPerformance
	writeErr    error
	writes      int
	deletes     int
}

func newClassroom() *classroom {
	return &classroom{
		attendance:  make(map[string]models.AttendanceRecord),
		performance: make(map[string]models.LapPerformance),
	}
}

func (c *classroom) repos() MonitorRepositories {
	return MonitorRepositories{
		Blocks:      fakeBlocks{c},
		Students:    fakeStudents{c},
		Desks:       fakeDesks{c},
		Attendance:  fakeAttendance{c},
		Laps:        fakeLaps{c},
		Performance: fakePerformance{c},
	}
}

func (c *classroom) addBlock(id string, number int, name string) {
	c.blocks = append(c.blocks, models.Block{ID: id, SchoolYearID: "year-1", Number: number, Name: name})
}

func (c *classroom) addStudent(id, blockID, name string, seat int, active bool) {
	c.students = append(c.students, models.Student{ID: id, SchoolYearID: "year-1", BlockID: blockID, DisplayName: name, SeatNumber: seat, Active: active})
}

func (c *classroom) addDesk(id, blockID, studentID string) {
	desk := models.Desk{ID: id, SchoolYearID: "year-1", BlockID: blockID, Kind: models.DeskKindStudent, Width: 116, Height: 82}
	if studentID != "" {
		sid := studentID
		desk.StudentID = &sid
	}
	c.desks = append(c.desks, desk)
}

func (c *classroom) nameLaps(blockID string, date time.Time) {
	for n := 1; n <= 3; n++ {
		c.laps = append(c.laps, models.LapDefinition{
			ID:        fmt.Sprintf("lap-%d", n),
			BlockID:   blockID,
			WeekStart: models.WeekStart(date),
			DayIndex:  models.DayIndex(date),
			LapNumber: n,
			Name:      fmt.Sprintf("Activity %d", n),
		})
	}
}

func (c *classroom) status(studentID string, date time.Time) (models.AttendanceStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.attendance[studentID+"|"+models.FormatDate(date)]
	return record.Status, ok
}

func (c *classroom) color(studentID string, date time.Time, lap int) (models.PerformanceColor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.performance[fmt.Sprintf("%s|%s|%d", studentID, models.FormatDate(date), lap)]
	return record.Color, ok
}

type fakeBlocks struct{ c *classroom }

func (f fakeBlocks) FindByID(ctx context.Context, schoolYearID, id string) (*models.Block, error) {
	for _, b := range f.c.blocks {
		if b.ID == id {
			block := b
			return &block, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeStudents struct{ c *classroom }

func (f fakeStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.c.students {
		if filter.BlockID != "" && s.BlockID != filter.BlockID {
			continue
		}
		if filter.ActiveOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f fakeStudents) FindByID(ctx context.Context, schoolYearID, id string) (*models.Student, error) {
	for _, s := range f.c.students {
		if s.ID == id {
			student := s
			return &student, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakeDesks struct{ c *classroom }

func (f fakeDesks) List(ctx context.Context, schoolYearID, blockID string) ([]models.Desk, error) {
	var out []models.Desk
	for _, d := range f.c.desks {
		if blockID == "" || d.BlockID == blockID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeAttendance struct{ c *classroom }

func (f fakeAttendance) ListForStudents(ctx context.Context, schoolYearID string, studentIDs []string, date time.Time) ([]models.AttendanceRecord, error) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	var out []models.AttendanceRecord
	for _, id := range studentIDs {
		if record, ok := f.c.attendance[id+"|"+models.FormatDate(date)]; ok {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f fakeAttendance) Upsert(ctx context.Context, record *models.AttendanceRecord) error {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	if f.c.writeErr != nil {
		return f.c.writeErr
	}
	f.c.writes++
	f.c.attendance[record.StudentID+"|"+models.FormatDate(record.Date)] = *record
	return nil
}

func (f fakeAttendance) BulkUpsert(ctx context.Context, schoolYearID, blockID string, date time.Time, status models.AttendanceStatus) (int, error) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	if f.c.writeErr != nil {
		return 0, f.c.writeErr
	}
	written := 0
	for _, s := range f.c.students {
		if s.BlockID != blockID || !s.Active {
			continue
		}
		f.c.attendance[s.ID+"|"+models.FormatDate(date)] = models.AttendanceRecord{StudentID: s.ID, BlockID: blockID, Date: date, Status: status}
		written++
	}
	f.c.writes += written
	return written, nil
}

type fakeLaps struct{ c *classroom }

func (f fakeLaps) ListByWeek(ctx context.Context, schoolYearID, blockID string, weekStart time.Time) ([]models.LapDefinition, error) {
	var out []models.LapDefinition
	for _, lap := range f.c.laps {
		if lap.BlockID == blockID && lap.WeekStart.Equal(models.WeekStart(weekStart)) {
			out = append(out, lap)
		}
	}
	return out, nil
}

type fakePerformance struct{ c *classroom }

func (f fakePerformance) List(ctx context.Context, filter models.PerformanceFilter) ([]models.LapPerformance, error) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	ids := stringSet(filter.StudentIDs)
	dates := make(map[string]bool, len(filter.Dates))
	for _, d := range filter.Dates {
		dates[models.FormatDate(d)] = true
	}
	var out []models.LapPerformance
	for _, p := range f.c.performance {
		if len(ids) > 0 && !ids[p.StudentID] {
			continue
		}
		if len(dates) > 0 && !dates[models.FormatDate(p.Date)] {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LapNumber < out[j].LapNumber })
	return out, nil
}

func (f fakePerformance) Upsert(ctx context.Context, record *models.LapPerformance) error {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	if f.c.writeErr != nil {
		return f.c.writeErr
	}
	f.c.writes++
	f.c.performance[fmt.Sprintf("%s|%s|%d", record.StudentID, models.FormatDate(record.Date), record.LapNumber)] = *record
	return nil
}

func (f fakePerformance) Delete(ctx context.Context, schoolYearID, studentID string, date time.Time, lapNumber int) error {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	if f.c.writeErr != nil {
		return f.c.writeErr
	}
	f.c.deletes++
	delete(f.c.performance, fmt.Sprintf("%s|%s|%d", studentID, models.FormatDate(date), lapNumber))
	return nil
}

// fixedClock is a settable clock for time-driven transitions.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
