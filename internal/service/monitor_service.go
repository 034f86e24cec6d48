package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

// Monitor action names recorded in metrics.
const (
	MonitorActionOpen           = "open"
	MonitorActionDismiss        = "dismiss_overlay"
	MonitorActionTapDesk        = "tap_desk"
	MonitorActionTapLap         = "tap_lap"
	MonitorActionTapZone        = "tap_zone"
	MonitorActionToggleMode     = "toggle_mode"
	MonitorActionOpenList       = "open_list"
	MonitorActionCloseList      = "close_list"
	MonitorActionSetAttendance  = "set_attendance"
	MonitorActionBulkAttendance = "bulk_attendance"
)

// MonitorSessionStore persists monitor state between requests.
type MonitorSessionStore interface {
	Load(ctx context.Context, key models.MonitorSessionKey) (*models.MonitorState, bool, error)
	Save(ctx context.Context, key models.MonitorSessionKey, state *models.MonitorState, ttl time.Duration) error
}

type monitorStudentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

type monitorDeskRepository interface {
	List(ctx context.Context, schoolYearID, blockID string) ([]models.Desk, error)
}

type monitorAttendanceRepository interface {
	ListForStudents(ctx context.Context, schoolYearID string, studentIDs []string, date time.Time) ([]models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	BulkUpsert(ctx context.Context, schoolYearID, blockID string, date time.Time, status models.AttendanceStatus) (int, error)
}

type monitorLapRepository interface {
	ListByWeek(ctx context.Context, schoolYearID, blockID string, weekStart time.Time) ([]models.LapDefinition, error)
}

type monitorPerformanceRepository interface {
	List(ctx context.Context, filter models.PerformanceFilter) ([]models.LapPerformance, error)
	Upsert(ctx context.Context, record *models.LapPerformance) error
	Delete(ctx context.Context, schoolYearID, studentID string, date time.Time, lapNumber int) error
}

// MonitorRepositories are the record stores the monitor reads and writes.
type MonitorRepositories struct {
	Blocks      blockFinder
	Students    monitorStudentRepository
	Desks       monitorDeskRepository
	Attendance  monitorAttendanceRepository
	Laps        monitorLapRepository
	Performance monitorPerformanceRepository
}

// MonitorConfig tunes the monitor session.
type MonitorConfig struct {
	AutoSwitchDelay time.Duration
	BannerDuration  time.Duration
	SessionTTL      time.Duration
	Now             func() time.Time
}

// MonitorService hosts the monitor screen session: it loads a snapshot, applies one action through
// the MonitorMachine, writes at most one change, then resynchronises from the store.
type MonitorService struct {
	repos     MonitorRepositories
	sessions  MonitorSessionStore
	years     schoolYearResolver
	machine   *MonitorMachine
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
	now       func() time.Time
}

// NewMonitorService constructs a MonitorService. A nil session store keeps sessions in memory.
func NewMonitorService(repos MonitorRepositories, sessions MonitorSessionStore, years schoolYearResolver, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg MonitorConfig) *MonitorService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if sessions == nil {
		sessions = NewMemorySessionStore(cfg.Now)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := RegisterValidations(validate); err != nil {
		logger.Error("failed to register validations", zap.Error(err))
	}
	return &MonitorService{
		repos:     repos,
		sessions:  sessions,
		years:     years,
		machine:   NewMonitorMachine(cfg.Now, cfg.AutoSwitchDelay, cfg.BannerDuration),
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		ttl:       cfg.SessionTTL,
		now:       cfg.Now,
	}
}

type monitorAction func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error)

// Open starts a fresh session for the block and date.
func (s *MonitorService) Open(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*MonitorView, error) {
	return s.run(ctx, userID, req, MonitorActionOpen, true, func(*models.MonitorState, MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return MonitorEffect{Kind: EffectNone}, nil, nil
	})
}

// View returns the current session, reconciled against the store.
func (s *MonitorService) View(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*MonitorView, error) {
	return s.run(ctx, userID, req, "", false, func(*models.MonitorState, MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return MonitorEffect{Kind: EffectNone}, nil, nil
	})
}

// DismissOverlay hides the attendance overlay.
func (s *MonitorService) DismissOverlay(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*MonitorView, error) {
	return s.run(ctx, userID, req, MonitorActionDismiss, false, func(state *models.MonitorState, _ MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return s.machine.DismissOverlay(state), nil, nil
	})
}

// TapDesk cycles the seated student's attendance.
func (s *MonitorService) TapDesk(ctx context.Context, userID string, req dto.MonitorTapDeskRequest) (*MonitorView, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.run(ctx, userID, req.MonitorSessionRequest, MonitorActionTapDesk, false, func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return s.machine.TapDesk(state, snap, req.DeskID)
	})
}

// TapLapSelector toggles a lap or redirects to lap naming.
func (s *MonitorService) TapLapSelector(ctx context.Context, userID string, req dto.MonitorLapRequest) (*MonitorView, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.run(ctx, userID, req.MonitorSessionRequest, MonitorActionTapLap, false, func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		effect, err := s.machine.TapLapSelector(state, snap, req.LapNumber)
		return effect, nil, err
	})
}

// TapPerformanceZone cycles the rating in one zone of a desk.
func (s *MonitorService) TapPerformanceZone(ctx context.Context, userID string, req dto.MonitorZoneRequest) (*MonitorView, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.run(ctx, userID, req.MonitorSessionRequest, MonitorActionTapZone, false, func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return s.machine.TapPerformanceZone(state, snap, req.DeskID, req.ZoneIndex)
	})
}

// ToggleMode flips between attendance and performance.
func (s *MonitorService) ToggleMode(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*MonitorView, error) {
	return s.run(ctx, userID, req, MonitorActionToggleMode, false, func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return s.machine.ToggleMode(state, snap), nil, nil
	})
}

// OpenListView shows the roster.
func (s *MonitorService) OpenListView(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*MonitorView, error) {
	return s.run(ctx, userID, req, MonitorActionOpenList, false, func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return s.machine.OpenListView(state, snap), nil, nil
	})
}

// CloseListView hides the roster.
func (s *MonitorService) CloseListView(ctx context.Context, userID string, req dto.MonitorSessionRequest) (*MonitorView, error) {
	return s.run(ctx, userID, req, MonitorActionCloseList, false, func(state *models.MonitorState, _ MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return s.machine.CloseListView(state), nil, nil
	})
}

// SetAttendance sets one student's status from the list view.
func (s *MonitorService) SetAttendance(ctx context.Context, userID string, req dto.MonitorAttendanceRequest) (*MonitorView, error) {
	if err := s.validate(req.MonitorSessionRequest); err != nil {
		return nil, err
	}
	if req.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrStudentRequired, "studentId is required")
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	status := models.ParseAttendanceStatus(req.Status)
	return s.run(ctx, userID, req.MonitorSessionRequest, MonitorActionSetAttendance, false, func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		return s.machine.SetAttendance(state, snap, req.StudentID, status)
	})
}

// BulkAttendance marks every active student after confirmation.
func (s *MonitorService) BulkAttendance(ctx context.Context, userID string, req dto.MonitorBulkRequest) (*MonitorView, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	status := models.ParseAttendanceStatus(req.Status)
	return s.run(ctx, userID, req.MonitorSessionRequest, MonitorActionBulkAttendance, false, func(state *models.MonitorState, snap MonitorSnapshot) (MonitorEffect, *monitorWrite, error) {
		effect, write := s.machine.BulkAttendance(state, snap, status, req.Confirmed)
		return effect, write, nil
	})
}

func (s *MonitorService) validate(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid monitor request")
	}
	return nil
}

// run is the shared request cycle. A failed store write still returns a resynchronised view
// together with the error so the client keeps showing the last known records.
func (s *MonitorService) run(ctx context.Context, userID string, req dto.MonitorSessionRequest, action string, reset bool, apply monitorAction) (*MonitorView, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	date := models.NormalizeDate(s.now())
	if req.Date != "" {
		parsed, err := parseRequestDate(req.Date, "date")
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	block, err := s.repos.Blocks.FindByID(ctx, year.ID, req.BlockID)
	if err != nil {
		return nil, notFoundOrInternal(err, "block not found", "failed to load block")
	}

	key := models.MonitorSessionKey{UserID: userID, BlockID: block.ID, Date: date}
	state := s.loadState(ctx, key, reset)

	snap, err := s.snapshot(ctx, year.ID, *block, date)
	if err != nil {
		return nil, err
	}
	s.machine.Reconcile(state, snap)

	effect, write, err := apply(state, snap)
	if err != nil {
		return nil, err
	}

	var writeErr error
	if write != nil {
		writeErr = s.applyWrite(ctx, year.ID, block.ID, date, write)
		if writeErr != nil {
			s.logger.Warn("monitor write failed", zap.String("action", action), zap.String("block_id", block.ID), zap.Error(writeErr))
			effect = MonitorEffect{Kind: EffectFailed, Reason: effect.Reason, StudentID: effect.StudentID, LapNumber: effect.LapNumber}
		} else {
			s.cache.Invalidate(ctx, reportCachePattern)
		}
		refreshed, err := s.snapshot(ctx, year.ID, *block, date)
		if err != nil {
			s.logger.Warn("monitor resync failed", zap.String("block_id", block.ID), zap.Error(err))
		} else {
			snap = refreshed
		}
		s.machine.Reconcile(state, snap)
	}

	if err := s.sessions.Save(ctx, key, state, s.ttl); err != nil {
		s.logger.Warn("monitor session save failed", zap.String("key", key.String()), zap.Error(err))
	}
	if action != "" {
		s.metrics.RecordMonitorAction(action, effect.Kind)
	}

	view := BuildMonitorView(state, snap, effect)
	if writeErr != nil {
		return view, appErrors.Wrap(writeErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save; showing the latest saved records")
	}
	return view, nil
}

func (s *MonitorService) loadState(ctx context.Context, key models.MonitorSessionKey, reset bool) *models.MonitorState {
	if !reset {
		state, ok, err := s.sessions.Load(ctx, key)
		if err != nil {
			s.logger.Warn("monitor session load failed", zap.String("key", key.String()), zap.Error(err))
		}
		if ok && state != nil {
			if state.SelectedLaps == nil {
				state.SelectedLaps = []int{}
			}
			return state
		}
	}
	return s.machine.NewState(key.BlockID, key.Date)
}

// snapshot reads the block's records for the date. Attendance and performance are read by student,
// so a record written while a student sat in another block still counts.
func (s *MonitorService) snapshot(ctx context.Context, schoolYearID string, block models.Block, date time.Time) (MonitorSnapshot, error) {
	snap := MonitorSnapshot{Date: date, Block: block}
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("monitor_snapshot", time.Since(start)) }()

	students, err := s.repos.Students.List(ctx, models.StudentFilter{SchoolYearID: schoolYearID, BlockID: block.ID})
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	snap.Students = students

	if snap.Desks, err = s.repos.Desks.List(ctx, schoolYearID, block.ID); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load desks")
	}
	if snap.Laps, err = s.repos.Laps.ListByWeek(ctx, schoolYearID, block.ID, models.WeekStart(date)); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load laps")
	}
	if len(students) == 0 {
		return snap, nil
	}

	ids := make([]string, len(students))
	for i, student := range students {
		ids[i] = student.ID
	}
	if snap.Attendance, err = s.repos.Attendance.ListForStudents(ctx, schoolYearID, ids, date); err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	snap.Performance, err = s.repos.Performance.List(ctx, models.PerformanceFilter{
		SchoolYearID: schoolYearID,
		StudentIDs:   ids,
		Dates:        []time.Time{date},
	})
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance")
	}
	return snap, nil
}

// applyWrite translates an action into one store call. An unrated performance is a delete.
func (s *MonitorService) applyWrite(ctx context.Context, schoolYearID, blockID string, date time.Time, write *monitorWrite) error {
	switch write.kind {
	case writeAttendance:
		return s.repos.Attendance.Upsert(ctx, &models.AttendanceRecord{
			SchoolYearID: schoolYearID,
			BlockID:      blockID,
			StudentID:    write.studentID,
			Date:         date,
			Status:       write.status,
		})
	case writeBulkAttendance:
		_, err := s.repos.Attendance.BulkUpsert(ctx, schoolYearID, blockID, date, write.status)
		return err
	case writePerformance:
		if !write.rating.Set {
			return s.repos.Performance.Delete(ctx, schoolYearID, write.studentID, date, write.lapNumber)
		}
		return s.repos.Performance.Upsert(ctx, &models.LapPerformance{
			SchoolYearID: schoolYearID,
			BlockID:      blockID,
			StudentID:    write.studentID,
			Date:         date,
			LapNumber:    write.lapNumber,
			Color:        write.rating.Color,
		})
	default:
		return nil
	}
}

// MemorySessionStore keeps monitor sessions in process memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	state   models.MonitorState
	expires time.Time
}

// NewMemorySessionStore constructs an in-memory store. A nil clock uses wall time.
func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionStore{sessions: make(map[string]memorySession), now: now}
}

// Load returns a copy of the stored state.
func (m *MemorySessionStore) Load(_ context.Context, key models.MonitorSessionKey) (*models.MonitorState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[key.String()]
	if !ok {
		return nil, false, nil
	}
	if !session.expires.IsZero() && !m.now().Before(session.expires) {
		delete(m.sessions, key.String())
		return nil, false, nil
	}
	state := copyMonitorState(session.state)
	return &state, true, nil
}

// Save stores a copy of state.
func (m *MemorySessionStore) Save(_ context.Context, key models.MonitorSessionKey, state *models.MonitorState, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := memorySession{state: copyMonitorState(*state)}
	if ttl > 0 {
		session.expires = m.now().Add(ttl)
	}
	m.sessions[key.String()] = session
	return nil
}

func copyMonitorState(state models.MonitorState) models.MonitorState {
	state.SelectedLaps = append([]int{}, state.SelectedLaps...)
	if state.BannerUntil != nil {
		t := *state.BannerUntil
		state.BannerUntil = &t
	}
	if state.PendingSwitchAt != nil {
		t := *state.PendingSwitchAt
		state.PendingSwitchAt = &t
	}
	return state
}
