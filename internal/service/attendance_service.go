package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type attendanceRepository interface {
	ListByBlockDate(ctx context.Context, schoolYearID, blockID string, date time.Time) ([]models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.AttendanceRecord) error
	BulkUpsert(ctx context.Context, schoolYearID, blockID string, date time.Time, status models.AttendanceStatus) (int, error)
}

// AttendanceWriteResult reports a single record or the number of bulk writes.
type AttendanceWriteResult struct {
	Record  *models.AttendanceRecord `json:"record,omitempty"`
	Updated int                      `json:"updated"`
}

// AttendanceService reads and writes daily attendance.
type AttendanceService struct {
	repo      attendanceRepository
	blocks    blockFinder
	students  studentFinder
	years     schoolYearResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, blocks blockFinder, students studentFinder, years schoolYearResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := RegisterValidations(validate); err != nil {
		logger.Error("failed to register validations", zap.Error(err))
	}
	return &AttendanceService{repo: repo, blocks: blocks, students: students, years: years, cache: cache, validator: validate, logger: logger}
}

// List returns attendance records of a block on a date.
func (s *AttendanceService) List(ctx context.Context, userID, blockID, rawDate string) ([]models.AttendanceRecord, error) {
	if blockID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "blockId is required")
	}
	date, err := parseRequestDate(rawDate, "date")
	if err != nil {
		return nil, err
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListByBlockDate(ctx, year.ID, blockID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return records, nil
}

// Record upserts one student's status, or every active student's status in bulk mode.
// Unknown statuses fall back to PRESENT.
func (s *AttendanceService) Record(ctx context.Context, userID string, req dto.AttendanceRequest) (*AttendanceWriteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "blockId and date are required")
	}
	bulk := strings.EqualFold(req.Mode, dto.AttendanceModeBulk)
	if !bulk && req.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrStudentRequired, "studentId is required")
	}
	date, err := parseRequestDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	status := models.ParseAttendanceStatus(req.Status)

	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.blocks.FindByID(ctx, year.ID, req.BlockID); err != nil {
		return nil, notFoundOrInternal(err, "block not found", "failed to load block")
	}

	if bulk {
		written, err := s.repo.BulkUpsert(ctx, year.ID, req.BlockID, date, status)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
		}
		s.cache.Invalidate(ctx, reportCachePattern)
		s.logger.Info("bulk attendance recorded", zap.String("block_id", req.BlockID), zap.Int("updated", written))
		return &AttendanceWriteResult{Updated: written}, nil
	}

	if _, err := s.students.FindByID(ctx, year.ID, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	record := &models.AttendanceRecord{
		SchoolYearID: year.ID,
		BlockID:      req.BlockID,
		StudentID:    req.StudentID,
		Date:         date,
		Status:       status,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	return &AttendanceWriteResult{Record: record, Updated: 1}, nil
}
