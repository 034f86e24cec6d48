package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type performanceRepository interface {
	ListByBlockDate(ctx context.Context, schoolYearID, blockID string, date time.Time) ([]models.LapPerformance, error)
	Upsert(ctx context.Context, record *models.LapPerformance) error
	Delete(ctx context.Context, schoolYearID, studentID string, date time.Time, lapNumber int) error
}

// PerformanceService reads and writes lap colors.
type PerformanceService struct {
	repo      performanceRepository
	students  studentFinder
	years     schoolYearResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPerformanceService constructs a PerformanceService.
func NewPerformanceService(repo performanceRepository, students studentFinder, years schoolYearResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PerformanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := RegisterValidations(validate); err != nil {
		logger.Error("failed to register validations", zap.Error(err))
	}
	return &PerformanceService{repo: repo, students: students, years: years, cache: cache, validator: validate, logger: logger}
}

// List returns lap colors of a block on a date.
func (s *PerformanceService) List(ctx context.Context, userID, blockID, rawDate string) ([]models.LapPerformance, error) {
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
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load performance")
	}
	return records, nil
}

// Record upserts a color, or deletes the record when Remove is set. The result is nil after a delete.
func (s *PerformanceService) Record(ctx context.Context, userID string, req dto.PerformanceRequest) (*models.LapPerformance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "blockId, studentId, date and a lap number from 1 to 3 are required")
	}
	date, err := parseRequestDate(req.Date, "date")
	if err != nil {
		return nil, err
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, year.ID, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if req.Remove {
		if err := s.repo.Delete(ctx, year.ID, req.StudentID, date, req.LapNumber); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete performance")
		}
		s.cache.Invalidate(ctx, reportCachePattern)
		return nil, nil
	}

	record := &models.LapPerformance{
		SchoolYearID: year.ID,
		BlockID:      req.BlockID,
		StudentID:    req.StudentID,
		Date:         date,
		LapNumber:    req.LapNumber,
		Color:        models.ParsePerformanceColor(req.Color),
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record performance")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	return record, nil
}
