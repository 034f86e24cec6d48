package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	"github.com/noah-isme/academic-monitor-api/internal/repository"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type lapDefinitionRepository interface {
	ListByWeek(ctx context.Context, schoolYearID, blockID string, weekStart time.Time) ([]models.LapDefinition, error)
	Upsert(ctx context.Context, lap *models.LapDefinition) error
	CopyWeek(ctx context.Context, schoolYearID, fromBlockID, toBlockID string, weekStart time.Time, overwrite bool) (int, error)
}

// Standards is the curriculum catalogue laps can reference.
var Standards = []models.Standard{
	{Code: "RP.1", Description: "Compute unit rates associated with ratios of fractions."},
	{Code: "RP.2", Description: "Recognize and represent proportional relationships."},
	{Code: "RP.3", Description: "Use proportional relationships to solve multistep problems."},
}

// LapService names lap slots per block and week.
type LapService struct {
	repo      lapDefinitionRepository
	blocks    blockFinder
	years     schoolYearResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLapService constructs a LapService.
func NewLapService(repo lapDefinitionRepository, blocks blockFinder, years schoolYearResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LapService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := RegisterValidations(validate); err != nil {
		logger.Error("failed to register validations", zap.Error(err))
	}
	return &LapService{repo: repo, blocks: blocks, years: years, cache: cache, validator: validate, logger: logger}
}

// ListWeek returns a block's definitions for the week containing rawWeek.
func (s *LapService) ListWeek(ctx context.Context, userID, blockID, rawWeek string) ([]models.LapDefinition, error) {
	if blockID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "blockId is required")
	}
	week, err := parseRequestDate(rawWeek, "weekStart")
	if err != nil {
		return nil, err
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	laps, err := s.repo.ListByWeek(ctx, year.ID, blockID, models.WeekStart(week))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load laps")
	}
	return laps, nil
}

// Upsert names one lap slot. The week start is normalised to its Monday.
func (s *LapService) Upsert(ctx context.Context, userID string, req dto.LapDefinitionRequest) (*models.LapDefinition, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "blockId, weekStart, name, a day from 0 to 4 and a lap from 1 to 3 are required")
	}
	week, err := parseRequestDate(req.WeekStart, "weekStart")
	if err != nil {
		return nil, err
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.blocks.FindByID(ctx, year.ID, req.BlockID); err != nil {
		return nil, notFoundOrInternal(err, "block not found", "failed to load block")
	}

	var standard *string
	if req.StandardCode != nil && strings.TrimSpace(*req.StandardCode) != "" {
		code := strings.TrimSpace(*req.StandardCode)
		standard = &code
	}
	lap := &models.LapDefinition{
		SchoolYearID: year.ID,
		BlockID:      req.BlockID,
		WeekStart:    models.WeekStart(week),
		DayIndex:     req.DayIndex,
		LapNumber:    req.LapNumber,
		Name:         req.Name,
		StandardCode: standard,
	}
	if err := s.repo.Upsert(ctx, lap); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lap")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	return lap, nil
}

// CopyWeek copies one block's lap names for a week onto another block. An occupied target week
// needs Force.
func (s *LapService) CopyWeek(ctx context.Context, userID string, req dto.CopyLapWeekRequest) (*dto.CopyLapWeekResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "fromBlockId, toBlockId and weekStart are required")
	}
	if req.FromBlockID == req.ToBlockID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "source and target block must differ")
	}
	week, err := parseRequestDate(req.WeekStart, "weekStart")
	if err != nil {
		return nil, err
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, blockID := range []string{req.FromBlockID, req.ToBlockID} {
		if _, err := s.blocks.FindByID(ctx, year.ID, blockID); err != nil {
			return nil, notFoundOrInternal(err, "block not found", "failed to load block")
		}
	}

	created, err := s.repo.CopyWeek(ctx, year.ID, req.FromBlockID, req.ToBlockID, models.WeekStart(week), req.Force)
	if err != nil {
		if errors.Is(err, repository.ErrLapWeekExists) {
			return nil, appErrors.Clone(appErrors.ErrExists, "target week already has laps; copy again with force to overwrite")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to copy laps")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	s.logger.Info("lap week copied", zap.String("from_block_id", req.FromBlockID), zap.String("to_block_id", req.ToBlockID), zap.Int("created", created))
	return &dto.CopyLapWeekResponse{Created: created}, nil
}
