package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type blockRepository interface {
	List(ctx context.Context, schoolYearID string, includeArchived bool) ([]models.Block, error)
	FindByID(ctx context.Context, schoolYearID, id string) (*models.Block, error)
	Create(ctx context.Context, block *models.Block) error
	Update(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, schoolYearID, id string) error
}

// BlockService manages class periods.
type BlockService struct {
	repo      blockRepository
	years     schoolYearResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlockService constructs a BlockService.
func NewBlockService(repo blockRepository, years schoolYearResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BlockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockService{repo: repo, years: years, cache: cache, validator: validate, logger: logger}
}

// List returns blocks ordered by number.
func (s *BlockService) List(ctx context.Context, userID string, includeArchived bool) ([]models.Block, error) {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.List(ctx, year.ID, includeArchived)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blocks")
	}
	return blocks, nil
}

// Get returns one block.
func (s *BlockService) Get(ctx context.Context, userID, id string) (*models.Block, error) {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, year.ID, id)
}

// Create adds a block.
func (s *BlockService) Create(ctx context.Context, userID string, req dto.CreateBlockRequest) (*models.Block, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "block number must be positive and name is required")
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	block := &models.Block{SchoolYearID: year.ID, Number: req.Number, Name: req.Name}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create block")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	return block, nil
}

// Update patches a block.
func (s *BlockService) Update(ctx context.Context, userID, id string, req dto.UpdateBlockRequest) (*models.Block, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid block payload")
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	block, err := s.find(ctx, year.ID, id)
	if err != nil {
		return nil, err
	}
	if req.Number != nil {
		block.Number = *req.Number
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "block name is required")
		}
		block.Name = name
	}
	if req.Archived != nil {
		block.Archived = *req.Archived
	}
	if err := s.repo.Update(ctx, block); err != nil {
		return nil, notFoundOrInternal(err, "block not found", "failed to update block")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	return block, nil
}

// Delete removes a block and its desks.
func (s *BlockService) Delete(ctx context.Context, userID, id string) error {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, year.ID, id); err != nil {
		return notFoundOrInternal(err, "block not found", "failed to delete block")
	}
	s.cache.Invalidate(ctx, reportCachePattern)
	s.logger.Info("block deleted", zap.String("block_id", id))
	return nil
}

func (s *BlockService) find(ctx context.Context, schoolYearID, id string) (*models.Block, error) {
	block, err := s.repo.FindByID(ctx, schoolYearID, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "block not found", "failed to load block")
	}
	return block, nil
}

// notFoundOrInternal maps a missing row to not_found and everything else to internal.
func notFoundOrInternal(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
