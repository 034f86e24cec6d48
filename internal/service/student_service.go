package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	ListUnassigned(ctx context.Context, schoolYearID, blockID string) ([]models.Student, error)
	FindByID(ctx context.Context, schoolYearID, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, schoolYearID, id string) error
}

type blockFinder interface {
	FindByID(ctx context.Context, schoolYearID, id string) (*models.Block, error)
}

// StudentQuery filters the student list.
type StudentQuery struct {
	BlockID    string
	ActiveOnly bool
}

// StudentService manages the roster.
type StudentService struct {
	repo      studentRepository
	blocks    blockFinder
	years     schoolYearResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, blocks blockFinder, years schoolYearResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, blocks: blocks, years: years, cache: cache, validator: validate, logger: logger}
}

// List returns students ordered by block then seat number.
func (s *StudentService) List(ctx context.Context, userID string, query StudentQuery) ([]models.Student, error) {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.List(ctx, models.StudentFilter{SchoolYearID: year.ID, BlockID: query.BlockID, ActiveOnly: query.ActiveOnly})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// ListUnassigned returns active students of a block without a desk.
func (s *StudentService) ListUnassigned(ctx context.Context, userID, blockID string) ([]models.Student, error) {
	if blockID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "blockId is required")
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.ListUnassigned(ctx, year.ID, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unassigned students")
	}
	return students, nil
}

// Create adds a student to a block with the next seat number.
func (s *StudentService) Create(ctx context.Context, userID string, req dto.CreateStudentRequest) (*models.Student, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "displayName and blockId are required")
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.blocks.FindByID(ctx, year.ID, req.BlockID); err != nil {
		return nil, notFoundOrInternal(err, "block not found", "failed to load block")
	}

	student := &models.Student{
		SchoolYearID: year.ID,
		BlockID:      req.BlockID,
		DisplayName:  req.DisplayName,
		Active:       true,
		ML:           req.ML,
		MLNew:        req.MLNew,
		IEP504:       req.IEP504,
		EC:           req.EC,
		CA:           req.CA,
		HIIT:         req.HIIT,
		Proficiency:  models.ParseProficiencyLevel(req.EOG),
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.invalidate(ctx)
	return student, nil
}

// Update patches a student.
func (s *StudentService) Update(ctx context.Context, userID, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, year.ID, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "student not found", "failed to load student")
	}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "displayName is required")
		}
		student.DisplayName = name
	}
	if req.BlockID != nil && *req.BlockID != student.BlockID {
		if _, err := s.blocks.FindByID(ctx, year.ID, *req.BlockID); err != nil {
			return nil, notFoundOrInternal(err, "block not found", "failed to load block")
		}
		student.BlockID = *req.BlockID
	}
	if req.Active != nil {
		student.Active = *req.Active
	}
	applyFlag(&student.ML, req.ML)
	applyFlag(&student.MLNew, req.MLNew)
	applyFlag(&student.IEP504, req.IEP504)
	applyFlag(&student.EC, req.EC)
	applyFlag(&student.CA, req.CA)
	applyFlag(&student.HIIT, req.HIIT)
	if req.EOG != nil {
		student.Proficiency = models.ParseProficiencyLevel(*req.EOG)
	}
	if req.Notes != nil {
		student.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, notFoundOrInternal(err, "student not found", "failed to update student")
	}
	s.invalidate(ctx)
	return student, nil
}

// Delete removes a student and its history.
func (s *StudentService) Delete(ctx context.Context, userID, id string) error {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, year.ID, id); err != nil {
		return notFoundOrInternal(err, "student not found", "failed to delete student")
	}
	s.invalidate(ctx)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, reportCachePattern)
}

func applyFlag(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}
