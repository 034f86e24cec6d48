package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type deskRepository interface {
	List(ctx context.Context, schoolYearID, blockID string) ([]models.Desk, error)
	FindByID(ctx context.Context, schoolYearID, id string) (*models.Desk, error)
	FindByStudent(ctx context.Context, studentID string) (*models.Desk, error)
	Create(ctx context.Context, desk *models.Desk) error
	Update(ctx context.Context, desk *models.Desk) error
	UpdatePositions(ctx context.Context, desks []models.Desk) error
	Delete(ctx context.Context, schoolYearID, id string) error
}

type studentFinder interface {
	FindByID(ctx context.Context, schoolYearID, id string) (*models.Student, error)
}

// DeskService manages the seating chart.
type DeskService struct {
	repo      deskRepository
	blocks    blockFinder
	students  studentFinder
	years     schoolYearResolver
	layout    SeatingLayout
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDeskService constructs a DeskService.
func NewDeskService(repo deskRepository, blocks blockFinder, students studentFinder, years schoolYearResolver, layout SeatingLayout, validate *validator.Validate, logger *zap.Logger) *DeskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeskService{repo: repo, blocks: blocks, students: students, years: years, layout: layout, validator: validate, logger: logger}
}

// List returns desks of a block, or of the whole year when blockID is empty.
func (s *DeskService) List(ctx context.Context, userID, blockID string) ([]models.Desk, error) {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	desks, err := s.repo.List(ctx, year.ID, blockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list desks")
	}
	return desks, nil
}

// Create places a desk. A student desk needs a student of the same block without another desk.
func (s *DeskService) Create(ctx context.Context, userID string, req dto.CreateDeskRequest) (*models.Desk, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid desk payload")
	}
	kind := models.ParseDeskKind(req.Type)
	if kind == models.DeskKindStudent && req.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrStudentRequired, "studentId is required for student desks")
	}

	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.blocks.FindByID(ctx, year.ID, req.BlockID); err != nil {
		return nil, notFoundOrInternal(err, "block not found", "failed to load block")
	}

	desk := &models.Desk{
		SchoolYearID: year.ID,
		BlockID:      req.BlockID,
		Kind:         kind,
		X:            floatOr(req.X, models.DefaultDeskX),
		Y:            floatOr(req.Y, models.DefaultDeskY),
		Width:        floatOr(req.Width, models.DefaultDeskWidth),
		Height:       floatOr(req.Height, models.DefaultDeskHeight),
		Rotation:     floatOr(req.Rotation, 0),
		GroupID:      req.GroupID,
	}
	if kind == models.DeskKindStudent {
		if err := s.assign(ctx, year.ID, desk, req.StudentID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, desk); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create desk")
	}
	return desk, nil
}

// Update patches geometry, group or assignment.
func (s *DeskService) Update(ctx context.Context, userID, id string, req dto.UpdateDeskRequest) (*models.Desk, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid desk payload")
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	desk, err := s.find(ctx, year.ID, id)
	if err != nil {
		return nil, err
	}

	if req.X != nil {
		desk.X = *req.X
	}
	if req.Y != nil {
		desk.Y = *req.Y
	}
	if req.Width != nil {
		desk.Width = *req.Width
	}
	if req.Height != nil {
		desk.Height = *req.Height
	}
	if req.Rotation != nil {
		desk.Rotation = *req.Rotation
	}
	if req.GroupID != nil {
		if *req.GroupID == "" {
			desk.GroupID = nil
		} else {
			desk.GroupID = req.GroupID
		}
	}
	if req.StudentID != nil && desk.Kind == models.DeskKindStudent {
		if *req.StudentID == "" {
			desk.StudentID, desk.SeatNumber = nil, nil
		} else if desk.AssignedStudent() != *req.StudentID {
			if err := s.assign(ctx, year.ID, desk, *req.StudentID); err != nil {
				return nil, err
			}
		}
	}

	if err := s.repo.Update(ctx, desk); err != nil {
		return nil, notFoundOrInternal(err, "desk not found", "failed to update desk")
	}
	return desk, nil
}

// Move releases a dragged desk at (x, y), applying grid, group and nearest-desk snapping.
func (s *DeskService) Move(ctx context.Context, userID, id string, req dto.MoveDeskRequest) (*DeskMove, error) {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	desk, err := s.find(ctx, year.ID, id)
	if err != nil {
		return nil, err
	}
	desks, err := s.repo.List(ctx, year.ID, desk.BlockID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list desks")
	}

	move := s.layout.Release(*desk, req.X, req.Y, desks)
	if err := s.repo.UpdatePositions(ctx, move.Desks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move desk")
	}
	return &move, nil
}

// Delete removes a desk.
func (s *DeskService) Delete(ctx context.Context, userID, id string) error {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, year.ID, id); err != nil {
		return notFoundOrInternal(err, "desk not found", "failed to delete desk")
	}
	return nil
}

func (s *DeskService) find(ctx context.Context, schoolYearID, id string) (*models.Desk, error) {
	desk, err := s.repo.FindByID(ctx, schoolYearID, id)
	if err != nil {
		return nil, notFoundOrInternal(err, "desk not found", "failed to load desk")
	}
	return desk, nil
}

// assign binds the student to the desk and mirrors its seat number.
func (s *DeskService) assign(ctx context.Context, schoolYearID string, desk *models.Desk, studentID string) error {
	student, err := s.students.FindByID(ctx, schoolYearID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrStudentNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.BlockID != desk.BlockID {
		return appErrors.Clone(appErrors.ErrValidation, "student belongs to another block")
	}
	existing, err := s.repo.FindByStudent(ctx, studentID)
	switch {
	case err == nil && existing.ID != desk.ID:
		return appErrors.Clone(appErrors.ErrExists, "student already has a desk")
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check desk assignment")
	}
	desk.StudentID = &student.ID
	seat := student.SeatNumber
	desk.SeatNumber = &seat
	return nil
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
