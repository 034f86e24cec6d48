package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type schoolYearRepository interface {
	FindActive(ctx context.Context, userID string) (*models.SchoolYear, error)
	Create(ctx context.Context, year *models.SchoolYear) error
}

// schoolYearResolver is what every data service needs to scope its queries.
type schoolYearResolver interface {
	Resolve(ctx context.Context, userID string) (*models.SchoolYear, error)
}

// SchoolYearService resolves the active school year of a teacher.
type SchoolYearService struct {
	repo   schoolYearRepository
	logger *zap.Logger
}

// NewSchoolYearService constructs a SchoolYearService.
func NewSchoolYearService(repo schoolYearRepository, logger *zap.Logger) *SchoolYearService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolYearService{repo: repo, logger: logger}
}

// Resolve returns the newest active year, creating a default one when the teacher has none.
func (s *SchoolYearService) Resolve(ctx context.Context, userID string) (*models.SchoolYear, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	year, err := s.repo.FindActive(ctx, userID)
	if err == nil {
		return year, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school year")
	}

	year = &models.SchoolYear{UserID: userID, Label: models.DefaultSchoolYearLabel, Active: true}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school year")
	}
	s.logger.Info("created default school year", zap.String("user_id", userID), zap.String("school_year_id", year.ID))
	return year, nil
}
