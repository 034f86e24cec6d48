package service

import (
	"context"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type setupRepository interface {
	Counts(ctx context.Context, schoolYearID string) (*models.SetupCounts, error)
}

// SetupStepStatus describes one navigation step.
type SetupStepStatus struct {
	Step     models.SetupStep `json:"step"`
	Label    string           `json:"label"`
	Href     string           `json:"href"`
	Unlocked bool             `json:"unlocked"`
	Helper   string           `json:"helper,omitempty"`
}

// SetupStatus is the counts plus the derived step gate.
type SetupStatus struct {
	models.SetupCounts
	Steps []SetupStepStatus `json:"steps"`
}

type setupStepDef struct {
	step   models.SetupStep
	label  string
	href   string
	helper string
}

var setupSteps = []setupStepDef{
	{step: models.SetupStepBlocks, label: "Blocks", href: "/setup/blocks", helper: "Create your first block."},
	{step: models.SetupStepStudents, label: "Students", href: "/setup/students", helper: "Add at least one block to unlock students."},
	{step: models.SetupStepSeating, label: "Seating", href: "/setup/seating", helper: "Add at least one student to unlock seating."},
	{step: models.SetupStepLaps, label: "Laps", href: "/setup/laps", helper: "Create a seating chart to unlock laps."},
	{step: models.SetupStepReporting, label: "Reporting", href: "/reports", helper: "Name at least one lap to unlock reporting."},
}

// DeriveSetupStatus unlocks each step when the previous step's count is positive. Blocks is always open.
func DeriveSetupStatus(counts models.SetupCounts) SetupStatus {
	previous := []int{1, counts.BlocksCount, counts.StudentsCount, counts.DesksCount, counts.LapsCount}
	steps := make([]SetupStepStatus, len(setupSteps))
	for i, def := range setupSteps {
		unlocked := previous[i] > 0
		steps[i] = SetupStepStatus{Step: def.step, Label: def.label, Href: def.href, Unlocked: unlocked}
		if !unlocked || i == 0 {
			steps[i].Helper = def.helper
		}
	}
	return SetupStatus{SetupCounts: counts, Steps: steps}
}

// Unlocked reports whether the named step is open.
func (s SetupStatus) Unlocked(step models.SetupStep) bool {
	for _, st := range s.Steps {
		if st.Step == step {
			return st.Unlocked
		}
	}
	return false
}

// SetupService reports classroom setup progress.
type SetupService struct {
	repo  setupRepository
	years schoolYearResolver
}

// NewSetupService constructs a SetupService.
func NewSetupService(repo setupRepository, years schoolYearResolver) *SetupService {
	return &SetupService{repo: repo, years: years}
}

// Status loads the counts of the active school year and derives the gate.
func (s *SetupService) Status(ctx context.Context, userID string) (*SetupStatus, error) {
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.Counts(ctx, year.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load setup counts")
	}
	status := DeriveSetupStatus(*counts)
	return &status, nil
}
