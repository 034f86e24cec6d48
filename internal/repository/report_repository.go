package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-monitor-api/internal/models"
)

// ReportRepository loads the record slice a report pivots over.
type ReportRepository struct {
	blocks      *BlockRepository
	students    *StudentRepository
	laps        *LapDefinitionRepository
	performance *PerformanceRepository
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{
		blocks:      NewBlockRepository(db),
		students:    NewStudentRepository(db),
		laps:        NewLapDefinitionRepository(db),
		performance: NewPerformanceRepository(db),
	}
}

// Load returns blocks, students, lap definitions and performance matching the filter's scope.
// Category and standards filtering happen in the pivot, not in SQL.
func (r *ReportRepository) Load(ctx context.Context, filter models.ReportFilter) (*models.ReportData, error) {
	blocks, err := r.blocks.List(ctx, filter.SchoolYearID, true)
	if err != nil {
		return nil, err
	}

	students, err := r.students.List(ctx, models.StudentFilter{
		SchoolYearID: filter.SchoolYearID,
		BlockIDs:     filter.BlockIDs,
		StudentIDs:   filter.StudentIDs,
	})
	if err != nil {
		return nil, err
	}

	weeks := make([]time.Time, 0, filter.WeeksRange)
	dates := make([]time.Time, 0, filter.WeeksRange*len(filter.Days))
	monday := models.WeekStart(filter.WeekStart)
	for w := 0; w < filter.WeeksRange; w++ {
		week := monday.AddDate(0, 0, w*7)
		weeks = append(weeks, week)
		for _, day := range filter.Days {
			dates = append(dates, week.AddDate(0, 0, day))
		}
	}
	data := &models.ReportData{Blocks: blocks, Students: students}
	if len(dates) == 0 || len(filter.Laps) == 0 {
		return data, nil
	}

	data.LapDefinitions, err = r.laps.List(ctx, models.LapDefinitionFilter{
		SchoolYearID: filter.SchoolYearID,
		BlockIDs:     filter.BlockIDs,
		WeekStarts:   weeks,
		DayIndexes:   filter.Days,
		LapNumbers:   filter.Laps,
	})
	if err != nil {
		return nil, err
	}

	data.Performances, err = r.performance.List(ctx, models.PerformanceFilter{
		SchoolYearID: filter.SchoolYearID,
		BlockIDs:     filter.BlockIDs,
		StudentIDs:   filter.StudentIDs,
		Dates:        dates,
		LapNumbers:   filter.Laps,
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
