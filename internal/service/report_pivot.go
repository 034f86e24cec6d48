package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

// Fixed report columns.
const (
	ReportColumnStudent = "student"
	ReportColumnBlock   = "block"
	ReportColumnDate    = "date"
	ReportColumnLap     = "lap"
	ReportColumnColor   = "color"
)

// Sort directions for SortRows.
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// ReportDates expands weeks x days into calendar dates, week offset first and day second.
func ReportDates(weekStart time.Time, weeksRange int, days []int) []models.ReportDate {
	base := models.WeekStart(weekStart)
	dates := make([]models.ReportDate, 0, weeksRange*len(days))
	for week := 0; week < weeksRange; week++ {
		monday := base.AddDate(0, 0, week*7)
		for _, day := range days {
			dates = append(dates, models.ReportDate{Date: monday.AddDate(0, 0, day), DayIndex: day})
		}
	}
	return dates
}

// ReportColumns builds one column per date and lap. The label carries the standard code of the first
// matching definition, in block order.
func ReportColumns(dates []models.ReportDate, laps []int, blockIDs []string, defs []models.LapDefinition) []models.ReportColumn {
	blockRank := make(map[string]int, len(blockIDs))
	for i, id := range blockIDs {
		blockRank[id] = i
	}
	type slot struct {
		week string
		day  int
		lap  int
	}
	samples := make(map[slot]models.LapDefinition, len(defs))
	for _, def := range defs {
		rank, ok := blockRank[def.BlockID]
		if !ok {
			continue
		}
		key := slot{week: models.FormatDate(models.NormalizeDate(def.WeekStart)), day: def.DayIndex, lap: def.LapNumber}
		if current, exists := samples[key]; exists && blockRank[current.BlockID] <= rank {
			continue
		}
		samples[key] = def
	}

	columns := make([]models.ReportColumn, 0, len(dates)*len(laps))
	for _, d := range dates {
		week := models.FormatDate(models.WeekStart(d.Date))
		for _, lap := range laps {
			col := models.ReportColumn{Date: models.FormatDate(d.Date), DayIndex: d.DayIndex, LapNumber: lap}
			if def, ok := samples[slot{week: week, day: d.DayIndex, lap: lap}]; ok && def.StandardCode != nil && *def.StandardCode != "" {
				code := *def.StandardCode
				col.StandardCode = &code
			}
			col.Label = reportColumnLabel(col)
			columns = append(columns, col)
		}
	}
	return columns
}

func reportColumnLabel(col models.ReportColumn) string {
	label := fmt.Sprintf("%s Lap %d", col.Date, col.LapNumber)
	if col.StandardCode != nil {
		label += fmt.Sprintf(" (%s)", *col.StandardCode)
	}
	return label
}

// FilterColumnsByStandards keeps columns whose standard code is listed. An empty list keeps everything.
func FilterColumnsByStandards(columns []models.ReportColumn, standards []string) []models.ReportColumn {
	if len(standards) == 0 {
		return columns
	}
	allowed := make(map[string]bool, len(standards))
	for _, code := range standards {
		allowed[code] = true
	}
	kept := make([]models.ReportColumn, 0, len(columns))
	for _, col := range columns {
		if col.StandardCode != nil && allowed[*col.StandardCode] {
			kept = append(kept, col)
		}
	}
	return kept
}

// MatchesCategories applies the AND/OR category filter. No categories matches everyone.
func MatchesCategories(student models.Student, categories []models.CategoryFlag, matchAll bool) bool {
	if len(categories) == 0 {
		return true
	}
	for _, flag := range categories {
		has := student.HasFlag(flag)
		if matchAll && !has {
			return false
		}
		if !matchAll && has {
			return true
		}
	}
	return matchAll
}

// ResolveReportStudents narrows students to the filter's blocks, ids and categories, ordered by block then seat.
func ResolveReportStudents(students []models.Student, filter models.ReportFilter) []models.Student {
	blocks := stringSet(filter.BlockIDs)
	ids := stringSet(filter.StudentIDs)
	resolved := make([]models.Student, 0, len(students))
	for _, student := range students {
		if !blocks[student.BlockID] {
			continue
		}
		if len(ids) > 0 && !ids[student.ID] {
			continue
		}
		if !MatchesCategories(student, filter.Categories, filter.CategoriesMatchAll) {
			continue
		}
		resolved = append(resolved, student)
	}
	sort.SliceStable(resolved, func(i, j int) bool {
		if resolved[i].BlockID != resolved[j].BlockID {
			return resolved[i].BlockID < resolved[j].BlockID
		}
		return resolved[i].SeatNumber < resolved[j].SeatNumber
	})
	return resolved
}

// ValidateReportFilter rejects filters that cannot produce a report without touching the store.
func ValidateReportFilter(filter models.ReportFilter) error {
	if len(filter.BlockIDs) == 0 {
		return appErrors.Clone(appErrors.ErrNoBlocks, "select at least one block")
	}
	if filter.ViewMode == models.ReportViewStudent && len(filter.StudentIDs) != 1 {
		return appErrors.Clone(appErrors.ErrSelectOneStudent, "select exactly one student for the student view")
	}
	return nil
}

// PivotReport turns loaded records into the report table.
func PivotReport(filter models.ReportFilter, data models.ReportData) (*models.ReportResult, error) {
	if err := ValidateReportFilter(filter); err != nil {
		return nil, err
	}
	dates := ReportDates(filter.WeekStart, filter.WeeksRange, filter.Days)
	students := ResolveReportStudents(data.Students, filter)
	if filter.ViewMode == models.ReportViewStudent {
		return studentReport(filter, dates, students, data.Performances)
	}
	columns := FilterColumnsByStandards(ReportColumns(dates, filter.Laps, filter.BlockIDs, data.LapDefinitions), filter.Standards)
	return classReport(filter, columns, students, data), nil
}

func classReport(filter models.ReportFilter, columns []models.ReportColumn, students []models.Student, data models.ReportData) *models.ReportResult {
	includeBlock := len(filter.BlockIDs) > 1
	blocks := make(map[string]models.Block, len(data.Blocks))
	for _, b := range data.Blocks {
		blocks[b.ID] = b
	}
	colors := make(map[string]string, len(data.Performances))
	for _, p := range data.Performances {
		colors[performanceKey(p.StudentID, models.FormatDate(p.Date), p.LapNumber)] = string(p.Color)
	}

	header := []string{ReportColumnStudent}
	if includeBlock {
		header = append(header, ReportColumnBlock)
	}
	for _, col := range columns {
		header = append(header, col.Label)
	}

	rows := make([]map[string]string, 0, len(students))
	for _, student := range students {
		row := map[string]string{ReportColumnStudent: student.DisplayName}
		if includeBlock {
			if block, ok := blocks[student.BlockID]; ok {
				row[ReportColumnBlock] = block.Label()
			} else {
				row[ReportColumnBlock] = ""
			}
		}
		for _, col := range columns {
			row[col.Label] = colors[performanceKey(student.ID, col.Date, col.LapNumber)]
		}
		rows = append(rows, row)
	}

	return &models.ReportResult{
		Columns: header,
		Rows:    rows,
		Meta:    models.ReportMeta{WeekStart: models.FormatDate(models.WeekStart(filter.WeekStart)), Columns: columns},
	}
}

func studentReport(filter models.ReportFilter, dates []models.ReportDate, students []models.Student, performances []models.LapPerformance) (*models.ReportResult, error) {
	var student *models.Student
	for i := range students {
		if students[i].ID == filter.StudentIDs[0] {
			student = &students[i]
			break
		}
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "student not found")
	}

	inRange := make(map[string]bool, len(dates))
	for _, d := range dates {
		inRange[models.FormatDate(d.Date)] = true
	}
	laps := make(map[int]bool, len(filter.Laps))
	for _, lap := range filter.Laps {
		laps[lap] = true
	}
	blocks := stringSet(filter.BlockIDs)

	records := make([]models.LapPerformance, 0)
	for _, p := range performances {
		if p.StudentID != student.ID || !blocks[p.BlockID] || !laps[p.LapNumber] || !inRange[models.FormatDate(p.Date)] {
			continue
		}
		records = append(records, p)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].LapNumber < records[j].LapNumber
	})

	rows := make([]map[string]string, 0, len(records))
	for _, p := range records {
		rows = append(rows, map[string]string{
			ReportColumnStudent: student.DisplayName,
			ReportColumnDate:    models.FormatDate(p.Date),
			ReportColumnLap:     strconv.Itoa(p.LapNumber),
			ReportColumnColor:   string(p.Color),
		})
	}
	return &models.ReportResult{
		Columns: []string{ReportColumnStudent, ReportColumnDate, ReportColumnLap, ReportColumnColor},
		Rows:    rows,
		Meta:    models.ReportMeta{WeekStart: models.FormatDate(models.WeekStart(filter.WeekStart))},
	}, nil
}

// SortRows orders rows by one column's string value. The sort is stable so equal cells keep their order.
func SortRows(rows []map[string]string, column, direction string) {
	if column == "" {
		return
	}
	desc := strings.EqualFold(direction, SortDescending)
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rows[i][column] > rows[j][column]
		}
		return rows[i][column] < rows[j][column]
	})
}

func performanceKey(studentID, date string, lap int) string {
	return studentID + "|" + date + "|" + strconv.Itoa(lap)
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
