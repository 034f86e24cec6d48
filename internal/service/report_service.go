package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

// reportCachePattern matches every cached report; any classroom write invalidates them all.
const reportCachePattern = "reports:*"

type reportRepository interface {
	Load(ctx context.Context, filter models.ReportFilter) (*models.ReportData, error)
}

// ReportService runs and exports pivot reports.
type ReportService struct {
	repo     reportRepository
	years    schoolYearResolver
	exporter *ExportService
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportRepository, years schoolYearResolver, exporter *ExportService, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if exporter == nil {
		exporter = NewExportService(nil, nil, nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, years: years, exporter: exporter, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// Run pivots the records selected by req into a table.
func (s *ReportService) Run(ctx context.Context, userID string, req dto.ReportRequest) (*models.ReportResult, error) {
	result, err := s.run(ctx, userID, req, "json")
	if err != nil {
		return nil, err
	}
	SortRows(result.Rows, req.Sort, req.Order)
	return result, nil
}

// Export runs the report and renders it as csv, xlsx or pdf.
func (s *ReportService) Export(ctx context.Context, userID string, req dto.ReportRequest, rawFormat string) (*ExportFile, error) {
	format := models.ReportFormat(strings.ToLower(strings.TrimSpace(rawFormat)))
	if format == "" {
		format = models.ReportFormatCSV
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, xlsx or pdf")
	}
	result, err := s.run(ctx, userID, req, string(format))
	if err != nil {
		return nil, err
	}
	SortRows(result.Rows, req.Sort, req.Order)
	return s.exporter.Render(result, format)
}

func (s *ReportService) run(ctx context.Context, userID string, req dto.ReportRequest, format string) (*models.ReportResult, error) {
	filter, err := NormalizeReportRequest(req, s.now())
	if err != nil {
		return nil, err
	}
	if err := ValidateReportFilter(filter); err != nil {
		return nil, err
	}
	year, err := s.years.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	filter.SchoolYearID = year.ID

	start := time.Now()
	key := reportCacheKey(filter)
	var cached models.ReportResult
	if s.cache.Get(ctx, key, &cached) {
		s.metrics.ObserveReport(string(filter.ViewMode), format, time.Since(start))
		return &cached, nil
	}

	loadStart := time.Now()
	data, err := s.repo.Load(ctx, filter)
	s.metrics.ObserveDBQuery("report_load", time.Since(loadStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report data")
	}
	result, err := PivotReport(filter, *data)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, result, 0)
	s.metrics.ObserveReport(string(filter.ViewMode), format, time.Since(start))
	s.logger.Debug("report built",
		zap.String("view", string(filter.ViewMode)),
		zap.Int("columns", len(result.Columns)),
		zap.Int("rows", len(result.Rows)),
	)
	return result, nil
}

// NormalizeReportRequest applies every report default. Missing days and laps mean all of them,
// weeksRange is clamped to 1..4, weekStart snaps to its Monday and unknown categories are dropped.
func NormalizeReportRequest(req dto.ReportRequest, now time.Time) (models.ReportFilter, error) {
	filter := models.ReportFilter{
		WeeksRange:         clampInt(req.WeeksRange, 1, 4),
		BlockIDs:           compactStrings(req.Blocks),
		StudentIDs:         compactStrings(req.Students),
		CategoriesMatchAll: req.CategoriesMatchAll,
		Standards:          compactStrings(req.Standards),
		ViewMode:           models.ReportViewClass,
	}

	filter.WeekStart = models.WeekStart(now)
	if strings.TrimSpace(req.WeekStart) != "" {
		week, err := parseRequestDate(req.WeekStart, "weekStart")
		if err != nil {
			return models.ReportFilter{}, err
		}
		filter.WeekStart = models.WeekStart(week)
	}

	filter.Days = []int{0, 1, 2, 3, 4}
	if req.Days != nil {
		filter.Days = sortedUnique(req.Days, models.ValidDayIndex)
	}
	filter.Laps = []int{1, 2, 3}
	if req.Laps != nil {
		filter.Laps = sortedUnique(req.Laps, models.ValidLapNumber)
	}

	for _, raw := range req.Categories {
		flag := models.CategoryFlag(strings.TrimSpace(raw))
		if flag.Valid() {
			filter.Categories = append(filter.Categories, flag)
		}
	}
	if strings.EqualFold(strings.TrimSpace(req.ViewMode), string(models.ReportViewStudent)) {
		filter.ViewMode = models.ReportViewStudent
	}
	return filter, nil
}

func reportCacheKey(filter models.ReportFilter) string {
	categories := make([]string, len(filter.Categories))
	for i, c := range filter.Categories {
		categories[i] = string(c)
	}
	parts := []string{
		filter.SchoolYearID,
		string(filter.ViewMode),
		models.FormatDate(filter.WeekStart),
		strconv.Itoa(filter.WeeksRange),
		joinInts(filter.Days),
		joinInts(filter.Laps),
		strings.Join(filter.BlockIDs, ","),
		strings.Join(filter.StudentIDs, ","),
		strings.Join(categories, ","),
		strconv.FormatBool(filter.CategoriesMatchAll),
		strings.Join(filter.Standards, ","),
	}
	var builder strings.Builder
	builder.WriteString("reports")
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedUnique(values []int, valid func(int) bool) []int {
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if valid(v) {
			seen[v] = true
		}
	}
	out := make([]int, 0, len(seen))
	for v := 0; v <= 6; v++ {
		if seen[v] {
			out = append(out, v)
		}
	}
	return out
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
