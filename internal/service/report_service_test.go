package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-monitor-api/internal/dto"
	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

type reportRepoStub struct {
	data   models.ReportData
	err    error
	loads  int
	filter models.ReportFilter
}

func (r *reportRepoStub) Load(ctx context.Context, filter models.ReportFilter) (*models.ReportData, error) {
	r.loads++
	r.filter = filter
	if r.err != nil {
		return nil, r.err
	}
	data := r.data
	return &data, nil
}

type memoryCache struct {
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
		}
	}
	return nil
}

func newReportFixture(repo *reportRepoStub, cache *memoryCache) *ReportService {
	var cacheSvc *CacheService
	if cache != nil {
		cacheSvc = NewCacheService(cache, nil, time.Minute, zap.NewNop(), true)
	}
	svc := NewReportService(repo, &fakeYears{year: models.SchoolYear{ID: "year-1"}}, nil, cacheSvc, nil, zap.NewNop())
	svc.now = func() time.Time { return reportWeek.AddDate(0, 0, 3) }
	return svc
}

func TestReportServiceRunSortsAndScopesToYear(t *testing.T) {
	repo := &reportRepoStub{data: classReportData()}
	svc := newReportFixture(repo, nil)

	result, err := svc.Run(context.Background(), "user-1", dto.ReportRequest{
		Blocks: []string{"block-1", "block-2"},
		Sort:   "student",
		Order:  SortDescending,
	})
	require.NoError(t, err)
	assert.Equal(t, "year-1", repo.filter.SchoolYearID)
	assert.Equal(t, "2025-01-06", models.FormatDate(repo.filter.WeekStart))
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Ben", result.Rows[0]["student"])
}

func TestReportServiceValidatesBeforeLoading(t *testing.T) {
	repo := &reportRepoStub{}
	svc := newReportFixture(repo, nil)

	_, err := svc.Run(context.Background(), "user-1", dto.ReportRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrNoBlocks))

	_, err = svc.Run(context.Background(), "user-1", dto.ReportRequest{Blocks: []string{"block-1"}, ViewMode: "student"})
	assert.True(t, errors.Is(err, appErrors.ErrSelectOneStudent))
	assert.Zero(t, repo.loads)
}

func TestReportServiceWrapsLoadFailure(t *testing.T) {
	svc := newReportFixture(&reportRepoStub{err: errors.New("db down")}, nil)

	_, err := svc.Run(context.Background(), "user-1", dto.ReportRequest{Blocks: []string{"block-1"}})
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestReportServiceCachesUntilInvalidated(t *testing.T) {
	repo := &reportRepoStub{data: classReportData()}
	cache := newMemoryCache()
	svc := newReportFixture(repo, cache)
	req := dto.ReportRequest{Blocks: []string{"block-1"}}

	first, err := svc.Run(context.Background(), "user-1", req)
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.loads)
	assert.Equal(t, first.Rows, second.Rows)

	NewCacheService(cache, nil, time.Minute, nil, true).Invalidate(context.Background(), reportCachePattern)
	_, err = svc.Run(context.Background(), "user-1", req)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.loads)
}

func TestReportServiceExport(t *testing.T) {
	svc := newReportFixture(&reportRepoStub{data: classReportData()}, nil)
	req := dto.ReportRequest{Blocks: []string{"block-1"}}

	file, err := svc.Export(context.Background(), "user-1", req, "")
	require.NoError(t, err)
	assert.Equal(t, "academic-monitor-report.csv", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Payload), "student,2025-01-06 Lap 1"))

	file, err = svc.Export(context.Background(), "user-1", req, "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "academic-monitor-report.xlsx", file.Filename)
	assert.NotEmpty(t, file.Payload)

	_, err = svc.Export(context.Background(), "user-1", req, "docx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
