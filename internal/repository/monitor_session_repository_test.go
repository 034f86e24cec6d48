package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsEmpty(t *testing.T) {
	repo := NewCacheRepository(nil)
	var out map[string]string

	assert.ErrorIs(t, repo.Get(context.Background(), "reports:x", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "reports:x", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "reports:*"))
}

func TestMonitorSessionRepositoryMissTreatedAsAbsent(t *testing.T) {
	repo := NewMonitorSessionRepository(NewCacheRepository(nil))
	key := models.MonitorSessionKey{UserID: "user-1", BlockID: "block-1", Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)}

	state, ok, err := repo.Load(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, state)
}
