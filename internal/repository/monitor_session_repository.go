package repository

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

// MonitorSessionRepository keeps monitor screen state in Redis so any API instance can serve the next tap.
type MonitorSessionRepository struct {
	cache *CacheRepository
}

// NewMonitorSessionRepository constructs a Redis-backed session store.
func NewMonitorSessionRepository(cache *CacheRepository) *MonitorSessionRepository {
	return &MonitorSessionRepository{cache: cache}
}

// Load returns the stored state, or ok=false when none exists.
func (r *MonitorSessionRepository) Load(ctx context.Context, key models.MonitorSessionKey) (*models.MonitorState, bool, error) {
	var state models.MonitorState
	if err := r.cache.Get(ctx, key.String(), &state); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &state, true, nil
}

// Save stores the state with the TTL.
func (r *MonitorSessionRepository) Save(ctx context.Context, key models.MonitorSessionKey, state *models.MonitorState, ttl time.Duration) error {
	return r.cache.Set(ctx, key.String(), state, ttl)
}
