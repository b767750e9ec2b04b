package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/pillar-academy-api/internal/catalog"
	"github.com/noah-isme/pillar-academy-api/internal/models"
	appErrors "github.com/noah-isme/pillar-academy-api/pkg/errors"
)

type stubCacheBackend struct {
	entries map[string][]byte
	gets    int
	sets    int
	deletes int
}

func newStubCacheBackend() *stubCacheBackend {
	return &stubCacheBackend{entries: map[string][]byte{}}
}

func (s *stubCacheBackend) Get(ctx context.Context, key string, dest interface{}) error {
	s.gets++
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheBackend) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	return nil
}

func (s *stubCacheBackend) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deletes++
	s.entries = map[string][]byte{}
	return nil
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	backend := newStubCacheBackend()
	metrics := NewMetricsService()
	cache := NewCacheService(backend, metrics, time.Minute, zap.NewNop(), true)

	var out string
	hit, err := cache.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(context.Background(), "k", "v", 0))
	hit, err = cache.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", out)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.001)
}

func TestCacheServiceDisabledSkipsBackend(t *testing.T) {
	backend := newStubCacheBackend()
	cache := NewCacheService(backend, nil, 0, nil, false)

	var out string
	hit, err := cache.Get(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, cache.Set(context.Background(), "k", "v", 0))
	require.NoError(t, cache.Invalidate(context.Background(), "k*"))

	assert.Zero(t, backend.gets)
	assert.Zero(t, backend.sets)
	assert.Zero(t, backend.deletes)
}

func TestOverviewSnapshotRecordsCacheMetrics(t *testing.T) {
	backend := newStubCacheBackend()
	metrics := NewMetricsService()
	cache := NewCacheService(backend, metrics, time.Minute, zap.NewNop(), true)
	repo := &mockProgressionRepo{learner: &models.Learner{ID: "l1", ApprovedPillar: 2, SubscriptionTier: models.TierPremium}}
	svc := NewProgressionService(repo, &mockProgressionExams{}, cache, zap.NewNop(), ProgressConfig{CacheEnabled: true, CacheTTL: time.Minute})

	first, cached, err := svc.Overview(context.Background(), "l1")
	require.NoError(t, err)
	assert.False(t, cached)

	second, cached, err := svc.Overview(context.Background(), "l1")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)

	require.NoError(t, svc.CompleteModule(context.Background(), "l1", catalog.Modules(1)[0]))
	assert.Positive(t, backend.deletes)

	_, cached, err = svc.Overview(context.Background(), "l1")
	require.NoError(t, err)
	assert.False(t, cached)
}
