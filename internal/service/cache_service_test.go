package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

type memCache struct {
	values map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range c.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.values, key)
		}
	}
	return nil
}

func (c *memCache) Incr(_ context.Context, key string) (int64, error) {
	var n int64
	if raw, ok := c.values[key]; ok {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
	}
	n++
	c.values[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func TestCacheServiceHitMissAndInvalidate(t *testing.T) {
	repo := newMemCache()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out map[string]int
	hit, err := svc.Get(ctx, "reports:trainer-hours:2024-01", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "reports:trainer-hours:2024-01", map[string]int{"a": 1}, 0))
	assert.Equal(t, time.Minute, repo.ttls["reports:trainer-hours:2024-01"])

	hit, err = svc.Get(ctx, "reports:trainer-hours:2024-01", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, out["a"])

	require.NoError(t, svc.Invalidate(ctx, trainerHoursCachePattern))
	assert.NotContains(t, repo.values, "reports:trainer-hours:2024-01")

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 1e-9)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemCache()
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", 1, 0))
	assert.Empty(t, repo.values)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	hit, err := nilSvc.Get(ctx, "k", new(int))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceGetError(t *testing.T) {
	repo := newMemCache()
	repo.getErr = errors.New("redis down")
	svc := NewCacheService(repo, nil, 0, nil, true)

	hit, err := svc.Get(context.Background(), "k", new(int))
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestTrainerHoursCacheKeyMatchesPattern(t *testing.T) {
	key := trainerHoursCacheKey(4, 2024, time.March)
	assert.Equal(t, "reports:trainer-hours:g4:2024-03", key)

	matched, err := path.Match(trainerHoursCachePattern, key)
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = path.Match(trainerHoursCachePattern, generationKey(trainerHoursCachePattern))
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestCacheServiceInvalidateRetiresEarlierGeneration(t *testing.T) {
	repo := newMemCache()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	before, err := svc.Generation(ctx, trainerHoursCachePattern)
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx, trainerHoursCachePattern))

	// a reader that captured the old generation writes after the invalidation
	require.NoError(t, svc.Set(ctx, trainerHoursCacheKey(before, 2024, time.January), map[string]int{"stale": 1}, 0))

	after, err := svc.Generation(ctx, trainerHoursCachePattern)
	require.NoError(t, err)
	assert.Greater(t, after, before)

	var out map[string]int
	hit, err := svc.Get(ctx, trainerHoursCacheKey(after, 2024, time.January), &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceGenerationDisabled(t *testing.T) {
	svc := NewCacheService(newMemCache(), nil, 0, nil, false)
	generation, err := svc.Generation(context.Background(), trainerHoursCachePattern)
	require.NoError(t, err)
	assert.Zero(t, generation)
}
