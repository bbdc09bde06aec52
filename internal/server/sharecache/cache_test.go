package sharecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := newRedisCache(fake)

	share := &models.SharedFolder{ID: "s1", FolderID: "d1", ExpiresAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, c.Set(ctx, share, time.Hour))
	assert.Equal(t, time.Hour, fake.ttls[keyPrefix+"s1"])

	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "d1", got.FolderID)
	assert.True(t, share.ExpiresAt.Equal(got.ExpiresAt))
}

func TestRedisCache_Miss(t *testing.T) {
	_, err := newRedisCache(newFakeRedis()).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRedisCache_SkipsExpired(t *testing.T) {
	fake := newFakeRedis()
	c := newRedisCache(fake)

	require.NoError(t, c.Set(context.Background(), &models.SharedFolder{ID: "s1"}, 0))
	assert.Empty(t, fake.data)
}

func TestRedisCache_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := newRedisCache(fake)

	fake.getErr = errors.New("conn refused")
	_, err := c.Get(ctx, "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)

	fake.setErr = errors.New("readonly")
	assert.ErrorContains(t, c.Set(ctx, &models.SharedFolder{ID: "s1"}, time.Minute), "readonly")

	fake.getErr = nil
	fake.data[keyPrefix+"bad"] = "{"
	_, err = c.Get(ctx, "bad")
	assert.ErrorContains(t, err, "decode")
}
