// Package sharecache keeps share records in Redis so anonymous share traffic
// does not hit the metadata store for every request. Records never change
// after creation, so entries simply live until the share expires.
package sharecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "gophdrive:share:"

// client is the part of redis.Cmdable used here.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

type RedisCache struct {
	rc client
}

// NewRedisCache connects to Redis. The connection is checked with a ping so a
// misconfigured cache fails at startup rather than on the first share hit.
func NewRedisCache(ctx context.Context, opts Options) (*RedisCache, *redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return &RedisCache{rc: rc}, rc, nil
}

func newRedisCache(rc client) *RedisCache { return &RedisCache{rc: rc} }

// Get returns the cached share or common.ErrorNotFound on a miss.
func (c *RedisCache) Get(ctx context.Context, id string) (*models.SharedFolder, error) {
	b, err := c.rc.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	s := &models.SharedFolder{}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("decode cached share: %w", err)
	}
	return s, nil
}

// Set stores share until ttl elapses. A non-positive ttl is a no-op.
func (c *RedisCache) Set(ctx context.Context, share *models.SharedFolder, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(share)
	if err != nil {
		return fmt.Errorf("encode share: %w", err)
	}
	if err := c.rc.Set(ctx, keyPrefix+share.ID, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
