package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	publicFeedKey           = "posts:public"
	publicFeedGenerationKey = publicFeedKey + ":generation"
)

// FeedCache holds the rendered public post list between mutations.
//
// Get reports the generation current at lookup time and Set stores under
// that generation only, so a list read from the store before an
// invalidation is never served after it.
type FeedCache interface {
	Get(ctx context.Context) ([]PostDetails, int64, bool)
	Set(ctx context.Context, generation int64, posts []PostDetails)
	Invalidate(ctx context.Context)
}

func newFeedCache(cfg RedisConfig) FeedCache {
	if cfg.Addr == "" {
		return noFeedCache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	})
	logger.WithField("addr", cfg.Addr).Info("Caching public posts in Redis")
	return &redisFeedCache{client: client, ttl: cfg.TTL}
}

type noFeedCache struct{}

func (noFeedCache) Get(context.Context) ([]PostDetails, int64, bool) { return nil, 0, false }
func (noFeedCache) Set(context.Context, int64, []PostDetails)        {}
func (noFeedCache) Invalidate(context.Context)                       {}

type redisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func publicFeedGenerationEntry(generation int64) string {
	return fmt.Sprintf("%s:%d", publicFeedKey, generation)
}

// Cache failures are logged and treated as misses; the store stays authoritative.
func (c *redisFeedCache) Get(ctx context.Context) ([]PostDetails, int64, bool) {
	generation, err := c.client.Get(ctx, publicFeedGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.WithError(err).Warn("Failed to read public posts generation from cache")
		return nil, 0, false
	}

	data, err := c.client.Get(ctx, publicFeedGenerationEntry(generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false
	}
	if err != nil {
		logger.WithError(err).Warn("Failed to read public posts from cache")
		return nil, generation, false
	}
	var posts []PostDetails
	if err := json.Unmarshal(data, &posts); err != nil {
		logger.WithError(err).Warn("Discarding malformed cached posts")
		return nil, generation, false
	}
	return posts, generation, true
}

func (c *redisFeedCache) Set(ctx context.Context, generation int64, posts []PostDetails) {
	data, err := json.Marshal(posts)
	if err != nil {
		logger.WithError(err).Warn("Failed to encode public posts for cache")
		return
	}
	if err := c.client.Set(ctx, publicFeedGenerationEntry(generation), data, c.ttl).Err(); err != nil {
		logger.WithError(err).Warn("Failed to cache public posts")
	}
}

// Invalidate moves readers to a fresh generation. The previous entry is
// dropped too; a late Set for it only leaves an orphan that expires.
func (c *redisFeedCache) Invalidate(ctx context.Context) {
	generation, err := c.client.Incr(ctx, publicFeedGenerationKey).Result()
	if err != nil {
		logger.WithError(err).Warn("Failed to invalidate cached public posts")
		return
	}
	if err := c.client.Del(ctx, publicFeedGenerationEntry(generation-1)).Err(); err != nil {
		logger.WithError(err).Warn("Failed to drop superseded public posts")
	}
}

func (c *redisFeedCache) Close() error {
	return c.client.Close()
}
