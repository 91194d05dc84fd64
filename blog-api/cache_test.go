package main

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTestCache(t *testing.T) (*redisFeedCache, *miniredis.Miniredis) {
	t.Helper()
	logger.SetOutput(io.Discard)
	mr := miniredis.RunT(t)
	cache, ok := newFeedCache(RedisConfig{Addr: mr.Addr(), TTL: 30 * time.Second}).(*redisFeedCache)
	require.True(t, ok)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestRedisFeedCacheRoundTrip(t *testing.T) {
	cache, mr := newRedisTestCache(t)
	ctx := context.Background()

	_, generation, ok := cache.Get(ctx)
	require.False(t, ok)
	assert.Equal(t, int64(0), generation)

	posts := []PostDetails{{ID: 1, Title: "t", Content: "c", UserID: 2, NumLikes: 3}}
	cache.Set(ctx, generation, posts)

	cached, _, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, posts, cached)

	assert.True(t, mr.Exists("posts:public:0"))
	assert.Equal(t, 30*time.Second, mr.TTL("posts:public:0"))

	mr.FastForward(31 * time.Second)
	_, _, ok = cache.Get(ctx)
	assert.False(t, ok)
}

func TestRedisFeedCacheInvalidate(t *testing.T) {
	cache, mr := newRedisTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, 0, []PostDetails{{ID: 1}})
	cache.Invalidate(ctx)

	_, generation, ok := cache.Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, int64(1), generation)
	assert.False(t, mr.Exists("posts:public:0"))

	stored, err := mr.Get("posts:public:generation")
	require.NoError(t, err)
	assert.Equal(t, "1", stored)
}

func TestRedisFeedCacheDropsListReadBeforeInvalidate(t *testing.T) {
	cache, _ := newRedisTestCache(t)
	ctx := context.Background()

	_, generation, ok := cache.Get(ctx)
	require.False(t, ok)

	// A mutation lands while the list is being read from the store.
	cache.Invalidate(ctx)
	cache.Set(ctx, generation, []PostDetails{{ID: 1, NumLikes: 0}})

	_, current, ok := cache.Get(ctx)
	assert.False(t, ok)
	assert.Equal(t, generation+1, current)
}

func TestRedisFeedCacheDiscardsMalformedEntry(t *testing.T) {
	cache, mr := newRedisTestCache(t)
	require.NoError(t, mr.Set("posts:public:0", "not json"))

	cached, _, ok := cache.Get(context.Background())
	assert.False(t, ok)
	assert.Nil(t, cached)
}

func TestRedisFeedCacheUnreachableIsAMiss(t *testing.T) {
	cache, mr := newRedisTestCache(t)
	ctx := context.Background()
	cache.Set(ctx, 0, []PostDetails{{ID: 1}})
	mr.Close()

	cached, _, ok := cache.Get(ctx)
	assert.False(t, ok)
	assert.Nil(t, cached)

	assert.NotPanics(t, func() {
		cache.Set(ctx, 0, []PostDetails{{ID: 2}})
		cache.Invalidate(ctx)
	})
}

func TestListPublicPostsThroughRedis(t *testing.T) {
	ts := newTestServer(t)
	cache, _ := newRedisTestCache(t)
	ts.api.feed = cache

	owner := ts.createUser("owner")
	id := ts.createPost(owner, "first", 1)

	posts := decode[[]PostDetails](t, ts.do("GET", "/api/posts", nil, nil))
	require.Len(t, posts, 1)
	assert.Equal(t, int64(0), posts[0].NumLikes)

	_, _, ok := cache.Get(context.Background())
	require.True(t, ok)

	ts.like(id, owner)
	posts = decode[[]PostDetails](t, ts.do("GET", "/api/posts", nil, nil))
	require.Len(t, posts, 1)
	assert.Equal(t, int64(1), posts[0].NumLikes)

	// The store stays authoritative once Redis goes away.
	require.NoError(t, cache.client.Close())
	rec := ts.do("GET", "/api/posts", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
