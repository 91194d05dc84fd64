package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryFeedCache records how the handlers use the feed cache.
type memoryFeedCache struct {
	mu          sync.Mutex
	posts       []PostDetails
	cached      bool
	invalidated int
}

func (c *memoryFeedCache) Get(context.Context) ([]PostDetails, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.posts, int64(c.invalidated), c.cached
}

func (c *memoryFeedCache) Set(_ context.Context, generation int64, posts []PostDetails) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != int64(c.invalidated) {
		return
	}
	c.posts, c.cached = posts, true
}

func (c *memoryFeedCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts, c.cached = nil, false
	c.invalidated++
}

type testServer struct {
	t       *testing.T
	api     *API
	handler http.Handler
	feed    *memoryFeedCache
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, DefaultConfig())
}

// newTestServerWithConfig opens a fresh SQLite file for every test.
func newTestServerWithConfig(t *testing.T, cfg Config) *testServer {
	t.Helper()
	logger.SetOutput(io.Discard)

	cfg.Database.Path = filepath.Join(t.TempDir(), "blog.db")
	db, err := connectDB(cfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { closeDB(db) })
	require.NoError(t, initDB(db))

	api, err := NewAPI(db, cfg, prometheus.NewRegistry())
	require.NoError(t, err)
	api.passwordCost = bcrypt.MinCost
	feed := &memoryFeedCache{}
	api.feed = feed

	return &testServer{t: t, api: api, handler: api.Router(), feed: feed}
}

func (ts *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func as(caller int64) map[string]string {
	return map[string]string{"Authorization": strconv.FormatInt(caller, 10)}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func (ts *testServer) createUser(username string) int64 {
	ts.t.Helper()
	rec := ts.do("POST", "/api/user", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "default",
	}, nil)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]int64](ts.t, rec)["user_id"]
}

func (ts *testServer) createPost(owner int64, title string, private interface{}) int64 {
	ts.t.Helper()
	rec := ts.do("POST", "/api/post", map[string]interface{}{
		"title":   title,
		"content": "content of " + title,
		"user_id": owner,
		"private": private,
	}, nil)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]int64](ts.t, rec)["post_id"]
}

func (ts *testServer) like(postID, userID int64) int64 {
	ts.t.Helper()
	rec := ts.do("POST", "/api/like", map[string]int64{"post_id": postID, "user_id": userID}, nil)
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]int64](ts.t, rec)["like_id"]
}

func (ts *testServer) getPost(id, caller int64) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.do("GET", "/api/post/"+strconv.FormatInt(id, 10), nil, as(caller))
}
