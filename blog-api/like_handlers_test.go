package main

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeTwiceThenUnlike(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.createUser("owner")
	fan := ts.createUser("fan")
	post := ts.createPost(owner, "popular", 1)

	first := ts.like(post, fan)
	second := ts.like(post, fan)
	assert.NotEqual(t, first, second)
	ts.like(post, owner)

	assert.Equal(t, int64(3), decode[PostDetails](t, ts.getPost(post, fan)).NumLikes)

	rec := ts.do("DELETE", "/api/like/"+strconv.FormatInt(post, 10), nil, as(fan))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Like deleted successfully", decode[map[string]string](t, rec)["message"])

	assert.Equal(t, int64(1), decode[PostDetails](t, ts.getPost(post, fan)).NumLikes)
	assert.Equal(t, 2.0, testutil.ToFloat64(ts.api.metrics.LikesDeleted.WithLabelValues("unlike")))
}

func TestUnlikeWithoutLikesSucceeds(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("DELETE", "/api/like/77", nil, as(5))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do("DELETE", "/api/like/77", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLikeValidation(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.createUser("owner")
	post := ts.createPost(owner, "p", 1)

	rec := ts.do("POST", "/api/like", map[string]int64{"post_id": post}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do("POST", "/api/like", map[string]int64{"post_id": post + 100, "user_id": owner}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do("POST", "/api/like", map[string]int64{"post_id": post, "user_id": owner + 100}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikeOnOwnerOnlyPostIsCountedForOwner(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.createUser("owner")
	fan := ts.createUser("fan")
	post := ts.createPost(owner, "secret", 0)

	ts.like(post, fan)

	assert.Equal(t, http.StatusNotFound, ts.getPost(post, fan).Code)
	assert.Equal(t, int64(1), decode[PostDetails](t, ts.getPost(post, owner)).NumLikes)
}
