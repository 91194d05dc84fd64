package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

func (api *API) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	logger.WithFields(logrus.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	}).Debug("CreatePostHandler called")

	var req CreatePostRequest
	if err := decodeBody(r, &req); err != nil {
		api.respondError(w, "create_post", err, POST_NOT_FOUND)
		return
	}
	if err := req.validate(); err != nil {
		api.respondError(w, "create_post", err, POST_NOT_FOUND)
		return
	}
	visibility, err := req.visibility()
	if err != nil {
		api.respondError(w, "create_post", err, POST_NOT_FOUND)
		return
	}

	post := Post{
		Title:      *req.Title,
		Content:    *req.Content,
		UserID:     *req.UserID,
		Visibility: visibility,
	}
	if err := api.posts.Create(r.Context(), &post); err != nil {
		api.respondError(w, "create_post", err, POST_NOT_FOUND)
		return
	}
	if visibility == VisibilityPublic {
		api.feed.Invalidate(r.Context())
	}

	logger.WithFields(logrus.Fields{
		"post_id":    post.ID,
		"user_id":    post.UserID,
		"visibility": visibility.String(),
	}).Info("Post created successfully")
	api.metrics.PostsCreated.WithLabelValues(visibility.String()).Inc()
	api.metrics.SuccessfulRequests.WithLabelValues("create_post").Inc()
	writeJSON(w, http.StatusCreated, map[string]int64{"post_id": post.ID})
}

func (api *API) UpdatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, POST_NOT_FOUND)
		return
	}
	caller := callerFrom(r.Context())

	var req UpdatePostRequest
	if err := decodeBody(r, &req); err != nil {
		api.respondError(w, "update_post", err, POST_NOT_FOUND)
		return
	}
	if err := req.validate(); err != nil {
		api.respondError(w, "update_post", err, POST_NOT_FOUND)
		return
	}

	if err := api.posts.Update(r.Context(), id, caller, *req.Title, *req.Content); err != nil {
		api.respondError(w, "update_post", err, POST_NOT_FOUND)
		return
	}
	api.feed.Invalidate(r.Context())

	logger.WithFields(logrus.Fields{"post_id": id, "caller": caller}).Info("Post updated successfully")
	api.metrics.SuccessfulRequests.WithLabelValues("update_post").Inc()
	writeMessage(w, http.StatusOK, "Post updated successfully")
}

func (api *API) GetPostHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, POST_NOT_FOUND)
		return
	}

	details, err := api.posts.Get(r.Context(), id, callerFrom(r.Context()))
	if err != nil {
		api.respondError(w, "get_post", err, POST_NOT_FOUND)
		return
	}

	api.metrics.SuccessfulRequests.WithLabelValues("get_post").Inc()
	writeJSON(w, http.StatusOK, details)
}

func (api *API) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, POST_NOT_FOUND)
		return
	}
	caller := callerFrom(r.Context())

	if err := api.posts.Delete(r.Context(), id, caller); err != nil {
		api.respondError(w, "delete_post", err, POST_NOT_FOUND)
		return
	}
	api.feed.Invalidate(r.Context())

	logger.WithFields(logrus.Fields{"post_id": id, "caller": caller}).Info("Post deleted successfully")
	api.metrics.SuccessfulRequests.WithLabelValues("delete_post").Inc()
	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

// ListPostsHandler serves every public post with its like count.
func (api *API) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	posts, generation, ok := api.feed.Get(r.Context())
	if ok {
		api.metrics.SuccessfulRequests.WithLabelValues("list_posts").Inc()
		writeJSON(w, http.StatusOK, posts)
		return
	}

	posts, err := api.posts.ListPublic(r.Context())
	if err != nil {
		api.respondError(w, "list_posts", err, POST_NOT_FOUND)
		return
	}
	api.feed.Set(r.Context(), generation, posts)

	logger.WithField("post_count", len(posts)).Debug("Public posts retrieved successfully")
	api.metrics.SuccessfulRequests.WithLabelValues("list_posts").Inc()
	writeJSON(w, http.StatusOK, posts)
}
