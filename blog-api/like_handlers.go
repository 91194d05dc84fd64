package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

func (api *API) CreateLikeHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateLikeRequest
	if err := decodeBody(r, &req); err != nil {
		api.respondError(w, "create_like", err, POST_NOT_FOUND)
		return
	}
	if err := req.validate(); err != nil {
		api.respondError(w, "create_like", err, POST_NOT_FOUND)
		return
	}

	like := Like{PostID: *req.PostID, UserID: *req.UserID}
	if err := api.likes.Create(r.Context(), &like); err != nil {
		api.respondError(w, "create_like", err, POST_NOT_FOUND)
		return
	}
	api.feed.Invalidate(r.Context())

	logger.WithFields(logrus.Fields{"like_id": like.ID, "post_id": like.PostID, "user_id": like.UserID}).Info("Post liked")
	api.metrics.LikesCreated.WithLabelValues("like").Inc()
	api.metrics.SuccessfulRequests.WithLabelValues("create_like").Inc()
	writeJSON(w, http.StatusCreated, map[string]int64{"like_id": like.ID})
}

// DeleteLikeHandler withdraws all of the caller's likes on a post. It reports
// success even when there was nothing to remove.
func (api *API) DeleteLikeHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "post_id")
	if !ok {
		writeMessage(w, http.StatusNotFound, POST_NOT_FOUND)
		return
	}
	caller := callerFrom(r.Context())

	removed, err := api.likes.Delete(r.Context(), postID, caller)
	if err != nil {
		api.respondError(w, "delete_like", err, POST_NOT_FOUND)
		return
	}
	if removed > 0 {
		api.feed.Invalidate(r.Context())
	}

	logger.WithFields(logrus.Fields{"post_id": postID, "caller": caller, "removed": removed}).Info("Likes withdrawn")
	api.metrics.LikesDeleted.WithLabelValues("unlike").Add(float64(removed))
	api.metrics.SuccessfulRequests.WithLabelValues("delete_like").Inc()
	writeMessage(w, http.StatusOK, "Like deleted successfully")
}
