package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const USER_NOT_FOUND = "User not found"
const POST_NOT_FOUND = "Post not found"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeBody reads a JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequestError{msg: "Invalid request body: " + err.Error()}
	}
	return nil
}

// pathID reads a numeric route variable. Routes only match digits, so a parse
// failure means the value overflowed.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// respondError maps a handler failure to its status code and counts it.
func (api *API) respondError(w http.ResponseWriter, label string, err error, notFound string) {
	var badRequest badRequestError
	switch {
	case errors.As(err, &badRequest):
		logger.WithField("reason", badRequest.msg).Warn("Rejected request")
		api.metrics.BadRequests.WithLabelValues(label).Inc()
		writeMessage(w, http.StatusBadRequest, badRequest.msg)
	case errors.Is(err, ErrDanglingReference):
		logger.WithError(err).Warn("Referenced row not found")
		api.metrics.BadRequests.WithLabelValues(label).Inc()
		writeMessage(w, http.StatusNotFound, "Referenced user or post not found")
	case errors.Is(err, ErrNotFound):
		logger.WithError(err).Warn(notFound)
		api.metrics.BadRequests.WithLabelValues(label).Inc()
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, ErrForbidden):
		logger.WithError(err).Warn("Caller does not own the resource")
		api.metrics.BadRequests.WithLabelValues(label).Inc()
		w.WriteHeader(http.StatusForbidden)
	default:
		logger.WithFields(logrus.Fields{"error": err.Error(), "handler": label}).Error("Store failure")
		api.metrics.FailedRequests.WithLabelValues(label).Inc()
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
