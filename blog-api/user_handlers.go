package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func (api *API) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	logger.WithFields(logrus.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	}).Debug("CreateUserHandler called")

	var req CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		api.respondError(w, "create_user", err, USER_NOT_FOUND)
		return
	}
	if err := req.validate(); err != nil {
		api.respondError(w, "create_user", err, USER_NOT_FOUND)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), api.passwordCost)
	if err != nil {
		api.respondError(w, "create_user", err, USER_NOT_FOUND)
		return
	}

	user := User{Username: *req.Username, Email: *req.Email, Password: string(hash)}
	if err := api.users.Create(r.Context(), &user); err != nil {
		api.respondError(w, "create_user", err, USER_NOT_FOUND)
		return
	}

	logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User created successfully")
	api.metrics.SuccessfulRequests.WithLabelValues("create_user").Inc()
	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": user.ID})
}

func (api *API) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, USER_NOT_FOUND)
		return
	}

	var req UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		api.respondError(w, "update_user", err, USER_NOT_FOUND)
		return
	}
	if err := req.validate(); err != nil {
		api.respondError(w, "update_user", err, USER_NOT_FOUND)
		return
	}

	if err := api.users.Update(r.Context(), id, *req.Username, *req.Email); err != nil {
		api.respondError(w, "update_user", err, USER_NOT_FOUND)
		return
	}

	logger.WithField("user_id", id).Info("User updated successfully")
	api.metrics.SuccessfulRequests.WithLabelValues("update_user").Inc()
	writeMessage(w, http.StatusOK, "User updated successfully")
}

func (api *API) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, USER_NOT_FOUND)
		return
	}

	details, err := api.users.Get(r.Context(), id)
	if err != nil {
		api.respondError(w, "get_user", err, USER_NOT_FOUND)
		return
	}

	api.metrics.SuccessfulRequests.WithLabelValues("get_user").Inc()
	writeJSON(w, http.StatusOK, details)
}

func (api *API) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeMessage(w, http.StatusNotFound, USER_NOT_FOUND)
		return
	}

	if err := api.users.Delete(r.Context(), id); err != nil {
		api.respondError(w, "delete_user", err, USER_NOT_FOUND)
		return
	}
	// The user's posts and likes are gone too.
	api.feed.Invalidate(r.Context())

	logger.WithField("user_id", id).Info("User deleted successfully")
	api.metrics.SuccessfulRequests.WithLabelValues("delete_user").Inc()
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
