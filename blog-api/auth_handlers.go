package main

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// LoginHandler checks a user's password and hands out whatever credentials
// are configured: a signed token, a session cookie, or both.
func (api *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	logger.WithFields(logrus.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	}).Debug("LoginHandler called")

	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		api.respondError(w, "post_login", err, USER_NOT_FOUND)
		return
	}
	if err := req.validate(); err != nil {
		api.respondError(w, "post_login", err, USER_NOT_FOUND)
		return
	}

	user, err := api.users.Credentials(r.Context(), *req.UserID)
	if errors.Is(err, ErrNotFound) {
		logger.WithField("user_id", *req.UserID).Warn("Invalid login credentials")
		api.metrics.BadRequests.WithLabelValues("post_login").Inc()
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		api.respondError(w, "post_login", err, USER_NOT_FOUND)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*req.Password)); err != nil {
		logger.WithField("user_id", user.ID).Warn("Invalid password attempt")
		api.metrics.BadRequests.WithLabelValues("post_login").Inc()
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	resp := LoginResponse{UserID: user.ID}
	if api.tokens != nil {
		token, err := api.tokens.Issue(user.ID)
		if err != nil {
			api.respondError(w, "post_login", err, USER_NOT_FOUND)
			return
		}
		resp.Token = token
	}
	if api.sessions != nil {
		// A stale or foreign cookie is replaced rather than rejected.
		session, _ := api.sessions.Get(r, sessionName)
		session.Values[sessionUserKey] = user.ID
		if err := session.Save(r, w); err != nil {
			api.respondError(w, "post_login", err, USER_NOT_FOUND)
			return
		}
	}

	logger.WithField("user_id", user.ID).Info("User logged in successfully")
	api.metrics.SuccessfulRequests.WithLabelValues("post_login").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (api *API) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if api.sessions != nil {
		session, _ := api.sessions.Get(r, sessionName)
		delete(session.Values, sessionUserKey)
		session.Options.MaxAge = -1
		if err := session.Save(r, w); err != nil {
			api.respondError(w, "post_logout", err, USER_NOT_FOUND)
			return
		}
	}

	api.metrics.SuccessfulRequests.WithLabelValues("post_logout").Inc()
	writeMessage(w, http.StatusOK, "You were logged out")
}
