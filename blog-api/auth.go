package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
)

const sessionName = "blog-session"
const sessionUserKey = "user_id"

// anonymous is the identity of a caller that presented no credentials. It never
// matches a real owner because ids start at 1.
const anonymous int64 = 0

var errInvalidCredentials = errors.New("invalid credentials")

// IdentityResolver works out which user is making a request.
type IdentityResolver interface {
	Resolve(r *http.Request) (int64, error)
}

// headerIdentity trusts the Authorization header as a bare user id. Absent
// or non-numeric values resolve to anonymous.
type headerIdentity struct{}

func (headerIdentity) Resolve(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get("Authorization")), 10, 64)
	if err != nil {
		return anonymous, nil
	}
	return id, nil
}

// tokenIdentity expects "Authorization: Bearer <jwt>".
type tokenIdentity struct {
	tokens *TokenIssuer
}

func (ti tokenIdentity) Resolve(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return anonymous, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return anonymous, errInvalidCredentials
	}
	return ti.tokens.Parse(raw)
}

type sessionIdentity struct {
	store sessions.Store
}

func (si sessionIdentity) Resolve(r *http.Request) (int64, error) {
	session, err := si.store.Get(r, sessionName)
	if err != nil {
		return anonymous, fmt.Errorf("%w: %v", errInvalidCredentials, err)
	}
	id, ok := session.Values[sessionUserKey].(int64)
	if !ok {
		return anonymous, nil
	}
	return id, nil
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (ti *TokenIssuer) Issue(userID int64) (string, error) {
	now := ti.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
}

func (ti *TokenIssuer) Parse(raw string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return anonymous, fmt.Errorf("%w: %v", errInvalidCredentials, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return anonymous, fmt.Errorf("%w: bad subject %q", errInvalidCredentials, claims.Subject)
	}
	return id, nil
}

func newSessionStore(key string, maxAge time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return store
}

type callerKey struct{}

// withIdentity resolves the caller before running next; unusable credentials
// stop the request with 401.
func (api *API) withIdentity(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := api.identity.Resolve(r)
		if err != nil {
			logger.WithError(err).Warn("Rejected caller credentials")
			api.metrics.BadRequests.WithLabelValues("identity").Inc()
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	})
}

func callerFrom(ctx context.Context) int64 {
	if id, ok := ctx.Value(callerKey{}).(int64); ok {
		return id
	}
	return anonymous
}
