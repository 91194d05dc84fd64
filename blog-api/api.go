package main

import (
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type API struct {
	users *UserRepo
	posts *PostRepo
	likes *LikeRepo

	feed     FeedCache
	identity IdentityResolver
	tokens   *TokenIssuer
	sessions sessions.Store

	metrics      *Metrics
	registry     *prometheus.Registry
	passwordCost int
}

// NewAPI wires the repositories over db and picks the identity resolver for
// cfg.Auth.Mode. Metrics are registered on registry and served from it.
func NewAPI(db *gorm.DB, cfg Config, registry *prometheus.Registry) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	api := &API{
		users:        NewUserRepo(db),
		posts:        NewPostRepo(db),
		likes:        NewLikeRepo(db),
		feed:         newFeedCache(cfg.Redis),
		metrics:      InitMetrics(registry),
		registry:     registry,
		passwordCost: bcrypt.DefaultCost,
	}

	if cfg.Auth.JWTSecret != "" {
		api.tokens = NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}
	if cfg.Auth.SessionKey != "" {
		api.sessions = newSessionStore(cfg.Auth.SessionKey, cfg.Auth.TokenTTL)
	}

	switch cfg.Auth.Mode {
	case AuthModeToken:
		api.identity = tokenIdentity{tokens: api.tokens}
	case AuthModeSession:
		api.identity = sessionIdentity{store: api.sessions}
	default:
		api.identity = headerIdentity{}
	}

	return api, nil
}

func (api *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogging)

	r.Handle("/metrics", promhttp.HandlerFor(api.registry, promhttp.HandlerOpts{}))

	r.HandleFunc("/api/user", api.CreateUserHandler).Methods("POST")
	r.HandleFunc("/api/user/{id:[0-9]+}", api.UpdateUserHandler).Methods("PUT")
	r.HandleFunc("/api/user/{id:[0-9]+}", api.GetUserHandler).Methods("GET")
	r.HandleFunc("/api/user/{id:[0-9]+}", api.DeleteUserHandler).Methods("DELETE")

	r.HandleFunc("/api/post", api.CreatePostHandler).Methods("POST")
	r.Handle("/api/post/{id:[0-9]+}", api.withIdentity(api.UpdatePostHandler)).Methods("PUT")
	r.Handle("/api/post/{id:[0-9]+}", api.withIdentity(api.GetPostHandler)).Methods("GET")
	r.Handle("/api/post/{id:[0-9]+}", api.withIdentity(api.DeletePostHandler)).Methods("DELETE")
	r.HandleFunc("/api/posts", api.ListPostsHandler).Methods("GET")

	r.HandleFunc("/api/like", api.CreateLikeHandler).Methods("POST")
	r.Handle("/api/like/{post_id:[0-9]+}", api.withIdentity(api.DeleteLikeHandler)).Methods("DELETE")

	r.HandleFunc("/api/login", api.LoginHandler).Methods("POST")
	r.HandleFunc("/api/logout", api.LogoutHandler).Methods("POST")

	return r
}
