package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"samaajseva/internal/identity"
	"samaajseva/internal/kv"
	"samaajseva/internal/ledger"
	"samaajseva/internal/metrics"
	"samaajseva/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger  *logrus.Logger
	config  *types.Config
	store   kv.Store
	users   *identity.Provider
	ledger  *ledger.Ledger
	intake  *ledger.Intake
	metrics *metrics.Metrics

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	store kv.Store,
	users *identity.Provider,
	ledger *ledger.Ledger,
	intake *ledger.Intake,
	metrics *metrics.Metrics,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := cookieKey(config.CookieHashKey, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_HASH_KEY: %w", err)
	}
	blockKey, err := cookieKey(config.CookieBlockKey, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_BLOCK_KEY: %w", err)
	}
	if config.CookieHashKey == "" || config.CookieBlockKey == "" {
		logger.Warn("cookie keys not configured, sessions will not survive a restart")
	}

	cookie := securecookie.New(hashKey, blockKey)
	cookie.MaxAge(config.SessionMaxAgeSec)

	s := &Service{
		logger:  logger,
		config:  config,
		store:   store,
		users:   users,
		ledger:  ledger,
		intake:  intake,
		metrics: metrics,
		cookie:  cookie,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

// cookieKey decodes a base64 key, generating a random one when unset.
func cookieKey(encoded string, size int) ([]byte, error) {
	if encoded == "" {
		return securecookie.GenerateRandomKey(size), nil
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler(), http.MethodGet)

	r.HandleFunc("/api/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/api/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/api/needs", s.handleListNeeds, http.MethodGet)
	r.HandleFunc("/api/needs/:id", s.handleGetNeed, http.MethodGet)
	r.HandleFunc("/api/profiles/:id", s.handleGetProfile, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/logout", s.handlePostLogout, http.MethodPost)
		r.HandleFunc("/api/session", s.handleGetSession, http.MethodGet)
		r.HandleFunc("/api/dashboard", s.handleGetDashboard, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.UserRoleNGO))
			r.HandleFunc("/api/needs", s.handleCreateNeed, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.UserRoleDonor))
			r.HandleFunc("/api/needs/:id/commit", s.handleCommitToNeed, http.MethodPost)
			r.HandleFunc("/api/commitments", s.handleListCommitments, http.MethodGet)
		})
	})
}
