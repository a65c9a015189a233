package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"samaajseva/internal/identity"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeySession contextKey = "session"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth resolves the session cookie to a logged in profile and adds
// the session to the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFromRequest(r)
		if err != nil {
			s.logger.WithError(err).Debug("no usable session cookie")
			s.writeError(w, http.StatusUnauthorized, types.ErrNotAuthenticated)
			return
		}

		if err := sess.Load(r.Context(), s.logger); err != nil {
			s.logger.WithError(err).Error("failed to load session")
			s.internalServerError(w)
			return
		}

		profile := sess.Current()
		if profile == nil {
			s.clearSessionCookie(w)
			s.writeError(w, http.StatusUnauthorized, types.ErrNotAuthenticated)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": profile.ID,
			"role":    profile.Role,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole must run after RequireAuth.
func (s *Service) RequireRole(role types.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, err := s.profileFromContext(r.Context())
			if err != nil {
				s.writeError(w, http.StatusUnauthorized, err)
				return
			}
			if profile.Role != role {
				s.writeError(w, http.StatusForbidden, types.ErrForbiddenRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) sessionFromContext(ctx context.Context) (*identity.Session, error) {
	sess, ok := ctx.Value(contextKeySession).(*identity.Session)
	if !ok {
		return nil, types.ErrNotAuthenticated
	}
	return sess, nil
}

func (s *Service) profileFromContext(ctx context.Context) (*types.Profile, error) {
	sess, err := s.sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return sess.Require()
}
