package server

import (
	"errors"
	"fmt"
	"net/http"

	"samaajseva/internal/identity"
	"samaajseva/internal/utils"
	"samaajseva/pkg/types"
)

const sessionKeyPrefix = "session:"

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var req loginRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	sid := utils.SessionID()
	sess := identity.NewSession(s.store, sessionKeyPrefix+sid)

	profile, err := s.users.Login(ctx, sess, req.Email, req.Password)
	switch {
	case errors.Is(err, types.ErrInvalidCredentials), errors.Is(err, types.ErrProfileNotFound):
		s.writeError(w, http.StatusUnauthorized, err)
		return
	case err != nil:
		s.logger.WithError(err).Error("failed to login user")
		s.internalServerError(w)
		return
	}

	if err := s.setSessionCookie(w, sid); err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFromContext(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	if err := s.users.Logout(r.Context(), sess); err != nil {
		s.logger.WithError(err).Error("failed to logout user")
		s.internalServerError(w)
		return
	}

	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleGetSession(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profileFromContext(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Service) sessionFromRequest(r *http.Request) (*identity.Session, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return nil, err
	}

	var sid string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &sid); err != nil {
		return nil, fmt.Errorf("failed to decode session cookie: %w", err)
	}

	return identity.NewSession(s.store, sessionKeyPrefix+sid), nil
}

func (s *Service) setSessionCookie(w http.ResponseWriter, sid string) error {
	encoded, err := s.cookie.Encode(s.config.CookieName, sid)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})
	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
