package server

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"samaajseva/internal/identity"
	"samaajseva/internal/utils"
	"samaajseva/pkg/types"
)

type registerRequest struct {
	Name     string         `json:"name" form:"name"`
	Email    string         `json:"email" form:"email"`
	Password string         `json:"password" form:"password"`
	Role     types.UserRole `json:"role" form:"role"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	var req registerRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if fieldErrors := validateRegisterInput(req); len(fieldErrors) > 0 {
		s.logger.WithField("field_errors", fieldErrors).Info("validation errors during registration")
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       "Please fix the highlighted fields.",
			FieldErrors: fieldErrors,
		})
		return
	}

	sid := utils.SessionID()
	sess := identity.NewSession(s.store, sessionKeyPrefix+sid)

	profile, err := s.users.Register(ctx, sess, strings.TrimSpace(req.Name), req.Email, req.Password, req.Role)
	switch {
	case errors.Is(err, types.ErrDuplicateAccount):
		s.writeJSON(w, http.StatusConflict, errorResponse{
			Error:       err.Error(),
			FieldErrors: map[string]string{"email": "An account with this email already exists."},
		})
		return
	case errors.Is(err, types.ErrInvalidRole):
		s.writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.logger.WithError(err).Error("failed to register user")
		s.internalServerError(w)
		return
	}

	if err := s.setSessionCookie(w, sid); err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusCreated, profile)
}

func validateRegisterInput(req registerRequest) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required."
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if req.Password == "" {
		errs["password"] = "Password is required."
	}

	if !req.Role.Valid() {
		errs["role"] = "Role must be NGO or Donor."
	}

	return errs
}
