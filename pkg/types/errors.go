package types

import "errors"

var (
	ErrDuplicateAccount   = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials or user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidRole        = errors.New("role must be NGO or Donor")
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrForbiddenRole      = errors.New("action not allowed for this role")
	ErrSubmissionInFlight = errors.New("a request submission is already in progress")
	ErrKeyNotFound        = errors.New("key not found")
)

var (
	ErrInvalidAmount    = errors.New("commitment amount must be a non-negative number")
	ErrAlreadyCommitted = errors.New("already committed to this need")
)
