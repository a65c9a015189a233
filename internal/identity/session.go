package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"samaajseva/internal/kv"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
)

// DefaultSessionKey is the record used by single-user callers such as the CLI.
const DefaultSessionKey = "samaajseva_user"

// Session holds the currently authenticated profile and mirrors it to the
// store under its key. The zero profile means nobody is logged in.
type Session struct {
	mu      sync.RWMutex
	store   kv.Store
	key     string
	current *types.Profile
}

func NewSession(store kv.Store, key string) *Session {
	if key == "" {
		key = DefaultSessionKey
	}
	return &Session{store: store, key: key}
}

// Load restores the persisted profile without re-validating credentials. A
// missing or unreadable record leaves the session empty.
func (s *Session) Load(ctx context.Context, logger logrus.FieldLogger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	data, err := s.store.Get(ctx, s.key)
	if errors.Is(err, types.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session %s: %w", s.key, err)
	}

	var profile types.Profile
	if err := json.Unmarshal(data, &profile); err != nil || profile.ID == "" {
		logger.WithError(err).WithField("session_key", s.key).Warn("discarding malformed session record")
		return nil
	}

	s.current = &profile
	return nil
}

func (s *Session) Key() string { return s.key }

// Current returns a copy of the session profile, or nil.
func (s *Session) Current() *types.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	p := *s.current
	p.Badges = append([]string(nil), s.current.Badges...)
	return &p
}

// Require returns the current profile or ErrNotAuthenticated.
func (s *Session) Require() (*types.Profile, error) {
	p := s.Current()
	if p == nil {
		return nil, types.ErrNotAuthenticated
	}
	return p, nil
}

func (s *Session) set(ctx context.Context, profile *types.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := kv.SetJSON(ctx, s.store, s.key, profile); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	p := *profile
	s.current = &p
	return nil
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.store.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
