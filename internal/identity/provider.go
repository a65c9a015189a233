// Package identity resolves registration and login requests to profiles.
// Credential and profile collections live in the key/value store; the
// active profile lives in a Session supplied by the caller.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"samaajseva/internal/kv"
	"samaajseva/internal/utils"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	credentialsKey = "samaajseva_credentials"
	profilesKey    = "samaajseva_profiles"

	StartingImpactScore = 10
	NewcomerBadge       = "Newcomer"
)

var passwordCost = bcrypt.DefaultCost

type Provider struct {
	mu     sync.Mutex
	store  kv.Store
	logger logrus.FieldLogger
	now    func() time.Time
}

func New(store kv.Store, logger logrus.FieldLogger) *Provider {
	return &Provider{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a profile and logs it into sess. Nothing is written when
// the email is already registered.
func (p *Provider) Register(ctx context.Context, sess *Session, name, email, password string, role types.UserRole) (*types.Profile, error) {
	if !role.Valid() {
		return nil, types.ErrInvalidRole
	}

	email = normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	credentials, err := p.credentials(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range credentials {
		if c.Email == email {
			return nil, types.ErrDuplicateAccount
		}
	}

	profiles, err := p.profiles(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &types.Profile{
		ID:          utils.NanoID(),
		Name:        strings.TrimSpace(name),
		Email:       email,
		Role:        role,
		ImpactScore: StartingImpactScore,
		Badges:      []string{NewcomerBadge},
		CreatedAt:   p.now().UTC(),
	}

	credentials = append(credentials, types.Credential{
		UserID:       profile.ID,
		Email:        email,
		PasswordHash: string(hash),
	})
	previous := profiles
	profiles = append(profiles[:len(profiles):len(profiles)], *profile)

	// Profiles go first: a profile without a credential is unreachable,
	// while a credential without a profile would lock the email out.
	if err := kv.SetJSON(ctx, p.store, profilesKey, profiles); err != nil {
		return nil, fmt.Errorf("failed to save profiles: %w", err)
	}
	if err := kv.SetJSON(ctx, p.store, credentialsKey, credentials); err != nil {
		if rbErr := kv.SetJSON(ctx, p.store, profilesKey, previous); rbErr != nil {
			p.logger.WithError(rbErr).WithField("user_id", profile.ID).Error("failed to roll back profile")
		}
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	if err := sess.set(ctx, profile); err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"user_id": profile.ID,
		"role":    profile.Role,
	}).Info("user registered")

	return profile, nil
}

func (p *Provider) Login(ctx context.Context, sess *Session, email, password string) (*types.Profile, error) {
	email = normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	credentials, err := p.credentials(ctx)
	if err != nil {
		return nil, err
	}

	var userID string
	for _, c := range credentials {
		if c.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil {
			userID = c.UserID
			break
		}
	}
	if userID == "" {
		return nil, types.ErrInvalidCredentials
	}

	profiles, err := p.profiles(ctx)
	if err != nil {
		return nil, err
	}

	var profile *types.Profile
	for i := range profiles {
		if profiles[i].ID == userID {
			profile = &profiles[i]
			break
		}
	}
	if profile == nil {
		p.logger.WithFields(logrus.Fields{
			"email":   email,
			"user_id": userID,
		}).Error("credential has no matching profile")
		return nil, types.ErrProfileNotFound
	}

	if err := sess.set(ctx, profile); err != nil {
		return nil, err
	}

	p.logger.WithField("user_id", profile.ID).Info("user logged in")

	return profile, nil
}

func (p *Provider) Logout(ctx context.Context, sess *Session) error {
	if current := sess.Current(); current != nil {
		p.logger.WithField("user_id", current.ID).Info("user logged out")
	}
	return sess.clear(ctx)
}

func (p *Provider) Profile(ctx context.Context, userID string) (*types.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	profiles, err := p.profiles(ctx)
	if err != nil {
		return nil, err
	}

	for i := range profiles {
		if profiles[i].ID == userID {
			return &profiles[i], nil
		}
	}

	return nil, types.ErrProfileNotFound
}

func (p *Provider) credentials(ctx context.Context) ([]types.Credential, error) {
	var out []types.Credential
	err := kv.GetJSON(ctx, p.store, credentialsKey, &out)
	if err != nil && !errors.Is(err, types.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	return out, nil
}

func (p *Provider) profiles(ctx context.Context) ([]types.Profile, error) {
	var out []types.Profile
	err := kv.GetJSON(ctx, p.store, profilesKey, &out)
	if err != nil && !errors.Is(err, types.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return out, nil
}
