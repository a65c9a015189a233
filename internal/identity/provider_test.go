package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"samaajseva/internal/kv"
	"samaajseva/internal/kv/memory"
	"samaajseva/pkg/types"
)

func init() {
	passwordCost = bcrypt.MinCost
}

func newTestProvider(t *testing.T) (*Provider, *memory.Store) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.New()
	return New(store, logger), store
}

func TestRegisterThenLoginSameProfile(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)
	sess := NewSession(store, "")

	registered, err := p.Register(ctx, sess, "NGO Shanti Seva", "ngo@seva.org", "123", types.UserRoleNGO)
	require.NoError(t, err)
	assert.NotEmpty(t, registered.ID)
	assert.Equal(t, StartingImpactScore, registered.ImpactScore)
	assert.Equal(t, []string{NewcomerBadge}, registered.Badges)
	assert.Equal(t, registered.ID, sess.Current().ID)

	require.NoError(t, p.Logout(ctx, sess))
	assert.Nil(t, sess.Current())

	loggedIn, err := p.Login(ctx, sess, "NGO@seva.org ", "123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, types.UserRoleNGO, loggedIn.Role)
}

func TestRegisterDuplicateDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)
	sess := NewSession(store, "")

	_, err := p.Register(ctx, sess, "Donor Priya", "donor@seva.com", "123", types.UserRoleDonor)
	require.NoError(t, err)

	credsBefore, err := store.Get(ctx, credentialsKey)
	require.NoError(t, err)
	profilesBefore, err := store.Get(ctx, profilesKey)
	require.NoError(t, err)

	other := NewSession(store, "session:other")
	_, err = p.Register(ctx, other, "Someone Else", "donor@seva.com", "456", types.UserRoleNGO)
	assert.ErrorIs(t, err, types.ErrDuplicateAccount)
	assert.Nil(t, other.Current())

	credsAfter, err := store.Get(ctx, credentialsKey)
	require.NoError(t, err)
	profilesAfter, err := store.Get(ctx, profilesKey)
	require.NoError(t, err)

	assert.Equal(t, credsBefore, credsAfter)
	assert.Equal(t, profilesBefore, profilesAfter)
}

func TestRegisterInvalidRole(t *testing.T) {
	p, store := newTestProvider(t)

	_, err := p.Register(context.Background(), NewSession(store, ""), "x", "x@y.z", "pw", "Admin")
	assert.ErrorIs(t, err, types.ErrInvalidRole)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)
	sess := NewSession(store, "")

	_, err := p.Login(ctx, sess, "nobody@seva.org", "123")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)

	_, err = p.Register(ctx, sess, "NGO", "ngo@seva.org", "right", types.UserRoleNGO)
	require.NoError(t, err)
	require.NoError(t, p.Logout(ctx, sess))

	_, err = p.Login(ctx, sess, "ngo@seva.org", "wrong")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)
	assert.Nil(t, sess.Current())
}

func TestLoginProfileNotFound(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)
	sess := NewSession(store, "")

	_, err := p.Register(ctx, sess, "NGO", "ngo@seva.org", "123", types.UserRoleNGO)
	require.NoError(t, err)
	require.NoError(t, kv.SetJSON(ctx, store, profilesKey, []types.Profile{}))
	require.NoError(t, p.Logout(ctx, sess))

	_, err = p.Login(ctx, sess, "ngo@seva.org", "123")
	assert.ErrorIs(t, err, types.ErrProfileNotFound)
	assert.Nil(t, sess.Current())
}

func TestProfileLookup(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)

	registered, err := p.Register(ctx, NewSession(store, ""), "Donor", "d@seva.com", "pw", types.UserRoleDonor)
	require.NoError(t, err)

	got, err := p.Profile(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "d@seva.com", got.Email)

	_, err = p.Profile(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrProfileNotFound)
}

// flakyStore fails the next Set of failKey once.
type flakyStore struct {
	kv.Store
	failKey string
}

var errWriteFailed = errors.New("write failed")

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if key == s.failKey {
		s.failKey = ""
		return errWriteFailed
	}
	return s.Store.Set(ctx, key, value)
}

func TestRegisterRetryAfterFailedWrite(t *testing.T) {
	for _, failKey := range []string{profilesKey, credentialsKey} {
		t.Run(failKey, func(t *testing.T) {
			ctx := context.Background()
			logger, _ := test.NewNullLogger()
			store := &flakyStore{Store: memory.New(), failKey: failKey}
			p := New(store, logger)
			sess := NewSession(store, "")

			_, err := p.Register(ctx, sess, "NGO", "ngo@seva.org", "123", types.UserRoleNGO)
			require.ErrorIs(t, err, errWriteFailed)
			assert.Nil(t, sess.Current())

			_, err = p.Login(ctx, sess, "ngo@seva.org", "123")
			assert.ErrorIs(t, err, types.ErrInvalidCredentials)

			registered, err := p.Register(ctx, sess, "NGO", "ngo@seva.org", "123", types.UserRoleNGO)
			require.NoError(t, err)
			require.NoError(t, p.Logout(ctx, sess))

			loggedIn, err := p.Login(ctx, sess, "ngo@seva.org", "123")
			require.NoError(t, err)
			assert.Equal(t, registered.ID, loggedIn.ID)

			var profiles []types.Profile
			require.NoError(t, kv.GetJSON(ctx, store, profilesKey, &profiles))
			assert.Len(t, profiles, 1)
		})
	}
}
