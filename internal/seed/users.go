package seed

import (
	"context"
	"errors"
	"fmt"

	"samaajseva/internal/identity"
	"samaajseva/internal/kv"
	"samaajseva/pkg/types"

	"github.com/sirupsen/logrus"
)

// seedSessionKey keeps seeding from touching the CLI's logged in user.
const seedSessionKey = "samaajseva_seed"

type fakeUserSeed struct {
	Name     string
	Email    string
	Password string
	Role     types.UserRole
}

var (
	DemoNGO   = fakeUserSeed{Name: "NGO Shanti Seva", Email: "ngo@seva.org", Password: "123", Role: types.UserRoleNGO}
	DemoDonor = fakeUserSeed{Name: "Donor Priya", Email: "donor@seva.com", Password: "123", Role: types.UserRoleDonor}
)

var fakeUsers = []fakeUserSeed{DemoNGO, DemoDonor}

// SeedFakeUsers registers the demo accounts, or logs them in when they exist
// already, and returns their profiles keyed by email.
func SeedFakeUsers(ctx context.Context, store kv.Store, users *identity.Provider, logger logrus.FieldLogger) (map[string]*types.Profile, error) {
	sess := identity.NewSession(store, seedSessionKey)
	defer func() {
		if err := users.Logout(ctx, sess); err != nil {
			logger.WithError(err).Warn("failed to clear seed session")
		}
	}()

	profiles := make(map[string]*types.Profile, len(fakeUsers))
	seeded := 0
	for _, fakeUser := range fakeUsers {
		profile, err := users.Register(ctx, sess, fakeUser.Name, fakeUser.Email, fakeUser.Password, fakeUser.Role)
		if errors.Is(err, types.ErrDuplicateAccount) {
			profile, err = users.Login(ctx, sess, fakeUser.Email, fakeUser.Password)
		} else if err == nil {
			seeded++
		}
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", fakeUser.Email, err)
		}

		profiles[fakeUser.Email] = profile
	}

	logger.WithField("created", seeded).Info("fake users seeded")
	return profiles, nil
}
