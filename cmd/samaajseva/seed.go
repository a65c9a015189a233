package main

import (
	"context"
	"fmt"

	"samaajseva/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the store with demo accounts and needs",
	Action: func(c *cli.Context) error {
		ctx := context.Background()

		a, err := newApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		defer a.Close()

		a.logger.WithField("driver", a.config.StoreDriver).Info("seeding store")

		profiles, err := seed.SeedFakeUsers(ctx, a.store, a.users, a.logger)
		if err != nil {
			return err
		}

		ngo := profiles[seed.DemoNGO.Email]
		donor := profiles[seed.DemoDonor.Email]

		if err := seed.SeedFakeNeeds(ctx, a.ledger, ngo.ID, donor.ID, a.logger); err != nil {
			return err
		}

		a.logger.Info("store seeded successfully")
		return nil
	},
}
