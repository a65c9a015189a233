package main

import (
	"fmt"

	"samaajseva/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var registerCommand = &cli.Command{
	Name:  "register",
	Usage: "Create an account and log in as it",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true},
		&cli.StringFlag{Name: "role", Usage: "NGO or Donor", Required: true},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.session(ctx)
		if err != nil {
			return err
		}

		profile, err := a.users.Register(ctx, sess, c.String("name"), c.String("email"), c.String("password"), types.UserRole(c.String("role")))
		if err != nil {
			return err
		}

		fmt.Printf("registered %s (%s) as %s\n", profile.Name, profile.ID, profile.Role)
		return nil
	},
}

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in with email and password",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.session(ctx)
		if err != nil {
			return err
		}

		profile, err := a.users.Login(ctx, sess, c.String("email"), c.String("password"))
		if err != nil {
			return err
		}

		fmt.Printf("logged in as %s (%s)\n", profile.Name, profile.Role)
		return nil
	},
}

var logoutCommand = &cli.Command{
	Name:  "logout",
	Usage: "Forget the logged in user",
	Action: func(c *cli.Context) error {
		ctx := c.Context

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.session(ctx)
		if err != nil {
			return err
		}

		return a.users.Logout(ctx, sess)
	},
}

var whoamiCommand = &cli.Command{
	Name:  "whoami",
	Usage: "Show the logged in user",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "dump", Usage: "Pretty print the full profile and dashboard stats"},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.session(ctx)
		if err != nil {
			return err
		}

		profile, err := sess.Require()
		if err != nil {
			return err
		}

		if !c.Bool("dump") {
			fmt.Printf("%s <%s> %s\n", profile.Name, profile.Email, profile.Role)
			return nil
		}

		pp.Println(profile)
		switch profile.Role {
		case types.UserRoleNGO:
			pp.Println(a.ledger.NGOStats(profile.ID))
		case types.UserRoleDonor:
			pp.Println(a.ledger.DonorStats(profile.ID))
		}
		return nil
	},
}
