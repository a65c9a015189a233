package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"samaajseva/pkg/types"

	"github.com/urfave/cli/v2"
)

var needsCommand = &cli.Command{
	Name:  "needs",
	Usage: "List needs, newest first",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "ngo", Usage: "Only needs posted by this NGO id"},
		&cli.BoolFlag{Name: "mine", Usage: "Only needs posted by the logged in NGO"},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		needs := a.ledger.Needs()
		switch {
		case c.Bool("mine"):
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			profile, err := sess.Require()
			if err != nil {
				return err
			}
			needs = a.ledger.NeedsByNGO(profile.ID)
		case c.String("ngo") != "":
			needs = a.ledger.NeedsByNGO(c.String("ngo"))
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tURGENCY\tCOMMITTED\tSTATUS")
		for _, n := range needs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%g/%g\t%s\n", n.ID, n.Title, n.Urgency, n.QuantityCommitted, n.QuantityNeeded, n.Status)
		}
		return tw.Flush()
	},
}

var postNeedCommand = &cli.Command{
	Name:  "post-need",
	Usage: "Post a need as the logged in NGO",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "title", Required: true},
		&cli.StringFlag{Name: "domain", Required: true},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "state"},
		&cli.StringFlag{Name: "district"},
		&cli.StringFlag{Name: "local-area"},
		&cli.IntFlag{Name: "people-affected"},
		&cli.StringFlag{Name: "resource-type"},
		&cli.StringFlag{Name: "urgency-reason"},
		&cli.StringFlag{Name: "timeline"},
		&cli.Float64Flag{Name: "quantity", Required: true},
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

		need, err := a.intake.Submit(ctx, sess.Current(), types.NeedAttributes{
			Title:          c.String("title"),
			Domain:         c.String("domain"),
			Description:    c.String("description"),
			State:          c.String("state"),
			District:       c.String("district"),
			LocalArea:      c.String("local-area"),
			PeopleAffected: c.Int("people-affected"),
			ResourceType:   c.String("resource-type"),
			UrgencyReason:  c.String("urgency-reason"),
			Timeline:       c.String("timeline"),
			QuantityNeeded: c.Float64("quantity"),
		})
		if err != nil {
			return err
		}

		fmt.Printf("posted %s with urgency %s (confidence %.2f)\n", need.ID, need.Urgency, need.Confidence)
		return nil
	},
}

var commitCommand = &cli.Command{
	Name:      "commit",
	Usage:     "Commit to a need as the logged in donor",
	ArgsUsage: "<need-id>",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "amount", Value: 1},
	},
	Action: func(c *cli.Context) error {
		ctx := c.Context

		needID := c.Args().First()
		if needID == "" {
			return errors.New("need id is required")
		}

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
		if profile.Role != types.UserRoleDonor {
			return types.ErrForbiddenRole
		}

		need, err := a.ledger.CommitToNeed(ctx, needID, profile.ID, c.Float64("amount"))
		if err != nil {
			return err
		}
		if need == nil {
			fmt.Printf("need %s not found, nothing recorded\n", needID)
			return nil
		}

		fmt.Printf("%s: %g/%g committed, %s\n", need.Title, need.QuantityCommitted, need.QuantityNeeded, need.Status)
		return nil
	},
}
