package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "samaajseva",
		Usage: "Connect NGO needs with donor commitments",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			nanoidCommand,
			registerCommand,
			loginCommand,
			logoutCommand,
			whoamiCommand,
			needsCommand,
			postNeedCommand,
			commitCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
