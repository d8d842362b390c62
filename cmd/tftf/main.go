package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tftf/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "tftf",
		Usage: "Create and inspect Trusted Firmware Transfer Format packages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug|info|warn|error",
				Value: "info",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			createCmd(),
			displayCmd(),
			hexCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newLogger(cmd *cli.Command) logger.Logger {
	return logger.Pretty(os.Stderr, logger.ParseLevel(cmd.String("log-level")))
}
