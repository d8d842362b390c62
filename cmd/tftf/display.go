package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tftf/internal/logger"
	"github.com/samcharles93/tftf/pkg/tftf"
)

func displayCmd() *cli.Command {
	return &cli.Command{
		Name:      "display",
		Usage:     "Print the header of existing TFTF packages",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the header as JSON instead of the synopsis",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				_ = cli.ShowSubcommandHelp(cmd)
				return cli.Exit("no input files", 2)
			}
			log := newLogger(cmd)
			for _, path := range paths {
				if err := displayOne(cmd, log, path); err != nil {
					return cli.Exit(err.Error(), 2)
				}
			}
			return nil
		},
	}
}

func displayOne(cmd *cli.Command, log logger.Logger, path string) error {
	f, err := tftf.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if cmd.Bool("json") {
		raw, err := f.Header.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
	} else {
		fmt.Printf("TFTF file %s:\n", path)
		f.Header.WriteSynopsis(os.Stdout)
	}

	for _, o := range tftf.FindOverlaps(f.Header.Sections) {
		log.Warn(o.String())
	}
	return nil
}
