package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tftf/pkg/tftf"
)

func createCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create an unsigned TFTF package",
		Description: "Section flags (--code, --data, --manifest, --signature, --certificate)\n" +
			"are processed in command-line order, which fixes both the default\n" +
			"contiguous placement and the on-disk payload order. An --offset amends\n" +
			"the section given directly before it (code and data only).\n" +
			"Numbers are hex; a leading 0x is optional.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "code",
				Aliases: []string{"c"},
				Usage:   "Add `file` as a firmware code block",
			},
			&cli.StringSliceFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Add `file` as a raw data block",
			},
			&cli.StringSliceFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Usage:   "Add `file` as a manifest block",
			},
			&cli.StringSliceFlag{
				Name:  "signature",
				Usage: "Add `file` as an opaque signature block",
			},
			&cli.StringSliceFlag{
				Name:  "certificate",
				Usage: "Add `file` as an opaque certificate block",
			},
			&cli.StringSliceFlag{
				Name:    "offset",
				Aliases: []string{"f"},
				Usage:   "Copy `offset` from --load for the preceding code/data section",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Firmware package name (48 bytes max, truncated)",
			},
			&cli.StringFlag{
				Name:    "load",
				Aliases: []string{"l"},
				Usage:   "Target `address` the package is expanded into",
				Value:   "0x10000000",
			},
			&cli.StringFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Entry point `address` (defaults to --load)",
			},
			&cli.StringFlag{
				Name:    "unipro-mfg",
				Aliases: []string{"u"},
				Usage:   "32-bit UniPro manufacturer ID",
			},
			&cli.StringFlag{
				Name:    "unipro-product",
				Aliases: []string{"U"},
				Usage:   "32-bit UniPro product ID",
			},
			&cli.StringFlag{
				Name:    "ara-vendor",
				Aliases: []string{"a"},
				Usage:   "32-bit ARA vendor ID",
			},
			&cli.StringFlag{
				Name:    "ara-product",
				Aliases: []string{"A"},
				Usage:   "32-bit ARA product ID",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output TFTF `file` (required)",
			},
			&cli.StringFlag{
				Name:  "build-file",
				Usage: "YAML build description `file`; flags override its values",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print a synopsis of the TFTF header",
			},
		},
		Action: runCreate,
	}
}

func runCreate(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd)

	var bf *buildFile
	var specs []sectionSpec
	if path := cmd.String("build-file"); path != "" {
		var err error
		if bf, err = loadBuildFile(path); err != nil {
			return cli.Exit(err.Error(), 2)
		}
		if specs, err = bf.sectionSpecs(filepath.Dir(path)); err != nil {
			return cli.Exit(err.Error(), 2)
		}
	}
	flagSpecs, err := parseSectionArgs(os.Args)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	specs = append(specs, flagSpecs...)

	out := cmd.String("out")
	if out == "" {
		_ = cli.ShowSubcommandHelp(cmd)
		return cli.Exit("no output file specified", 2)
	}
	if len(specs) == 0 {
		_ = cli.ShowSubcommandHelp(cmd)
		return cli.Exit("missing input (code, data, manifest) section(s)", 2)
	}

	opts := tftf.BuildOptions{
		OutputPath: out,
		Sections:   toRequests(specs),
	}
	if bf != nil {
		opts.Name = bf.Name
		opts.LoadBase = uint32(bf.Load)
		opts.StartLocation = uint32(bf.Start)
		opts.UniproMfgID = uint32(bf.UniproMfg)
		opts.UniproProductID = uint32(bf.UniproProduct)
		opts.AraVendorID = uint32(bf.AraVendor)
		opts.AraProductID = uint32(bf.AraProduct)
	}
	if cmd.IsSet("name") || opts.Name == "" {
		opts.Name = cmd.String("name")
	}
	numFlags := []struct {
		flag string
		dst  *uint32
	}{
		{"load", &opts.LoadBase},
		{"start", &opts.StartLocation},
		{"unipro-mfg", &opts.UniproMfgID},
		{"unipro-product", &opts.UniproProductID},
		{"ara-vendor", &opts.AraVendorID},
		{"ara-product", &opts.AraProductID},
	}
	for _, nf := range numFlags {
		// The load flag has a default, so it applies whenever the build file
		// did not set one; the rest apply only when given explicitly.
		useDefault := nf.flag == "load" && *nf.dst == 0
		if !cmd.IsSet(nf.flag) && !useDefault {
			continue
		}
		v, err := parseHex(cmd.String(nf.flag), nf.flag)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		*nf.dst = v
	}
	if opts.StartLocation == 0 {
		opts.StartLocation = opts.LoadBase
	}

	res, err := tftf.Build(opts)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if cmd.Bool("verbose") {
		res.Header.WriteSynopsis(os.Stdout)
	}
	log.Info("wrote TFTF file", "path", out)

	if len(res.Overlaps) > 0 {
		for _, o := range res.Overlaps {
			log.Warn(o.String())
		}
		return cli.Exit("", 1)
	}
	return nil
}
