package main

import (
	"context"
	"io"
	"os"

	"github.com/marcinbor85/gohex"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tftf/pkg/tftf"
)

func hexCmd() *cli.Command {
	return &cli.Command{
		Name:      "hex",
		Usage:     "Render the expanded memory image of a TFTF package as Intel HEX",
		ArgsUsage: "TFTF",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output `file` (stdout if omitted)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" || cmd.Args().Len() > 1 {
				_ = cli.ShowSubcommandHelp(cmd)
				return cli.Exit("expected exactly one TFTF file", 2)
			}
			if err := writeHex(path, cmd.String("out")); err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return nil
		},
	}
}

// writeHex places each section at its absolute target address
// (load_base + copy_offset) and dumps the resulting memory image.
func writeHex(path, outPath string) error {
	f, err := tftf.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	mem := gohex.NewMemory()
	for i, s := range f.Header.Sections {
		data := f.SectionData(i)
		if len(data) == 0 {
			continue
		}
		if err := mem.AddBinary(f.Header.LoadBase+s.CopyOffset, data); err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		out, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = out.Close() }()
		w = out
	}
	return mem.DumpIntelHex(w, 16)
}
