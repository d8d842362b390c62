package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samcharles93/tftf/pkg/tftf"
)

// sectionSpec is one section input as gathered from the command line or a
// build description file, before it is turned into a tftf.SectionRequest.
type sectionSpec struct {
	typ    tftf.SectionType
	file   string
	offset uint32
}

var sectionFlagTypes = map[string]tftf.SectionType{
	"--code":        tftf.TypeRawCode,
	"-c":            tftf.TypeRawCode,
	"--data":        tftf.TypeRawData,
	"-d":            tftf.TypeRawData,
	"--manifest":    tftf.TypeManifest,
	"-m":            tftf.TypeManifest,
	"--signature":   tftf.TypeSignature,
	"--certificate": tftf.TypeCertificate,
}

// parseSectionArgs extracts the ordered section inputs from the raw argument
// list. Section order is caller-significant (it fixes both default placement
// and the on-disk payload order), and cli flag parsing does not preserve the
// interleaving of different repeatable flags, so the section flags are
// re-scanned here in their original order. An --offset amends the most
// recent section and is accepted only directly after --code or --data.
func parseSectionArgs(args []string) ([]sectionSpec, error) {
	var specs []sectionSpec
	allowOffset := false

	for i := 0; i < len(args); i++ {
		name, inline, hasInline := strings.Cut(args[i], "=")
		value := func() (string, error) {
			if hasInline {
				return inline, nil
			}
			i++
			if i >= len(args) {
				return "", fmt.Errorf("missing value for %s", name)
			}
			return args[i], nil
		}

		if typ, ok := sectionFlagTypes[name]; ok {
			file, err := value()
			if err != nil {
				return nil, err
			}
			specs = append(specs, sectionSpec{typ: typ, file: file})
			allowOffset = typ == tftf.TypeRawCode || typ == tftf.TypeRawData
			continue
		}
		if name == "--offset" || name == "-f" {
			if !allowOffset {
				return nil, errors.New("offset only allowed after code and data")
			}
			raw, err := value()
			if err != nil {
				return nil, err
			}
			off, err := parseHex(raw, "offset")
			if err != nil {
				return nil, err
			}
			specs[len(specs)-1].offset = off
			allowOffset = false
			continue
		}
		if strings.HasPrefix(name, "-") {
			allowOffset = false
		}
	}
	return specs, nil
}

// parseHex parses a 32-bit hex number, leading "0x" optional.
func parseHex(input, optname string) (uint32, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", optname, input)
	}
	return uint32(v), nil
}

func toRequests(specs []sectionSpec) []tftf.SectionRequest {
	reqs := make([]tftf.SectionRequest, 0, len(specs))
	for _, s := range specs {
		reqs = append(reqs, tftf.SectionRequest{
			Type:   s.typ,
			Source: tftf.FileSource(s.file),
			Offset: s.offset,
		})
	}
	return reqs
}
