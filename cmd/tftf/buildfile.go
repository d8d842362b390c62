package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/tftf/pkg/tftf"
)

// buildFile is the YAML build description accepted via --build-file. It
// mirrors the create flags; values explicitly set on the command line win.
// Section file paths are resolved relative to the build file's directory.
type buildFile struct {
	Name          string             `yaml:"name"`
	Load          hexValue           `yaml:"load"`
	Start         hexValue           `yaml:"start"`
	UniproMfg     hexValue           `yaml:"unipro_mfg"`
	UniproProduct hexValue           `yaml:"unipro_product"`
	AraVendor     hexValue           `yaml:"ara_vendor"`
	AraProduct    hexValue           `yaml:"ara_product"`
	Sections      []buildFileSection `yaml:"sections"`
}

type buildFileSection struct {
	Type   string   `yaml:"type"`
	File   string   `yaml:"file"`
	Offset hexValue `yaml:"offset"`
}

// hexValue accepts either a YAML integer or a string such as "0x10000000".
type hexValue uint32

func (v *hexValue) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		u, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q", s)
		}
		*v = hexValue(u)
		return nil
	}
	var u uint32
	if err := node.Decode(&u); err != nil {
		return err
	}
	*v = hexValue(u)
	return nil
}

func loadBuildFile(path string) (*buildFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bf buildFile
	if err := yaml.Unmarshal(raw, &bf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &bf, nil
}

func (bf *buildFile) sectionSpecs(baseDir string) ([]sectionSpec, error) {
	specs := make([]sectionSpec, 0, len(bf.Sections))
	for i, s := range bf.Sections {
		typ, err := tftf.ParseSectionType(s.Type)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		if s.File == "" {
			return nil, fmt.Errorf("section %d: no file", i)
		}
		file := s.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}
		specs = append(specs, sectionSpec{typ: typ, file: file, offset: uint32(s.Offset)})
	}
	return specs, nil
}
