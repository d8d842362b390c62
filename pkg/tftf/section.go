package tftf

import (
	"fmt"
	"strings"
)

// SectionDescriptor describes one placed payload section. It is created by
// the layout engine once a section's payload has been copied and is immutable
// afterwards.
type SectionDescriptor struct {
	// SectionLength is the payload size as stored in the file.
	SectionLength uint32

	// ExpandedLength is the payload size once placed in target memory.
	// Equal to SectionLength until a compression step exists.
	ExpandedLength uint32

	// CopyOffset is the placement address relative to the package load base.
	CopyOffset uint32

	Type SectionType
}

// End returns the last address occupied by the section, inclusive.
// Meaningless for zero-length sections, which occupy no address range.
func (s SectionDescriptor) End() uint32 {
	return s.CopyOffset + s.ExpandedLength - 1
}

// ParseSectionType maps a section type name, as used in build description
// files, to its wire value.
func ParseSectionType(name string) (SectionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "code":
		return TypeRawCode, nil
	case "data":
		return TypeRawData, nil
	case "manifest":
		return TypeManifest, nil
	case "signature":
		return TypeSignature, nil
	case "certificate":
		return TypeCertificate, nil
	}
	return 0, fmt.Errorf("tftf: unknown section type %q", name)
}
