// Package tftf implements the Trusted Firmware Transfer Format.
//
// TFTF is the fixed-header, multi-section firmware container consumed by the
// secure bootloader: a 512-byte header describing up to 25 payload sections,
// followed by the section payloads concatenated in placement order. The
// package covers building new containers, reading existing ones and
// rendering header synopses; it never interprets section contents.
package tftf

// TFTF global constants are shared with the bootloader and must never change.
const (
	// Sentinel is the header magic. The value reads as "TFTF" in a
	// little-endian dump.
	Sentinel uint32 = 0x46544654

	// HeaderSize is the fixed on-disk header size, independent of how many
	// descriptor slots are in use.
	HeaderSize = 512

	// TimestampLength is the size of the fixed ASCII timestamp field.
	TimestampLength = 16

	// NameLength is the size of the fixed ASCII firmware package name field.
	NameLength = 48

	// MaxSections is the capacity of the section descriptor table.
	MaxSections = 25

	// headerPadding brings the header up to exactly HeaderSize bytes.
	headerPadding = 12
)

// SectionType identifies the meaning of a section payload.
type SectionType uint32

const (
	TypeRawCode        SectionType = 0x01
	TypeRawData        SectionType = 0x02
	TypeCompressedCode SectionType = 0x03
	TypeCompressedData SectionType = 0x04
	TypeManifest       SectionType = 0x05
	TypeSignature      SectionType = 0x8f
	TypeCertificate    SectionType = 0x90

	// TypeEndOfDescriptors marks the first unused descriptor slot.
	TypeEndOfDescriptors SectionType = 0xfe
)

// String returns the human-readable section type name used in header
// synopses.
func (t SectionType) String() string {
	switch t {
	case TypeRawCode:
		return "code"
	case TypeRawData:
		return "data"
	case TypeCompressedCode:
		return "compressed code"
	case TypeCompressedData:
		return "compressed data"
	case TypeManifest:
		return "manifest"
	case TypeSignature:
		return "signature"
	case TypeCertificate:
		return "certificate"
	case TypeEndOfDescriptors:
		return "end of sections"
	}
	return "?"
}
