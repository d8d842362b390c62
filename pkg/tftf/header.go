package tftf

import (
	"encoding/binary"
	"strings"
)

// Fixed field offsets within the 512-byte header. The layout is part of the
// bootloader ABI, so the header is serialized field by field at these
// offsets instead of relying on Go struct layout.
const (
	offSentinel       = 0
	offTimestamp      = 4
	offName           = 20
	offLoadLength     = 68
	offLoadBase       = 72
	offExpandedLength = 76
	offStartLocation  = 80
	offUniproMfg      = 84
	offUniproProduct  = 88
	offAraVendor      = 92
	offAraProduct     = 96
	offSections       = 100

	sectionDescSize = 16
)

// Header is the in-memory form of the fixed TFTF header. It is accumulated
// field by field while a build runs and treated as read-only once finalized.
type Header struct {
	Sentinel uint32

	// Timestamp is "YYYYMMDD HHMMSS" in UTC. The field is zero-padded to
	// TimestampLength bytes on encode and carries no terminator.
	Timestamp string

	// Name is the firmware package name, silently truncated to NameLength
	// bytes on encode.
	Name string

	// LoadLength is the total on-disk payload length (sum of section
	// lengths). ExpandedLength is the layout extent: one past the highest
	// address any section occupies, relative to LoadBase.
	LoadLength     uint32
	LoadBase       uint32
	ExpandedLength uint32
	StartLocation  uint32

	UniproMfgID     uint32
	UniproProductID uint32
	AraVendorID     uint32
	AraProductID    uint32

	// Sections holds the used descriptor slots, in placement order.
	Sections []SectionDescriptor
}

// Valid reports whether the header carries the TFTF sentinel.
func (h *Header) Valid() bool {
	return h.Sentinel == Sentinel
}

// encodeHeader serializes h into buf, which must be exactly HeaderSize
// bytes. Unused descriptor slots are zero-filled and the first one is marked
// with the end-of-descriptors type.
func encodeHeader(buf []byte, h *Header) bool {
	if len(buf) != HeaderSize || len(h.Sections) > MaxSections {
		return false
	}
	for i := range buf {
		buf[i] = 0
	}

	le := binary.LittleEndian
	le.PutUint32(buf[offSentinel:], h.Sentinel)
	copyPadded(buf[offTimestamp:offTimestamp+TimestampLength], h.Timestamp)
	copyPadded(buf[offName:offName+NameLength], h.Name)
	le.PutUint32(buf[offLoadLength:], h.LoadLength)
	le.PutUint32(buf[offLoadBase:], h.LoadBase)
	le.PutUint32(buf[offExpandedLength:], h.ExpandedLength)
	le.PutUint32(buf[offStartLocation:], h.StartLocation)
	le.PutUint32(buf[offUniproMfg:], h.UniproMfgID)
	le.PutUint32(buf[offUniproProduct:], h.UniproProductID)
	le.PutUint32(buf[offAraVendor:], h.AraVendorID)
	le.PutUint32(buf[offAraProduct:], h.AraProductID)

	for i, s := range h.Sections {
		d := buf[offSections+i*sectionDescSize:]
		le.PutUint32(d[0:], s.SectionLength)
		le.PutUint32(d[4:], s.ExpandedLength)
		le.PutUint32(d[8:], s.CopyOffset)
		le.PutUint32(d[12:], uint32(s.Type))
	}
	if len(h.Sections) < MaxSections {
		d := buf[offSections+len(h.Sections)*sectionDescSize:]
		le.PutUint32(d[12:], uint32(TypeEndOfDescriptors))
	}
	return true
}

// decodeHeader parses a HeaderSize-byte buffer. The descriptor table is read
// up to the end-of-descriptors marker or full capacity, whichever comes
// first.
func decodeHeader(buf []byte) (Header, bool) {
	if len(buf) != HeaderSize {
		return Header{}, false
	}

	le := binary.LittleEndian
	h := Header{
		Sentinel:        le.Uint32(buf[offSentinel:]),
		Timestamp:       trimPadding(buf[offTimestamp : offTimestamp+TimestampLength]),
		Name:            trimPadding(buf[offName : offName+NameLength]),
		LoadLength:      le.Uint32(buf[offLoadLength:]),
		LoadBase:        le.Uint32(buf[offLoadBase:]),
		ExpandedLength:  le.Uint32(buf[offExpandedLength:]),
		StartLocation:   le.Uint32(buf[offStartLocation:]),
		UniproMfgID:     le.Uint32(buf[offUniproMfg:]),
		UniproProductID: le.Uint32(buf[offUniproProduct:]),
		AraVendorID:     le.Uint32(buf[offAraVendor:]),
		AraProductID:    le.Uint32(buf[offAraProduct:]),
	}
	for i := 0; i < MaxSections; i++ {
		d := buf[offSections+i*sectionDescSize:]
		typ := SectionType(le.Uint32(d[12:]))
		if typ == TypeEndOfDescriptors {
			break
		}
		h.Sections = append(h.Sections, SectionDescriptor{
			SectionLength:  le.Uint32(d[0:]),
			ExpandedLength: le.Uint32(d[4:]),
			CopyOffset:     le.Uint32(d[8:]),
			Type:           typ,
		})
	}
	return h, true
}

// copyPadded copies s into the fixed-width field dst, truncating when s is
// longer than the field. dst is assumed to be zeroed already.
func copyPadded(dst []byte, s string) {
	copy(dst, s)
}

func trimPadding(field []byte) string {
	return strings.TrimRight(string(field), "\x00")
}
