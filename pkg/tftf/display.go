package tftf

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// WriteSynopsis prints a human-readable summary of the header, one field per
// line, followed by a block per used descriptor slot and the index of the
// first free slot.
func (h *Header) WriteSynopsis(w io.Writer) {
	fmt.Fprintf(w, "TFTF Header:\n")
	fmt.Fprintf(w, "    sentinel:          %08x (%s)\n", h.Sentinel, sentinelChars(h.Sentinel))
	fmt.Fprintf(w, "    timestamp:         '%s'\n", h.Timestamp)
	fmt.Fprintf(w, "    fw_pkg_name:       '%s'\n", h.Name)
	fmt.Fprintf(w, "    load_length:       %08x\n", h.LoadLength)
	fmt.Fprintf(w, "    load_base:         %08x\n", h.LoadBase)
	fmt.Fprintf(w, "    expanded_length:   %08x\n", h.ExpandedLength)
	fmt.Fprintf(w, "    start_location:    %08x\n", h.StartLocation)
	fmt.Fprintf(w, "    unipro_mfg_id:     %08x\n", h.UniproMfgID)
	fmt.Fprintf(w, "    unipro_product_id: %08x\n", h.UniproProductID)
	fmt.Fprintf(w, "    ara_vendor_id:     %08x\n", h.AraVendorID)
	fmt.Fprintf(w, "    ara_product_id:    %08x\n", h.AraProductID)

	for i, s := range h.Sections {
		fmt.Fprintf(w, "    Section [%d] (%08x-%08x):\n", i, s.CopyOffset, s.End())
		fmt.Fprintf(w, "        section_length  %08x\n", s.SectionLength)
		fmt.Fprintf(w, "        expanded_length %08x\n", s.ExpandedLength)
		fmt.Fprintf(w, "        copy_offset     %08x\n", s.CopyOffset)
		fmt.Fprintf(w, "        section_type    %08x (%s)\n", uint32(s.Type), s.Type)
	}
	if n := len(h.Sections); n < MaxSections {
		fmt.Fprintf(w, "    Section [%d] (%d remaining)\n", n, MaxSections-n)
	}
}

func sentinelChars(sentinel uint32) string {
	chars := make([]byte, 4)
	for i := range chars {
		c := byte(sentinel >> (8 * i))
		if c < 0x20 || c > 0x7e {
			c = '-'
		}
		chars[i] = c
	}
	return string(chars)
}

type sectionJSON struct {
	SectionLength  uint32 `json:"section_length"`
	ExpandedLength uint32 `json:"expanded_length"`
	CopyOffset     uint32 `json:"copy_offset"`
	SectionType    uint32 `json:"section_type"`
	TypeName       string `json:"type_name"`
}

type headerJSON struct {
	Sentinel        uint32        `json:"sentinel"`
	Timestamp       string        `json:"timestamp"`
	Name            string        `json:"fw_pkg_name"`
	LoadLength      uint32        `json:"load_length"`
	LoadBase        uint32        `json:"load_base"`
	ExpandedLength  uint32        `json:"expanded_length"`
	StartLocation   uint32        `json:"start_location"`
	UniproMfgID     uint32        `json:"unipro_mfg_id"`
	UniproProductID uint32        `json:"unipro_product_id"`
	AraVendorID     uint32        `json:"ara_vendor_id"`
	AraProductID    uint32        `json:"ara_product_id"`
	Sections        []sectionJSON `json:"sections"`
}

// JSON renders the header as an indented JSON document for tooling.
func (h *Header) JSON() ([]byte, error) {
	out := headerJSON{
		Sentinel:        h.Sentinel,
		Timestamp:       h.Timestamp,
		Name:            h.Name,
		LoadLength:      h.LoadLength,
		LoadBase:        h.LoadBase,
		ExpandedLength:  h.ExpandedLength,
		StartLocation:   h.StartLocation,
		UniproMfgID:     h.UniproMfgID,
		UniproProductID: h.UniproProductID,
		AraVendorID:     h.AraVendorID,
		AraProductID:    h.AraProductID,
		Sections:        make([]sectionJSON, 0, len(h.Sections)),
	}
	for _, s := range h.Sections {
		out.Sections = append(out.Sections, sectionJSON{
			SectionLength:  s.SectionLength,
			ExpandedLength: s.ExpandedLength,
			CopyOffset:     s.CopyOffset,
			SectionType:    uint32(s.Type),
			TypeName:       s.Type.String(),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
