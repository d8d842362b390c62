package tftf

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// SectionRequest describes one input blob queued for packaging. Requests are
// immutable once queued; their order is significant.
type SectionRequest struct {
	Type   SectionType
	Source Source

	// Offset, when non-zero, overrides default contiguous placement by
	// resetting the layout cursor before this section is placed. Only
	// meaningful for code and data sections, but not rejected elsewhere.
	Offset uint32
}

// BuildOptions carries the global package metadata and the ordered section
// requests for one build.
type BuildOptions struct {
	OutputPath string

	Name          string
	LoadBase      uint32
	StartLocation uint32

	UniproMfgID     uint32
	UniproProductID uint32
	AraVendorID     uint32
	AraProductID    uint32

	Sections []SectionRequest
}

// BuildResult is the finalized, read-only outcome of a successful build.
// Overlaps is non-empty when the build succeeded with warnings.
type BuildResult struct {
	Header   Header
	Overlaps []Overlap
}

// Build assembles a TFTF container from opts and writes it to
// opts.OutputPath.
//
// The container is written to a uniquely named temporary file next to the
// output path and renamed into place only after the header has been
// finalized, so a failed build never leaves a partial artifact behind.
// Section address overlap does not fail the build; the overlapping pairs are
// returned in the result for the caller to report.
func Build(opts BuildOptions) (*BuildResult, error) {
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("tftf: build: no output path")
	}
	if len(opts.Sections) == 0 {
		return nil, ErrNoSections
	}
	if len(opts.Sections) > MaxSections {
		return nil, fmt.Errorf("%w: %d requested, at most %d",
			ErrTooManySections, len(opts.Sections), MaxSections)
	}

	tmpPath := opts.OutputPath + "." + uuid.NewString() + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*BuildResult, error) {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return nil, err
	}

	w, err := NewWriter(f)
	if err != nil {
		return fail(err)
	}

	var lay layout
	for _, req := range opts.Sections {
		length, err := copySection(w, req.Source)
		if err != nil {
			return fail(fmt.Errorf("tftf: section %q: %w", req.Source.Name(), err))
		}
		lay.place(req.Type, req.Offset, length)
	}

	header := Header{
		Sentinel:        Sentinel,
		Timestamp:       buildTimestamp(time.Now()),
		Name:            opts.Name,
		LoadLength:      lay.loadLength(),
		LoadBase:        opts.LoadBase,
		ExpandedLength:  lay.extent(),
		StartLocation:   opts.StartLocation,
		UniproMfgID:     opts.UniproMfgID,
		UniproProductID: opts.UniproProductID,
		AraVendorID:     opts.AraVendorID,
		AraProductID:    opts.AraProductID,
		Sections:        lay.sections,
	}
	if err := w.Finalize(&header); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, opts.OutputPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}

	return &BuildResult{
		Header:   header,
		Overlaps: FindOverlaps(lay.sections),
	}, nil
}

// copySection streams one source into the container. The source is closed as
// soon as its payload has been copied, not held open for the whole build.
func copySection(w *Writer, src Source) (uint32, error) {
	r, err := src.Open()
	if err != nil {
		return 0, err
	}
	length, err := w.AppendPayload(r)
	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return length, err
}

// buildTimestamp renders now as "YYYYMMDD HHMMSS" in UTC, the fixed textual
// format the bootloader expects in the header timestamp field.
func buildTimestamp(now time.Time) string {
	return now.UTC().Format("20060102 150405")
}
