package tftf

import "fmt"

// layout owns the running placement cursor and the descriptor table while a
// build is in progress. Sections are placed in request order: that order is
// caller-significant, since it determines both default contiguous placement
// and the on-disk payload order.
type layout struct {
	cursor   uint32
	sections []SectionDescriptor
}

// place resolves one section request to a descriptor. A non-zero explicit
// offset resets the cursor before placing, so the section and every
// subsequent default-placed section are positioned relative to it. The
// cursor then advances by the expanded length, which gives tight packing
// when no explicit offsets are supplied and leaves zero-length sections
// advancing nothing.
func (l *layout) place(typ SectionType, explicitOffset, length uint32) SectionDescriptor {
	if explicitOffset != 0 {
		l.cursor = explicitOffset
	}
	desc := SectionDescriptor{
		SectionLength:  length,
		ExpandedLength: length,
		CopyOffset:     l.cursor,
		Type:           typ,
	}
	l.cursor += desc.ExpandedLength
	l.sections = append(l.sections, desc)
	return desc
}

// extent returns one past the highest address any placed section occupies.
// This is the header-level expanded length; it differs from the sum of
// section lengths whenever explicit offsets create gaps, and from the final
// cursor value whenever an explicit offset moved the cursor backwards.
func (l *layout) extent() uint32 {
	var max uint32
	for _, s := range l.sections {
		if end := s.CopyOffset + s.ExpandedLength; end > max {
			max = end
		}
	}
	return max
}

// loadLength returns the total on-disk payload length.
func (l *layout) loadLength() uint32 {
	var sum uint32
	for _, s := range l.sections {
		sum += s.SectionLength
	}
	return sum
}

// Overlap reports that two placed sections occupy intersecting address
// ranges. A and B index the descriptor table, A < B.
type Overlap struct {
	A, B           int
	AStart, AEnd   uint32
	BStart, BEnd   uint32
}

func (o Overlap) String() string {
	return fmt.Sprintf("section %d (0x%08x-0x%08x) overlapped by section %d (0x%08x-0x%08x)",
		o.A, o.AStart, o.AEnd, o.B, o.BStart, o.BEnd)
}

// FindOverlaps checks every unordered pair of sections for address-range
// intersection and returns all overlapping pairs. Ranges are inclusive
// [CopyOffset, CopyOffset+ExpandedLength-1]; zero-length sections occupy no
// range and never overlap anything.
//
// Overlap is deliberately a quality signal rather than a build blocker: a
// target may intentionally embed one region inside another (for instance a
// manifest inside a code block), so callers report the pairs as warnings and
// let the build complete.
func FindOverlaps(sections []SectionDescriptor) []Overlap {
	var overlaps []Overlap
	for a := 0; a < len(sections); a++ {
		if sections[a].ExpandedLength == 0 {
			continue
		}
		aStart := sections[a].CopyOffset
		aEnd := sections[a].End()
		for b := a + 1; b < len(sections); b++ {
			if sections[b].ExpandedLength == 0 {
				continue
			}
			bStart := sections[b].CopyOffset
			bEnd := sections[b].End()
			if bEnd < aStart || bStart > aEnd {
				continue
			}
			overlaps = append(overlaps, Overlap{
				A: a, B: b,
				AStart: aStart, AEnd: aEnd,
				BStart: bStart, BEnd: bEnd,
			})
		}
	}
	return overlaps
}
