package tftf

import "errors"

var (
	ErrTooManySections = errors.New("tftf: too many sections")
	ErrNoSections      = errors.New("tftf: no sections")
	ErrInvalidSentinel = errors.New("tftf: invalid sentinel")
	ErrCorruptFile     = errors.New("tftf: corrupt file")
)
