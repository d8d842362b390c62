package tftf

import (
	"bytes"
	"io"
	"os"
)

// Source supplies one section's payload bytes. Implementations report a
// stable identity via Name so failures can name the offending input.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource reads a section payload from a file on disk.
type FileSource string

func (s FileSource) Name() string { return string(s) }

func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(s))
}

// BytesSource serves a section payload from memory.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string { return s.Label }

func (s BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}
