package tftf

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is a read-only view of an existing TFTF container.
type File struct {
	Data   []byte
	Header *Header

	// payloadOff[i] is the file offset of section i's payload. Payloads are
	// stored back to back after the header, so offsets follow from the
	// section lengths alone.
	payloadOff []int
	mmapped    bool
}

// Open maps a TFTF file read-only and validates its structure. If mmap is
// unavailable it falls back to ReadAt-based loading. The returned file must
// be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < HeaderSize {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// Cannot index this file safely as []byte on this architecture.
		return nil, ErrCorruptFile
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		tf, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return tf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads and validates a TFTF container from a random-access
// reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < HeaderSize || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	if len(data) < HeaderSize {
		return nil, ErrCorruptFile
	}
	hdr, ok := decodeHeader(data[:HeaderSize])
	if !ok {
		return nil, ErrCorruptFile
	}
	if !hdr.Valid() {
		return nil, ErrInvalidSentinel
	}

	// Payload bounds check: sections occupy exactly their stored lengths,
	// concatenated directly after the header.
	payloadOff := make([]int, len(hdr.Sections))
	off := HeaderSize
	for i, s := range hdr.Sections {
		payloadOff[i] = off
		if s.SectionLength != s.ExpandedLength {
			return nil, fmt.Errorf("%w: section %d is compressed (unsupported)", ErrCorruptFile, i)
		}
		end := off + int(s.SectionLength)
		if end < off || end > len(data) {
			return nil, fmt.Errorf("%w: section %d out of bounds", ErrCorruptFile, i)
		}
		off = end
	}
	if uint32(off-HeaderSize) != hdr.LoadLength {
		return nil, fmt.Errorf("%w: load_length does not match section lengths", ErrCorruptFile)
	}

	return &File{
		Data:       data,
		Header:     &hdr,
		payloadOff: payloadOff,
		mmapped:    mmapped,
	}, nil
}

// SectionData returns a zero-copy slice covering section i's payload. The
// caller must not retain the slice after Close.
func (f *File) SectionData(i int) []byte {
	if f == nil || f.Data == nil || i < 0 || i >= len(f.payloadOff) {
		return nil
	}
	start := f.payloadOff[i]
	end := start + int(f.Header.Sections[i].SectionLength)
	return f.Data[start:end]
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.Header = nil
	f.payloadOff = nil
	f.mmapped = false
	return err
}
