package tftf

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// writerCopyBufSize bounds the memory used to copy a payload, so a build
// never holds a whole section file in memory at once.
const writerCopyBufSize = 64 * 1024

// Writer streams a TFTF container to a file.
//
// The 512 header bytes are reserved up front (payload lengths are unknown
// until every section has been copied) and patched in Finalize. Payloads are
// appended in placement order with no inter-section padding: gaps exist only
// as copy-offset addresses, never as file bytes.
type Writer struct {
	f       *os.File
	copyBuf []byte
	closed  bool
}

// NewWriter creates a writer targeting f. The file is truncated and the
// header region reserved as actual zero bytes, not a seek hole.
func NewWriter(f *os.File) (*Writer, error) {
	if f == nil {
		return nil, errors.New("tftf: nil file")
	}
	if err := f.Truncate(0); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	w := &Writer{
		f:       f,
		copyBuf: make([]byte, writerCopyBufSize),
	}
	if err := writeFull(f, make([]byte, HeaderSize)); err != nil {
		return nil, err
	}
	return w, nil
}

// AppendPayload copies r verbatim to the end of the container and returns
// the number of payload bytes written.
func (w *Writer) AppendPayload(r io.Reader) (uint32, error) {
	if w.closed {
		return 0, errors.New("tftf: writer already finalized")
	}
	written, err := io.CopyBuffer(w.f, r, w.copyBuf)
	if err != nil {
		return 0, err
	}
	if written > math.MaxUint32 {
		return 0, fmt.Errorf("tftf: section too large (%d bytes)", written)
	}
	return uint32(written), nil
}

// Finalize patches the completed header into the reserved region, truncates
// the file to its final size and syncs it. After Finalize the writer must
// not be used again.
func (w *Writer) Finalize(h *Header) error {
	if w.closed {
		return errors.New("tftf: writer already finalized")
	}
	w.closed = true

	size, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	// Critical if the target file was reused: on-disk size must match the
	// header plus the payloads actually written.
	if err := w.f.Truncate(size); err != nil {
		return err
	}

	var buf [HeaderSize]byte
	if !encodeHeader(buf[:], h) {
		return errors.New("tftf: encode header failed")
	}
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := writeFull(w.f, buf[:]); err != nil {
		return err
	}
	return w.f.Sync()
}

func writeFull(f *os.File, p []byte) error {
	for len(p) > 0 {
		n, err := f.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
