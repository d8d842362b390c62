package tftf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func buildTestFile(t *testing.T, dir string) string {
	t.Helper()
	out := filepath.Join(dir, "fw.tftf")
	_, err := Build(BuildOptions{
		OutputPath: out,
		Name:       "reader test",
		LoadBase:   0x10000000,
		Sections: []SectionRequest{
			{Type: TypeRawCode, Source: BytesSource{Label: "code", Data: bytes.Repeat([]byte{0xcc}, 128)}},
			{Type: TypeRawData, Source: BytesSource{Label: "data", Data: []byte{1, 2, 3, 4}}},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return out
}

func TestOpenReaderAtRoundTrip(t *testing.T) {
	t.Parallel()

	path := buildTestFile(t, t.TempDir())
	rf, err := os.Open(path)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer func() { _ = rf.Close() }()

	st, err := rf.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	f, err := OpenReaderAt(rf, st.Size())
	if err != nil {
		t.Fatalf("open readerat: %v", err)
	}
	defer func() { _ = f.Close() }()

	if f.mmapped {
		t.Fatalf("OpenReaderAt should not mmap")
	}
	if f.Header.Name != "reader test" {
		t.Fatalf("name: %q", f.Header.Name)
	}
	if got := f.SectionData(1); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("data payload mismatch: %v", got)
	}
}

func TestOpenRejectsBadSentinel(t *testing.T) {
	t.Parallel()

	path := buildTestFile(t, t.TempDir())
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	raw[0] = 'X'
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err = Open(path)
	if !errors.Is(err, ErrInvalidSentinel) {
		t.Fatalf("error: got %v want ErrInvalidSentinel", err)
	}
}

func TestOpenRejectsTruncatedPayload(t *testing.T) {
	t.Parallel()

	path := buildTestFile(t, t.TempDir())
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if err := os.Truncate(path, st.Size()-8); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	_, err = Open(path)
	if !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("error: got %v want ErrCorruptFile", err)
	}
}

func TestOpenRejectsShortFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "short.tftf")
	if err := os.WriteFile(path, make([]byte, HeaderSize/2), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Open(path)
	if !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("error: got %v want ErrCorruptFile", err)
	}
}

func TestOpenMmapPath(t *testing.T) {
	t.Parallel()

	path := buildTestFile(t, t.TempDir())
	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := f.SectionData(0); len(got) != 128 || got[0] != 0xcc {
		t.Fatalf("code payload mismatch")
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.SectionData(0) != nil {
		t.Fatalf("SectionData after Close should be nil")
	}
}
