package tftf

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// failingSource simulates a section input that cannot be fully read.
type failingSource struct{ label string }

func (s failingSource) Name() string { return s.label }

func (s failingSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(&failingReader{}), nil
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n == 0 && len(p) > 0 {
		r.n = 1
		p[0] = 0xab
		return 1, nil
	}
	return 0, errors.New("simulated read failure")
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestBuildRoundTrip(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "fw.tftf")
	code := bytes.Repeat([]byte{0xc0}, 300)
	manifest := []byte("interface manifest")

	res, err := Build(BuildOptions{
		OutputPath:      out,
		Name:            "bootrom test image",
		LoadBase:        0x10000000,
		StartLocation:   0x10000040,
		UniproMfgID:     0x126,
		UniproProductID: 0x1000,
		AraVendorID:     0xfee1,
		AraProductID:    0xdead,
		Sections: []SectionRequest{
			{Type: TypeRawCode, Source: BytesSource{Label: "code", Data: code}},
			{Type: TypeManifest, Source: BytesSource{Label: "manifest", Data: manifest}},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Overlaps) != 0 {
		t.Fatalf("unexpected overlaps: %v", res.Overlaps)
	}

	f, err := Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	h := f.Header
	if !h.Valid() {
		t.Fatalf("invalid sentinel: %#x", h.Sentinel)
	}
	if ok, _ := regexp.MatchString(`^\d{8} \d{6}$`, h.Timestamp); !ok {
		t.Fatalf("timestamp format: %q", h.Timestamp)
	}
	if h.Name != "bootrom test image" {
		t.Fatalf("name: %q", h.Name)
	}
	wantLen := uint32(len(code) + len(manifest))
	if h.LoadLength != wantLen || h.ExpandedLength != wantLen {
		t.Fatalf("lengths: load %#x expanded %#x want %#x", h.LoadLength, h.ExpandedLength, wantLen)
	}
	if len(h.Sections) != 2 {
		t.Fatalf("section count: %d", len(h.Sections))
	}
	if h.Sections[0].CopyOffset != 0 || h.Sections[1].CopyOffset != uint32(len(code)) {
		t.Fatalf("placement: %#x, %#x", h.Sections[0].CopyOffset, h.Sections[1].CopyOffset)
	}
	if !bytes.Equal(f.SectionData(0), code) {
		t.Fatalf("code payload mismatch")
	}
	if !bytes.Equal(f.SectionData(1), manifest) {
		t.Fatalf("manifest payload mismatch")
	}

	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() != int64(HeaderSize+len(code)+len(manifest)) {
		t.Fatalf("file size: got %d", st.Size())
	}
}

func TestBuildTooManySections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reqs := make([]SectionRequest, MaxSections+1)
	for i := range reqs {
		reqs[i] = SectionRequest{Type: TypeRawData, Source: BytesSource{Label: "blob", Data: []byte{1}}}
	}
	_, err := Build(BuildOptions{
		OutputPath: filepath.Join(dir, "fw.tftf"),
		Sections:   reqs,
	})
	if !errors.Is(err, ErrTooManySections) {
		t.Fatalf("error: got %v want ErrTooManySections", err)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Fatalf("capacity failure left artifacts: %v", names)
	}
}

func TestBuildNoSections(t *testing.T) {
	t.Parallel()

	_, err := Build(BuildOptions{OutputPath: filepath.Join(t.TempDir(), "fw.tftf")})
	if !errors.Is(err, ErrNoSections) {
		t.Fatalf("error: got %v want ErrNoSections", err)
	}
}

func TestBuildSourceReadErrorLeavesNoArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Build(BuildOptions{
		OutputPath: filepath.Join(dir, "fw.tftf"),
		Sections: []SectionRequest{
			{Type: TypeRawCode, Source: BytesSource{Label: "code", Data: []byte{1, 2, 3}}},
			{Type: TypeRawData, Source: failingSource{label: "broken.bin"}},
		},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "broken.bin") {
		t.Fatalf("error does not identify the section: %v", err)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Fatalf("failed build left artifacts: %v", names)
	}
}

func TestBuildMissingInputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Build(BuildOptions{
		OutputPath: filepath.Join(dir, "fw.tftf"),
		Sections: []SectionRequest{
			{Type: TypeRawCode, Source: FileSource(filepath.Join(dir, "missing.bin"))},
		},
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error: got %v want ErrNotExist", err)
	}
	if names := dirEntries(t, dir); len(names) != 0 {
		t.Fatalf("failed build left artifacts: %v", names)
	}
}

func TestBuildZeroLengthSection(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "fw.tftf")
	res, err := Build(BuildOptions{
		OutputPath: out,
		Sections: []SectionRequest{
			{Type: TypeRawCode, Source: BytesSource{Label: "code", Data: bytes.Repeat([]byte{1}, 64)}},
			{Type: TypeRawData, Source: BytesSource{Label: "empty"}},
			{Type: TypeManifest, Source: BytesSource{Label: "manifest", Data: []byte{9}}},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := res.Header.Sections
	if s[1].SectionLength != 0 || s[1].CopyOffset != 64 {
		t.Fatalf("empty section: %+v", s[1])
	}
	if s[2].CopyOffset != 64 {
		t.Fatalf("empty section advanced the cursor: %+v", s[2])
	}
	if len(res.Overlaps) != 0 {
		t.Fatalf("unexpected overlaps: %v", res.Overlaps)
	}
}

func TestBuildOverlapIsWarningNotError(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "fw.tftf")
	res, err := Build(BuildOptions{
		OutputPath: out,
		Sections: []SectionRequest{
			{Type: TypeRawCode, Source: BytesSource{Label: "a", Data: bytes.Repeat([]byte{1}, 100)}},
			{Type: TypeRawData, Source: BytesSource{Label: "b", Data: bytes.Repeat([]byte{2}, 100)}, Offset: 50},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Overlaps) != 1 {
		t.Fatalf("overlaps: got %d want 1", len(res.Overlaps))
	}

	// The file was still written and is readable.
	f, err := Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	if f.Header.Sections[1].CopyOffset != 50 {
		t.Fatalf("explicit offset not honoured: %+v", f.Header.Sections[1])
	}
}
