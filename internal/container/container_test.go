package container

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
)

func buildZip(t *testing.T, files ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("create %s: %v", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPreservesOrderAndSkipsDirectories(t *testing.T) {
	data := buildZip(t,
		Entry{Name: "project.json", Data: []byte(`{}`)},
		Entry{Name: "assets/", Data: nil},
		Entry{Name: "b.svg", Data: []byte("<svg/>")},
		Entry{Name: "a.png", Data: []byte("png")},
	)
	entries, err := Extract(data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	if want := []string{"project.json", "b.svg", "a.png"}; !slices.Equal(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if string(entries[1].Data) != "<svg/>" {
		t.Fatalf("unexpected payload %q", entries[1].Data)
	}
}

func TestExtractRejectsGarbage(t *testing.T) {
	if _, err := Extract([]byte("definitely not a zip")); !errors.Is(err, ErrInvalidArchive) {
		t.Fatalf("expected ErrInvalidArchive, got %v", err)
	}
}

func TestWriterDeduplicatesAndRoundTrips(t *testing.T) {
	w := NewWriter()
	if !w.Add("x.webp", []byte("one")) {
		t.Fatal("expected first add to succeed")
	}
	if w.Add("x.webp", []byte("one")) {
		t.Fatal("expected duplicate add to be ignored")
	}
	w.Add("project.json", []byte(`{"targets":[]}`))
	if w.Len() != 2 || !w.Has("project.json") {
		t.Fatalf("unexpected writer state: %v", w.Names())
	}

	for _, mode := range []Compression{Deflate, Store} {
		archive, err := w.Assemble(mode)
		if err != nil {
			t.Fatalf("Assemble(%s): %v", mode, err)
		}
		entries, err := Extract(archive)
		if err != nil {
			t.Fatalf("Extract(%s): %v", mode, err)
		}
		if len(entries) != 2 || entries[0].Name != "x.webp" || string(entries[1].Data) != `{"targets":[]}` {
			t.Fatalf("unexpected round trip for %s: %+v", mode, entries)
		}
		reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
		if err != nil {
			t.Fatalf("reopen: %v", err)
		}
		if reader.File[0].Method != mode.method() {
			t.Fatalf("expected method %d, got %d", mode.method(), reader.File[0].Method)
		}
	}
}

func TestParseCompression(t *testing.T) {
	if c, err := ParseCompression(" STORE "); err != nil || c != Store {
		t.Fatalf("ParseCompression(STORE) = %v, %v", c, err)
	}
	if c, err := ParseCompression(""); err != nil || c != Deflate {
		t.Fatalf("ParseCompression(\"\") = %v, %v", c, err)
	}
	if _, err := ParseCompression("bzip2"); err == nil {
		t.Fatal("expected error for unknown compression")
	}
}
