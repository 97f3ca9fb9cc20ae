package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrInvalidArchive reports input that cannot be read as a zip archive.
var ErrInvalidArchive = errors.New("not a valid zip archive")

// Entry is one file stored in an archive.
type Entry struct {
	Name string
	Data []byte
}

// Compression selects how Assemble stores entries.
type Compression int

const (
	Deflate Compression = iota
	Store
)

func (c Compression) String() string {
	if c == Store {
		return "store"
	}
	return "deflate"
}

// ParseCompression maps a config value to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "deflate":
		return Deflate, nil
	case "store":
		return Store, nil
	default:
		return Deflate, fmt.Errorf("unknown compression %q", name)
	}
}

func (c Compression) method() uint16 {
	if c == Store {
		return zip.Store
	}
	return zip.Deflate
}

// Extract reads every file entry of the archive in listing order. Directory
// entries are skipped. When a name repeats, the first entry wins.
func Extract(data []byte) ([]Entry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	entries := make([]Entry, 0, len(reader.File))
	seen := make(map[string]struct{}, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if _, dup := seen[f.Name]; dup {
			continue
		}
		seen[f.Name] = struct{}{}
		payload, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidArchive, f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Data: payload})
	}
	return entries, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Writer accumulates entries for a new archive. Adding a name that is already
// present is a no-op, so content-addressed assets that collapse to the same
// name are stored once.
type Writer struct {
	entries []Entry
	index   map[string]int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{index: make(map[string]int)}
}

// Add stores data under name and reports whether it was newly added.
func (w *Writer) Add(name string, data []byte) bool {
	if _, ok := w.index[name]; ok {
		return false
	}
	w.index[name] = len(w.entries)
	w.entries = append(w.entries, Entry{Name: name, Data: data})
	return true
}

// Has reports whether name has been added.
func (w *Writer) Has(name string) bool {
	_, ok := w.index[name]
	return ok
}

// Len returns the number of distinct entries.
func (w *Writer) Len() int {
	return len(w.entries)
}

// Names lists entry names in insertion order.
func (w *Writer) Names() []string {
	names := make([]string, len(w.entries))
	for i, e := range w.entries {
		names[i] = e.Name
	}
	return names
}

// Assemble encodes all entries, in insertion order, as a single zip archive.
func (w *Writer) Assemble(compression Compression) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range w.entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: compression.method()})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
