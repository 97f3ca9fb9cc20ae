package testsupport

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/klauspost/compress/zip"
)

// Entry is one file placed in a fixture archive.
type Entry struct {
	Name string
	Data []byte
}

// BuildArchive zips entries in order.
func BuildArchive(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// ReadArchive unzips data into a name to bytes map and the entry order.
func ReadArchive(t testing.TB, data []byte) (map[string][]byte, []string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	files := make(map[string][]byte, len(zr.File))
	order := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var payload bytes.Buffer
		if _, err := payload.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		_ = rc.Close()
		files[f.Name] = payload.Bytes()
		order = append(order, f.Name)
	}
	return files, order
}

// ProjectJSON builds a minimal manifest with a stage and one sprite. The
// stage carries the costumes; the sprite carries the sounds.
func ProjectJSON(t testing.TB, costumes, sounds []string) []byte {
	t.Helper()
	ref := func(name string) map[string]any {
		id, ext := splitName(name)
		return map[string]any{"name": id, "assetId": id, "dataFormat": ext, "md5ext": name}
	}
	stage := map[string]any{"isStage": true, "name": "Stage", "costumes": []any{}, "sounds": []any{}}
	sprite := map[string]any{"isStage": false, "name": "Sprite1", "costumes": []any{}, "sounds": []any{}}
	for _, c := range costumes {
		stage["costumes"] = append(stage["costumes"].([]any), ref(c))
	}
	for _, s := range sounds {
		sprite["sounds"] = append(sprite["sounds"].([]any), ref(s))
	}
	doc := map[string]any{
		"targets":    []any{stage, sprite},
		"monitors":   []any{},
		"extensions": []any{},
		"meta":       map[string]any{"semver": "3.0.0"},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal project: %v", err)
	}
	return data
}

func splitName(name string) (string, string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}

// PNG renders a small gradient image.
func PNG(t testing.TB, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 5), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// SVG is a small vector costume with removable whitespace and comments.
const SVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="48" height="48" viewBox="0 0 48 48">
  <!-- costume1 -->
  <circle cx="24" cy="24" r="20" fill="#4c97ff" stroke="#3373cc" stroke-width="2" />
</svg>
`
