package manifest

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

type mapLookup map[string]string

func (m mapLookup) Lookup(p string) (string, bool) {
	v, ok := m[p]
	return v, ok
}

const sampleProject = `{
  "targets": [
    {
      "isStage": true,
      "name": "Stage",
      "costumes": [
        {"name": "backdrop1", "assetId": "abc123", "dataFormat": "png", "md5ext": "abc123.png", "rotationCenterX": 240}
      ],
      "sounds": []
    },
    {
      "isStage": false,
      "name": "Sprite1",
      "costumes": [
        {"name": "a<b", "bitmapResolution": 1, "dataFormat": "svg", "assetId": "keep00", "md5ext": "keep00.svg"}
      ],
      "sounds": [
        {"name": "pop", "assetId": "def456", "dataFormat": "wav", "md5ext": "def456.wav", "rate": 48000, "sampleCount": 1123}
      ]
    }
  ],
  "monitors": [{"id": "abc123.png"}],
  "extensions": ["pen"],
  "meta": {"semver": "3.0.0", "vm": "0.2.0"}
}`

func TestRewriteUpdatesKnownReferences(t *testing.T) {
	m, err := Parse([]byte(sampleProject))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	n, err := m.Rewrite(mapLookup{
		"abc123.png": "0f0f.webp",
		"def456.wav": "1a1a.wav",
	})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if n != 2 {
		t.Fatalf("rewritten = %d, want 2", n)
	}
	out, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var doc struct {
		Targets []struct {
			Costumes []map[string]any `json:"costumes"`
			Sounds   []map[string]any `json:"sounds"`
		} `json:"targets"`
		Monitors []map[string]any `json:"monitors"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	costume := doc.Targets[0].Costumes[0]
	if costume["assetId"] != "0f0f" || costume["dataFormat"] != "webp" || costume["md5ext"] != "0f0f.webp" {
		t.Fatalf("costume fields not rewritten consistently: %v", costume)
	}
	if costume["rotationCenterX"] != float64(240) {
		t.Fatalf("unrelated costume field lost: %v", costume)
	}
	sound := doc.Targets[1].Sounds[0]
	if sound["assetId"] != "1a1a" || sound["dataFormat"] != "wav" || sound["md5ext"] != "1a1a.wav" {
		t.Fatalf("sound fields not rewritten consistently: %v", sound)
	}
	if doc.Monitors[0]["id"] != "abc123.png" {
		t.Fatalf("monitors must pass through untouched: %v", doc.Monitors)
	}
}

func TestRewriteLeavesUnknownEntriesByteIdentical(t *testing.T) {
	m, err := Parse([]byte(sampleProject))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := m.Rewrite(mapLookup{"abc123.png": "0f0f.webp"}); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	out, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"name":"a<b","bitmapResolution":1,"dataFormat":"svg","assetId":"keep00","md5ext":"keep00.svg"}`
	if !strings.Contains(string(out), want) {
		t.Fatalf("expected untouched costume %s in output:\n%s", want, out)
	}
	wantSound := `{"name":"pop","assetId":"def456","dataFormat":"wav","md5ext":"def456.wav","rate":48000,"sampleCount":1123}`
	if !strings.Contains(string(out), wantSound) {
		t.Fatalf("expected untouched sound %s in output:\n%s", wantSound, out)
	}
}

func TestMarshalIsCompactAndOrdered(t *testing.T) {
	m, err := Parse([]byte(sampleProject))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.ContainsAny(string(out), "\n\t") {
		t.Fatalf("expected compact output, got:\n%s", out)
	}
	order := []string{`"targets"`, `"monitors"`, `"extensions"`, `"meta"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(string(out), key)
		if idx <= last {
			t.Fatalf("top-level key %s out of order in %s", key, out)
		}
		last = idx
	}
}

func TestReferences(t *testing.T) {
	m, err := Parse([]byte(sampleProject))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	refs, err := m.References()
	if err != nil {
		t.Fatalf("References: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected 3 references, got %d", len(refs))
	}
	if refs[2].List != "sounds" || refs[2].Target != 1 || refs[2].MD5Ext != "def456.wav" {
		t.Fatalf("unexpected sound reference: %+v", refs[2])
	}
}

func TestRewriteAddsMissingIdentityFields(t *testing.T) {
	m, err := Parse([]byte(`{"targets":[{"costumes":[{"md5ext":"old.png"}]}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := m.Rewrite(mapLookup{"old.png": "new.webp"}); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	out, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"targets":[{"costumes":[{"md5ext":"new.webp","assetId":"new","dataFormat":"webp"}]}]}`
	if string(out) != want {
		t.Fatalf("Marshal = %s, want %s", out, want)
	}
}

func TestParseRejectsInvalidManifests(t *testing.T) {
	for name, input := range map[string]string{
		"not json":       `{`,
		"array":          `[]`,
		"no targets":     `{"monitors":[]}`,
		"targets object": `{"targets":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(input)); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
