package contenthash

import "testing"

func TestMD5DigestMatchesKnownValue(t *testing.T) {
	got := MD5{}.Digest([]byte("hello"))
	if got != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected md5 digest: %s", got)
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	for _, algo := range []string{AlgorithmMD5, AlgorithmBLAKE3} {
		h, err := New(algo)
		if err != nil {
			t.Fatalf("New(%q): %v", algo, err)
		}
		data := []byte{0x00, 0x01, 0x02, 0xff}
		first := h.Digest(data)
		second := h.Digest(append([]byte(nil), data...))
		if first != second {
			t.Fatalf("%s digest not deterministic: %s vs %s", algo, first, second)
		}
		if first == h.Digest([]byte{0x00}) {
			t.Fatalf("%s digest collided for different inputs", algo)
		}
		if h.Algorithm() != algo {
			t.Fatalf("Algorithm() = %q, want %q", h.Algorithm(), algo)
		}
	}
}

func TestBLAKE3DigestLength(t *testing.T) {
	if got := len(BLAKE3{}.Digest(nil)); got != 64 {
		t.Fatalf("expected 64 hex chars, got %d", got)
	}
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	if _, err := New("sha1"); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
	h, err := New("")
	if err != nil || h.Algorithm() != AlgorithmMD5 {
		t.Fatalf("expected md5 default, got %v %v", h, err)
	}
}

func TestFilenameAndSplit(t *testing.T) {
	name := Filename("abc123", ".WEBP")
	if name != "abc123.webp" {
		t.Fatalf("Filename = %q", name)
	}
	id, ext := SplitFilename(name)
	if id != "abc123" || ext != "webp" {
		t.Fatalf("SplitFilename = %q %q", id, ext)
	}
	id, ext = SplitFilename("noext")
	if id != "noext" || ext != "" {
		t.Fatalf("SplitFilename without ext = %q %q", id, ext)
	}
	id, ext = SplitFilename("a.b.svg")
	if id != "a.b" || ext != "svg" {
		t.Fatalf("SplitFilename uses last dot, got %q %q", id, ext)
	}
}
