package transcodecache

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestEncodeFallsBackForIncompressibleData(t *testing.T) {
	noise := make([]byte, 4096)
	if _, err := rand.Read(noise); err != nil {
		t.Fatalf("rand: %v", err)
	}
	for _, codec := range []Codec{CodecLZ4, CodecZstd} {
		stored, used, err := encode(noise, codec)
		if err != nil {
			t.Fatalf("encode(%s): %v", codec, err)
		}
		if used != CodecNone || !bytes.Equal(stored, noise) {
			t.Fatalf("expected %s to fall back to none for random data, got %s", codec, used)
		}
	}
}

func TestDecodeRejectsSizeMismatch(t *testing.T) {
	stored, used, err := encode(bytes.Repeat([]byte("a"), 1024), CodecZstd)
	if err != nil || used != CodecZstd {
		t.Fatalf("encode: %v (%s)", err, used)
	}
	if _, err := decode(stored, used, 1000); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := decode([]byte("abc"), CodecNone, 4); err == nil {
		t.Fatal("expected size mismatch error for raw blob")
	}
}

func TestParseCodec(t *testing.T) {
	tests := map[string]Codec{"": CodecZstd, "ZSTD": CodecZstd, "lz4": CodecLZ4, "none": CodecNone}
	for in, want := range tests {
		got, err := ParseCodec(in)
		if err != nil || got != want {
			t.Fatalf("ParseCodec(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseCodec("gzip"); err == nil {
		t.Fatal("expected error for unknown codec")
	}
}
