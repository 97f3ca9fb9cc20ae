package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckFFmpegExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not meaningful on windows")
	}
	tmp := t.TempDir()
	ffmpegPath := filepath.Join(tmp, "ffmpeg")
	if err := os.WriteFile(ffmpegPath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}

	status := CheckFFmpeg(ffmpegPath)
	if !status.Available {
		t.Fatalf("expected ffmpeg to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected command %q, got %q", ffmpegPath, status.Command)
	}

	plain := filepath.Join(tmp, "not-exec")
	if err := os.WriteFile(plain, []byte("data"), 0o644); err != nil {
		t.Fatalf("write plain file: %v", err)
	}
	if status := CheckFFmpeg(plain); status.Available {
		t.Fatal("expected non-executable file to be unavailable")
	}
}

func TestCheckFFmpegPathLookup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	binDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(binDir, "ffmpeg"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir)

	status := CheckFFmpeg("")
	if !status.Available {
		t.Fatalf("expected ffmpeg on PATH, got %q", status.Detail)
	}
	if status.Command != filepath.Join(binDir, "ffmpeg") {
		t.Fatalf("unexpected resolved command %q", status.Command)
	}

	t.Setenv("PATH", t.TempDir())
	if status := CheckFFmpeg("ffmpeg"); status.Available {
		t.Fatal("expected ffmpeg to be missing from empty PATH")
	}
}
