package ffmpeg

import (
	"math"
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{"short clip", "  Duration: 00:00:02.00, start: 0.000000, bitrate: 256 kb/s", 2, true},
		{"hours and minutes", "Duration: 1:02:03.50, bitrate", 3723.5, true},
		{"first match wins", "Duration: 00:00:04.99\nDuration: 00:10:00.00", 4.99, true},
		{"not available", "Duration: N/A, bitrate: N/A", 0, false},
		{"missing", "Input #0, wav, from 'in.wav':", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDuration(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("duration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	got := parseVersion("ffmpeg version n7.0.1 Copyright (c) 2000-2024\nbuilt with gcc")
	if got != "n7.0.1" {
		t.Fatalf("parseVersion = %q", got)
	}
	if parseVersion("garbage") != "" {
		t.Fatal("expected empty version for unrecognized output")
	}
}
