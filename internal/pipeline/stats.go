package pipeline

import (
	"fmt"
	"math"
)

const mebibyte = 1024 * 1024

// Stats compares the input and output archive sizes.
type Stats struct {
	OriginalSize int64   `json:"original_size"`
	NewSize      int64   `json:"new_size"`
	Saved        int64   `json:"saved"`
	Percent      float64 `json:"percent"`
}

// ComputeStats derives the reduction figures. Percent is rounded to one decimal.
func ComputeStats(originalSize, newSize int64) Stats {
	s := Stats{OriginalSize: originalSize, NewSize: newSize, Saved: originalSize - newSize}
	if originalSize > 0 {
		s.Percent = math.Round(float64(s.Saved)/float64(originalSize)*1000) / 10
	}
	return s
}

// SavedLabel formats the saved amount in MB above one mebibyte, else in KB.
func (s Stats) SavedLabel() string {
	if s.Saved > mebibyte {
		return fmt.Sprintf("%.1f MB", float64(s.Saved)/mebibyte)
	}
	return fmt.Sprintf("%.0f KB", float64(s.Saved)/1024)
}

// Summary is the one-paragraph result shown after a successful run.
func (s Stats) Summary() string {
	return fmt.Sprintf("Original: %.2f MB\nOptimized: %.2f MB\nSaved %s (%.1f%% reduction)",
		float64(s.OriginalSize)/mebibyte,
		float64(s.NewSize)/mebibyte,
		s.SavedLabel(),
		s.Percent,
	)
}
