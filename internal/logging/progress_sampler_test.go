package logging_test

import (
	"testing"

	"sb3slim/internal/logging"
)

func TestProgressSamplerSteps(t *testing.T) {
	s := logging.NewProgressSampler(10)

	steps := []struct {
		fraction float64
		state    string
		want     bool
	}{
		{0.05, "Loading", true},
		{0.15, "Optimizing", true},
		{0.18, "Optimizing", false},
		{0.21, "Optimizing", true},
		{0.20, "Optimizing", false},
		{0.95, "Finalizing", true},
		{1.0, "Finalizing", true},
		{1.0, "Complete", true},
		{1.5, "Complete", false},
	}
	for i, step := range steps {
		if got := s.Observe(step.fraction, step.state); got != step.want {
			t.Fatalf("step %d (%v, %s): got %v, want %v", i, step.fraction, step.state, got, step.want)
		}
	}
}

func TestProgressSamplerNilLogsEverything(t *testing.T) {
	var s *logging.ProgressSampler
	if !s.Observe(0.5, "Optimizing") || !s.Observe(0.5, "Optimizing") {
		t.Fatal("nil sampler should always log")
	}
}

func TestProgressSamplerDefaultSteps(t *testing.T) {
	s := logging.NewProgressSampler(0)
	if !s.Observe(0, "Optimizing") {
		t.Fatal("first update should log")
	}
	if s.Observe(0.04, "Optimizing") {
		t.Fatal("same 5% step should not log")
	}
	if !s.Observe(0.05, "Optimizing") {
		t.Fatal("next 5% step should log")
	}
}
