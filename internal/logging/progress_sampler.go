package logging

import "math"

// ProgressSampler thins progress logging to one record per step of the
// overall fraction, plus one whenever the state label changes.
type ProgressSampler struct {
	steps     int
	state     string
	lastStep  int
	sawRecord bool
}

// NewProgressSampler samples every 1/steps of progress. Non-positive values
// fall back to 20 steps.
func NewProgressSampler(steps int) *ProgressSampler {
	if steps <= 0 {
		steps = 20
	}
	return &ProgressSampler{steps: steps}
}

// Observe reports whether the update at fraction (0..1) in state should be
// logged. A nil sampler logs everything.
func (s *ProgressSampler) Observe(fraction float64, state string) bool {
	if s == nil {
		return true
	}
	step := int(math.Floor(math.Min(math.Max(fraction, 0), 1) * float64(s.steps)))
	switch {
	case !s.sawRecord, state != s.state:
		s.sawRecord = true
		s.state = state
		s.lastStep = step
		return true
	case step > s.lastStep:
		s.lastStep = step
		return true
	default:
		return false
	}
}
