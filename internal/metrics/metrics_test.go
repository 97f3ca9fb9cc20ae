package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAsset(t *testing.T) {
	r := New()
	r.ObserveAsset("raster", OutcomeOptimized, 1000, 400, 20*time.Millisecond)
	r.ObserveAsset("raster", OutcomeFallback, 50, 50, 0)
	r.ObserveAsset("opaque", OutcomePassthrough, 10, 10, 0)

	if got := testutil.ToFloat64(r.assets.WithLabelValues("raster", OutcomeOptimized)); got != 1 {
		t.Fatalf("optimized raster = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.assetBytes.WithLabelValues("in")); got != 1060 {
		t.Fatalf("bytes in = %v, want 1060", got)
	}
	if got := testutil.ToFloat64(r.assetBytes.WithLabelValues("out")); got != 460 {
		t.Fatalf("bytes out = %v, want 460", got)
	}
	if n := testutil.CollectAndCount(r.assetDuration); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveAsset("vector", OutcomeOptimized, 1, 1, time.Millisecond)
	r.ObserveRun("complete", time.Second)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("WriteTextfile on nil: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveRun("complete", 1500*time.Millisecond)
	path := filepath.Join(t.TempDir(), "nested", "sb3slim.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`sb3slim_runs_total{outcome="complete"} 1`,
		`sb3slim_runs_duration_seconds_count{outcome="complete"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in textfile:\n%s", want, text)
		}
	}
}
