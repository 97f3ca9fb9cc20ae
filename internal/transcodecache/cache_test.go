package transcodecache

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sb3slim/internal/transcode"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time {
	f.t = f.t.Add(time.Second)
	return f.t
}

func openCache(t *testing.T, dir string, opts ...Option) *Cache {
	t.Helper()
	c, err := Open(context.Background(), dir, opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			c := openCache(t, t.TempDir(), WithCodec(codec))
			ctx := context.Background()
			payload := bytes.Repeat([]byte("RIFF-audio-"), 200)
			if err := c.Put(ctx, "k1", transcode.Output{Data: payload, Ext: "wav", Kind: transcode.KindAudio, DurationSeconds: 2.5}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			out, ok, err := c.Get(ctx, "k1")
			if err != nil || !ok {
				t.Fatalf("Get = %v, %v", ok, err)
			}
			if !bytes.Equal(out.Data, payload) || out.Ext != "wav" || out.Kind != transcode.KindAudio || out.DurationSeconds != 2.5 {
				t.Fatalf("unexpected output: ext=%q kind=%s duration=%v len=%d", out.Ext, out.Kind, out.DurationSeconds, len(out.Data))
			}
			stats, err := c.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats: %v", err)
			}
			if stats.Entries != 1 || stats.Bytes != int64(len(payload)) {
				t.Fatalf("unexpected stats: %+v", stats)
			}
			if codec != CodecNone && stats.StoredBytes >= stats.Bytes {
				t.Fatalf("expected %s to shrink repetitive data: %+v", codec, stats)
			}
		})
	}
}

func TestGetMissing(t *testing.T) {
	c := openCache(t, t.TempDir())
	if _, ok, err := c.Get(context.Background(), "absent"); ok || err != nil {
		t.Fatalf("Get(absent) = %v, %v", ok, err)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := openCache(t, t.TempDir(), WithMaxEntries(2), WithClock(clock.now))
	ctx := context.Background()
	put := func(key string) {
		t.Helper()
		if err := c.Put(ctx, key, transcode.Output{Data: []byte(key), Ext: "svg"}); err != nil {
			t.Fatalf("Put(%s): %v", key, err)
		}
	}
	put("a")
	put("b")
	if _, ok, _ := c.Get(ctx, "a"); !ok {
		t.Fatal("expected a to be present")
	}
	put("c")

	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatal("expected b to be evicted as least recently used")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok, _ := c.Get(ctx, key); !ok {
			t.Fatalf("expected %s to survive eviction", key)
		}
	}
}

func TestClear(t *testing.T) {
	c := openCache(t, t.TempDir())
	ctx := context.Background()
	for _, key := range []string{"x", "y"} {
		if err := c.Put(ctx, key, transcode.Output{Data: []byte("data"), Ext: "webp"}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Fatalf("Clear removed %d, want 2", n)
	}
	stats, _ := c.Stats(ctx)
	if stats.Entries != 0 {
		t.Fatalf("expected empty cache, got %+v", stats)
	}
}

func TestDirectoryLock(t *testing.T) {
	dir := t.TempDir()
	first := openCache(t, dir)
	if _, err := Open(context.Background(), dir); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked for second open, got %v", err)
	}
	if err := Remove(dir); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected Remove to respect the lock, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := Remove(dir); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, dbFileName)); !os.IsNotExist(err) {
		t.Fatalf("expected database removed, stat err = %v", err)
	}
}

func TestPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Put(context.Background(), "k", transcode.Output{Data: []byte("<svg/>"), Ext: "svg"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened := openCache(t, dir)
	out, ok, err := reopened.Get(context.Background(), "k")
	if err != nil || !ok || string(out.Data) != "<svg/>" || out.Kind != transcode.KindVector {
		t.Fatalf("Get after reopen = %+v, %v, %v", out, ok, err)
	}
}

func TestWorksAsTranscodeStore(t *testing.T) {
	var _ transcode.Store = (*Cache)(nil)
}
