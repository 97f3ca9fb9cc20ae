package transcode

import (
	"context"
	"encoding/hex"
	"log/slog"

	"github.com/zeebo/blake3"

	"sb3slim/internal/logging"
)

// Store persists transcoded outputs by key.
type Store interface {
	Get(ctx context.Context, key string) (Output, bool, error)
	Put(ctx context.Context, key string, out Output) error
}

// Cached wraps a Transcoder with a persistent output store. Only successful,
// non-opaque transcodes are stored; store failures degrade to a cache miss.
type Cached struct {
	inner  *Transcoder
	store  Store
	logger *slog.Logger
}

// NewCached decorates inner with store.
func NewCached(inner *Transcoder, store Store, logger *slog.Logger) *Cached {
	return &Cached{inner: inner, store: store, logger: logging.NewComponentLogger(logger, "transcode-cache")}
}

// Prepare delegates to the wrapped transcoder.
func (c *Cached) Prepare(ctx context.Context) error {
	return c.inner.Prepare(ctx)
}

// Transcode returns a stored output when one exists for the same settings and
// source bytes, and otherwise transcodes and stores the result.
func (c *Cached) Transcode(ctx context.Context, p string, data []byte) (Output, error) {
	kind := KindForPath(p)
	if kind == KindOpaque {
		return c.inner.Transcode(ctx, p, data)
	}

	key := CacheKey(c.inner.Fingerprint(), p, data)
	if out, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache lookup failed", logging.String(logging.FieldAsset, p), logging.Error(err))
	} else if ok {
		c.logger.Debug("cache hit", logging.String(logging.FieldAsset, p), logging.String(logging.FieldEventType, "cache_hit"))
		out.Kind = kind
		out.Cached = true
		return out, nil
	}

	out, err := c.inner.Transcode(ctx, p, data)
	if err != nil {
		return Output{}, err
	}
	if err := c.store.Put(ctx, key, out); err != nil {
		c.logger.Warn("cache store failed", logging.String(logging.FieldAsset, p), logging.Error(err))
	}
	return out, nil
}

// CacheKey derives the store key from the transcoder fingerprint, the source
// extension, and the source bytes.
func CacheKey(fingerprint, p string, data []byte) string {
	h := blake3.New()
	_, _ = h.Write([]byte(fingerprint))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(Extension(p)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
