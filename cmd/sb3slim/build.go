package main

import (
	"context"
	"errors"
	"log/slog"

	"sb3slim/internal/config"
	"sb3slim/internal/container"
	"sb3slim/internal/contenthash"
	"sb3slim/internal/logging"
	"sb3slim/internal/media/ffmpeg"
	"sb3slim/internal/metrics"
	"sb3slim/internal/pipeline"
	"sb3slim/internal/services"
	"sb3slim/internal/transcode"
	"sb3slim/internal/transcodecache"
)

type buildOptions struct {
	useCache bool
	reporter pipeline.Reporter
	metrics  *metrics.Recorder
}

// runtime bundles the pipeline with the resources it must release.
type runtime struct {
	pipeline *pipeline.Pipeline
	engine   *ffmpeg.Engine
	cache    *transcodecache.Cache
}

func (r *runtime) Close() error {
	var errs []error
	if r.engine != nil {
		errs = append(errs, r.engine.Close())
	}
	if r.cache != nil {
		errs = append(errs, r.cache.Close())
	}
	return errors.Join(errs...)
}

func newTranscoder(cfg *config.Config, engine transcode.AudioEngine) *transcode.Transcoder {
	return transcode.New(transcode.Options{
		Vector:      transcode.NewSVGMinifier(cfg.Vector.MaxPasses),
		Multipass:   cfg.Vector.Multipass,
		WebPQuality: cfg.Image.WebPQuality,
		Audio:       engine,
		AudioPolicy: transcode.AudioPolicy{
			LosslessMaxSeconds: cfg.Audio.LosslessMaxSeconds,
			SampleRate:         cfg.Audio.SampleRate,
			Channels:           cfg.Audio.Channels,
			MP3Quality:         cfg.Audio.MP3Quality,
		},
	})
}

func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*transcodecache.Cache, error) {
	codec, err := transcodecache.ParseCodec(cfg.Cache.Compression)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "cache", "open", "", err)
	}
	return transcodecache.Open(ctx, cfg.Paths.CacheDir,
		transcodecache.WithCodec(codec),
		transcodecache.WithMaxEntries(cfg.Cache.MaxEntries),
		transcodecache.WithLogger(logger),
	)
}

func buildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts buildOptions) (*runtime, error) {
	hasher, err := contenthash.New(cfg.Naming.Hash)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "naming", "init", "", err)
	}
	compression, err := container.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "output", "init", "", err)
	}

	rt := &runtime{
		engine: ffmpeg.New(cfg.FFmpegBinary(), ffmpeg.WithLogger(logger)),
	}
	base := newTranscoder(cfg, rt.engine)
	var tr pipeline.Transcoder = base

	if opts.useCache && cfg.Cache.Enabled {
		cache, err := openCache(ctx, cfg, logger)
		switch {
		case errors.Is(err, transcodecache.ErrLocked):
			logging.WarnWithContext(logger, "transcode cache busy; continuing without it", "cache_locked",
				logging.String(logging.FieldErrorHint, "wait for the other sb3slim run to finish"),
				logging.String(logging.FieldImpact, "every asset is transcoded from scratch"),
			)
		case err != nil:
			_ = rt.Close()
			return nil, err
		default:
			rt.cache = cache
			tr = transcode.NewCached(base, cache, logger)
		}
	}

	p, err := pipeline.New(pipeline.Options{
		Transcoder:  tr,
		Hasher:      hasher,
		Compression: compression,
		Reporter:    opts.reporter,
		Logger:      logger,
		Metrics:     opts.metrics,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.pipeline = p
	return rt, nil
}
