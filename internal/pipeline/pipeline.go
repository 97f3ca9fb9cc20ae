package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"sb3slim/internal/container"
	"sb3slim/internal/contenthash"
	"sb3slim/internal/logging"
	"sb3slim/internal/manifest"
	"sb3slim/internal/metrics"
	"sb3slim/internal/registry"
	"sb3slim/internal/services"
	"sb3slim/internal/transcode"
)

// Transcoder converts one asset. Both *transcode.Transcoder and
// *transcode.Cached satisfy it.
type Transcoder interface {
	Prepare(ctx context.Context) error
	Transcode(ctx context.Context, p string, data []byte) (transcode.Output, error)
}

// Options configures a Pipeline.
type Options struct {
	Transcoder  Transcoder
	Hasher      contenthash.Hasher
	Compression container.Compression
	Reporter    Reporter
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
}

// Pipeline runs repackaging jobs. It holds no per-run state and may be
// reused; runs must not overlap when the transcoder shares an audio engine
// that is not safe to reuse concurrently.
type Pipeline struct {
	transcoder  Transcoder
	hasher      contenthash.Hasher
	compression container.Compression
	reporter    Reporter
	logger      *slog.Logger
	metrics     *metrics.Recorder
}

// New validates opts and constructs a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Transcoder == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "transcoder is required", nil)
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher = contenthash.MD5{}
	}
	return &Pipeline{
		transcoder:  opts.Transcoder,
		hasher:      hasher,
		compression: opts.Compression,
		reporter:    opts.Reporter,
		logger:      logging.NewComponentLogger(opts.Logger, "pipeline"),
		metrics:     opts.Metrics,
	}, nil
}

// Counts tallies how each asset was handled.
type Counts struct {
	Optimized    int `json:"optimized"`
	Cached       int `json:"cached"`
	Fallback     int `json:"fallback"`
	Passthrough  int `json:"passthrough"`
	Deduplicated int `json:"deduplicated"`
}

// Result is the outcome of a completed run.
type Result struct {
	RunID       string
	Archive     []byte
	Stats       Stats
	Counts      Counts
	Rewritten   int
	Failures    []AssetFailure
	EngineError string
}

// Run repackages the archive in input. It returns ErrFatalInput when the
// input is unusable and ErrCancelled when ctx is cancelled before the
// archive is assembled; in both cases no archive is produced.
func (p *Pipeline) Run(ctx context.Context, input []byte) (result *Result, err error) {
	r := &run{
		p:      p,
		id:     uuid.NewString(),
		state:  StateIdle,
		writer: container.NewWriter(),
		reg:    registry.New(),
	}
	ctx = services.WithRunID(ctx, r.id)
	r.logger = logging.WithContext(ctx, p.logger)
	r.sampler = logging.NewProgressSampler(10)

	started := time.Now()
	defer func() {
		outcome := services.Outcome(err)
		p.metrics.ObserveRun(outcome, time.Since(started))
		r.logger.Info("run finished",
			logging.String("outcome", outcome),
			logging.Duration("elapsed", time.Since(started)),
		)
	}()

	result, err = r.execute(ctx, input)
	switch {
	case err == nil:
	case errors.Is(err, ErrCancelled):
		r.enter(StateCancelled, StatusCancelled, r.progress)
	default:
		r.enter(StateError, statusErrorPrefix+errorReason(err), r.progress)
	}
	return result, err
}

type run struct {
	p       *Pipeline
	id      string
	logger  *slog.Logger
	sampler *logging.ProgressSampler

	state    State
	progress float64

	writer   *container.Writer
	reg      *registry.Registry
	counts   Counts
	failures []AssetFailure
}

func (r *run) execute(ctx context.Context, input []byte) (*Result, error) {
	r.enter(StateLoading, StatusLoading, 0)
	r.logger.Info("loading archive", logging.Int("input_bytes", len(input)))

	entries, doc, err := load(input)
	if err != nil {
		return nil, err
	}
	r.enter(StateLoading, StatusLoading, progressLoaded)

	engineErr := r.prepareEngine(ctx, entries)
	if err := cancelled(ctx); err != nil {
		return nil, err
	}

	assets := make([]container.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name != manifest.Filename {
			assets = append(assets, e)
		}
	}
	r.enter(StateOptimizing, StatusOptimizing, optimizeStart)
	for i, asset := range assets {
		if err := cancelled(ctx); err != nil {
			r.logger.Info("run cancelled", logging.Int("processed", i), logging.Int("total", len(assets)))
			return nil, err
		}
		r.processAsset(ctx, asset)
		progress := optimizeStart + (optimizeEnd-optimizeStart)*float64(i+1)/float64(len(assets))
		r.report(Update{
			State:     StateOptimizing,
			Status:    StatusOptimizing,
			Progress:  progress,
			Processed: i + 1,
			Total:     len(assets),
			Asset:     asset.Name,
		})
	}

	r.enter(StateFinalizing, StatusFinalizing, optimizeEnd)
	r.warnMissingReferences(doc, entries)
	rewritten, err := doc.Rewrite(r.reg)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "rewrite manifest", "", err)
	}
	projectJSON, err := doc.Marshal()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "serialize manifest", "", err)
	}
	r.writer.Add(manifest.Filename, projectJSON)

	archive, err := r.writer.Assemble(r.p.compression)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "pipeline", "assemble archive", "", err)
	}

	stats := ComputeStats(int64(len(input)), int64(len(archive)))
	r.enter(StateComplete, StatusComplete, progressFinalized)
	r.logger.Info("archive repackaged",
		logging.Int64("original_bytes", stats.OriginalSize),
		logging.Int64("output_bytes", stats.NewSize),
		logging.Float64("percent_saved", stats.Percent),
		logging.Int("rewritten_references", rewritten),
		logging.Int("fallbacks", r.counts.Fallback),
	)
	return &Result{
		RunID:       r.id,
		Archive:     archive,
		Stats:       stats,
		Counts:      r.counts,
		Rewritten:   rewritten,
		Failures:    r.failures,
		EngineError: engineErr,
	}, nil
}

// load extracts the archive and parses its manifest.
func load(input []byte) ([]container.Entry, *manifest.Manifest, error) {
	entries, err := container.Extract(input)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFatalInput, err)
	}
	var raw []byte
	found := false
	for _, e := range entries {
		if e.Name == manifest.Filename {
			raw, found = e.Data, true
			break
		}
	}
	if !found {
		return nil, nil, fmt.Errorf("%w: %s not found in archive", ErrFatalInput, manifest.Filename)
	}
	doc, err := manifest.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrFatalInput, err)
	}
	return entries, doc, nil
}

// prepareEngine loads the audio engine when the archive holds audio. A load
// failure is not fatal: audio assets will fail individually and fall back.
func (r *run) prepareEngine(ctx context.Context, entries []container.Entry) string {
	hasAudio := false
	for _, e := range entries {
		if transcode.KindForPath(e.Name) == transcode.KindAudio {
			hasAudio = true
			break
		}
	}
	if !hasAudio {
		return ""
	}
	r.enter(StateLoading, StatusEngine, progressLoaded)
	if err := r.p.transcoder.Prepare(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(r.logger, "audio engine unavailable", "engine_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffmpeg or set audio.ffmpeg_binary"),
			logging.String(logging.FieldImpact, "audio assets are copied unchanged"),
		)
		return err.Error()
	}
	return ""
}

// processAsset transcodes one entry and stores the result, falling back to
// the original bytes and name on failure. The transcode itself is not
// interrupted by cancellation.
func (r *run) processAsset(ctx context.Context, asset container.Entry) {
	assetCtx := services.WithAssetPath(context.WithoutCancel(ctx), asset.Name)
	started := time.Now()
	out, err := r.p.transcoder.Transcode(assetCtx, asset.Name, asset.Data)
	elapsed := time.Since(started)
	kind := transcode.KindForPath(asset.Name).String()

	if err != nil {
		r.failures = append(r.failures, AssetFailure{Path: asset.Name, Err: err})
		r.counts.Fallback++
		r.writer.Add(asset.Name, asset.Data)
		r.p.metrics.ObserveAsset(kind, metrics.OutcomeFallback, len(asset.Data), len(asset.Data), elapsed)
		logging.WarnWithContext(logging.WithContext(assetCtx, r.logger), "asset transcode failed; keeping original", "asset_fallback",
			logging.String("kind", kind),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the asset opens in the Scratch editor"),
			logging.String(logging.FieldImpact, "asset stored unoptimized under its original name"),
		)
		return
	}

	if out.Kind == transcode.KindOpaque {
		r.counts.Passthrough++
		r.writer.Add(asset.Name, asset.Data)
		r.p.metrics.ObserveAsset(kind, metrics.OutcomePassthrough, len(asset.Data), len(asset.Data), elapsed)
		return
	}

	name := contenthash.Filename(r.p.hasher.Digest(out.Data), out.Ext)
	r.reg.Record(asset.Name, name)
	if !r.writer.Add(name, out.Data) {
		r.counts.Deduplicated++
	}
	outcome := metrics.OutcomeOptimized
	if out.Cached {
		outcome = metrics.OutcomeCached
		r.counts.Cached++
	} else {
		r.counts.Optimized++
	}
	r.p.metrics.ObserveAsset(kind, outcome, len(asset.Data), len(out.Data), elapsed)
	logging.WithContext(assetCtx, r.logger).Debug("asset processed",
		logging.String("kind", kind),
		logging.String("new_name", name),
		logging.Int("bytes_in", len(asset.Data)),
		logging.Int("bytes_out", len(out.Data)),
		logging.Bool("cached", out.Cached),
	)
}

// warnMissingReferences logs manifest entries whose asset file is absent
// from the archive. They are left untouched by the rewrite.
func (r *run) warnMissingReferences(doc *manifest.Manifest, entries []container.Entry) {
	refs, err := doc.References()
	if err != nil {
		return
	}
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[e.Name] = struct{}{}
	}
	for _, ref := range refs {
		if ref.MD5Ext == "" {
			continue
		}
		if _, ok := present[ref.MD5Ext]; !ok {
			logging.WarnWithContext(r.logger, "manifest references a missing asset", "missing_asset",
				logging.String(logging.FieldAsset, ref.MD5Ext),
				logging.String("list", ref.List),
				logging.Int("target", ref.Target),
				logging.String(logging.FieldErrorHint, "re-save the project from the Scratch editor"),
				logging.String(logging.FieldImpact, "reference left unchanged"),
			)
		}
	}
}

func (r *run) enter(state State, status string, progress float64) {
	r.report(Update{State: state, Status: status, Progress: progress})
}

func (r *run) report(u Update) {
	if !CanTransition(r.state, u.State) {
		r.logger.Debug("ignoring invalid state transition",
			logging.String("from", r.state.String()),
			logging.String("to", u.State.String()),
		)
		return
	}
	if u.Progress < r.progress {
		u.Progress = r.progress
	}
	r.state = u.State
	r.progress = u.Progress
	if r.sampler.Observe(u.Progress, u.State.String()) {
		r.logger.Debug("progress",
			logging.String("state", u.State.String()),
			logging.Float64("percent", u.Progress*100),
			logging.Int("processed", u.Processed),
			logging.Int("total", u.Total),
		)
	}
	if r.p.reporter != nil {
		r.p.reporter(u)
	}
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}
	return nil
}

// errorReason drops the fatal-input prefix so the status line reads naturally.
func errorReason(err error) string {
	return strings.TrimPrefix(err.Error(), ErrFatalInput.Error()+": ")
}
