package transcode

import (
	"context"
	"fmt"
	"strings"
)

// Output is the re-encoded form of one asset.
type Output struct {
	Data []byte
	Ext  string
	Kind Kind
	// DurationSeconds is the probed duration for audio, zero otherwise.
	DurationSeconds float64
	// Cached is set when the output came from a Store instead of a codec.
	Cached bool
}

// Options configures a Transcoder.
type Options struct {
	Vector      VectorOptimizer
	Multipass   bool
	Raster      RasterCodec
	WebPQuality float64
	Audio       AudioEngine
	AudioPolicy AudioPolicy
}

// Transcoder dispatches assets to the codec for their kind.
type Transcoder struct {
	vector      VectorOptimizer
	multipass   bool
	raster      RasterCodec
	quality     float64
	audio       AudioEngine
	audioPolicy AudioPolicy
}

// New constructs a Transcoder. Nil codecs fall back to the built-in SVG
// minifier and WebP codec; a nil audio engine makes audio assets fail.
func New(opts Options) *Transcoder {
	t := &Transcoder{
		vector:      opts.Vector,
		multipass:   opts.Multipass,
		raster:      opts.Raster,
		quality:     opts.WebPQuality,
		audio:       opts.Audio,
		audioPolicy: opts.AudioPolicy,
	}
	if t.vector == nil {
		t.vector = NewSVGMinifier(10)
	}
	if t.raster == nil {
		t.raster = WebPCodec{}
	}
	if t.quality <= 0 {
		t.quality = 0.80
	}
	if t.audioPolicy == (AudioPolicy{}) {
		t.audioPolicy = DefaultAudioPolicy()
	}
	return t
}

// Prepare performs the one-time audio engine initialization.
func (t *Transcoder) Prepare(ctx context.Context) error {
	if t.audio == nil {
		return fmt.Errorf("audio engine not configured")
	}
	return t.audio.Load(ctx)
}

// Fingerprint identifies the codec settings; outputs are only reusable
// between transcoders with equal fingerprints.
func (t *Transcoder) Fingerprint() string {
	return strings.Join([]string{
		"v1",
		fmt.Sprintf("svg=%t", t.multipass),
		fmt.Sprintf("%s=%g", t.raster.Ext(), t.quality),
		t.audioPolicy.fingerprint(),
	}, ";")
}

// Transcode re-encodes data according to the kind inferred from p.
func (t *Transcoder) Transcode(ctx context.Context, p string, data []byte) (Output, error) {
	kind := KindForPath(p)
	var (
		out Output
		err error
	)
	switch kind {
	case KindVector:
		out, err = t.transcodeVector(data)
	case KindRaster:
		out, err = t.transcodeRaster(data)
	case KindAudio:
		if t.audio == nil {
			err = fmt.Errorf("audio engine not configured")
			break
		}
		out, err = transcodeAudio(ctx, t.audio, t.audioPolicy, p, data)
	default:
		return Output{Data: data, Ext: Extension(p), Kind: KindOpaque}, nil
	}
	if err != nil {
		return Output{}, wrapError(p, kind, err)
	}
	return out, nil
}

func (t *Transcoder) transcodeVector(data []byte) (Output, error) {
	optimized, err := t.vector.Optimize(decodeText(data), t.multipass)
	if err != nil {
		return Output{}, fmt.Errorf("optimize svg: %w", err)
	}
	if optimized == "" {
		return Output{}, errEmptyOutput
	}
	return Output{Data: []byte(optimized), Ext: "svg", Kind: KindVector}, nil
}

func (t *Transcoder) transcodeRaster(data []byte) (Output, error) {
	img, err := t.raster.Decode(data)
	if err != nil {
		return Output{}, err
	}
	encoded, err := t.raster.Encode(img, t.quality)
	if err != nil {
		return Output{}, err
	}
	if len(encoded) == 0 {
		return Output{}, errEmptyOutput
	}
	return Output{Data: encoded, Ext: t.raster.Ext(), Kind: KindRaster}, nil
}
