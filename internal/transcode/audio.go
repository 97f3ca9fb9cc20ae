package transcode

import (
	"context"
	"fmt"
	"strconv"

	"sb3slim/internal/media/ffmpeg"
)

// unknownDuration stands in for clips whose probe reported no duration. It
// is far above any lossless threshold, so such clips take the lossy branch.
const unknownDuration = 999.0

// AudioEngine is the serialized scratch-file engine used for sound assets.
type AudioEngine interface {
	Load(ctx context.Context) error
	Session(ctx context.Context, fn func(*ffmpeg.Session) error) error
}

// AudioPolicy chooses the output codec from the probed duration.
type AudioPolicy struct {
	// LosslessMaxSeconds is exclusive: a clip of exactly this length is lossy.
	LosslessMaxSeconds float64
	SampleRate         int
	Channels           int
	MP3Quality         int
}

// DefaultAudioPolicy returns the mono 16 kHz, 5 second policy.
func DefaultAudioPolicy() AudioPolicy {
	return AudioPolicy{LosslessMaxSeconds: 5, SampleRate: 16000, Channels: 1, MP3Quality: 8}
}

// Select returns the output extension for a clip of the given duration.
func (p AudioPolicy) Select(durationSeconds float64) string {
	if durationSeconds < p.LosslessMaxSeconds {
		return "wav"
	}
	return "mp3"
}

// ProbeArgs analyzes input without writing any output.
func (p AudioPolicy) ProbeArgs(input string) []string {
	return []string{"-i", input, "-map", "0:a", "-f", "null", "-"}
}

// EncodeArgs downmixes and resamples input into output using the codec for ext.
func (p AudioPolicy) EncodeArgs(input, output, ext string) []string {
	args := []string{
		"-y",
		"-i", input,
		"-vn",
		"-ac", strconv.Itoa(p.Channels),
		"-ar", strconv.Itoa(p.SampleRate),
	}
	if ext == "wav" {
		args = append(args, "-f", "wav")
	} else {
		args = append(args, "-c:a", "libmp3lame", "-q:a", strconv.Itoa(p.MP3Quality))
	}
	return append(args, output)
}

func (p AudioPolicy) fingerprint() string {
	return fmt.Sprintf("audio=%g/%d/%d/q%d", p.LosslessMaxSeconds, p.SampleRate, p.Channels, p.MP3Quality)
}

func transcodeAudio(ctx context.Context, engine AudioEngine, policy AudioPolicy, p string, data []byte) (Output, error) {
	inName := "in." + Extension(p)
	var out Output
	err := engine.Session(ctx, func(s *ffmpeg.Session) error {
		defer func() {
			_ = s.DeleteScratch(inName)
		}()
		if err := s.WriteScratch(inName, data); err != nil {
			return err
		}

		probe, err := s.Run(ctx, policy.ProbeArgs(inName)...)
		if err != nil {
			return fmt.Errorf("probe: %w", err)
		}
		duration, ok := probe.Duration()
		if !ok {
			duration = unknownDuration
		}

		ext := policy.Select(duration)
		outName := "out." + ext
		defer func() {
			_ = s.DeleteScratch(outName)
		}()
		if _, err := s.Run(ctx, policy.EncodeArgs(inName, outName, ext)...); err != nil {
			return fmt.Errorf("encode %s: %w", ext, err)
		}
		encoded, err := s.ReadScratch(outName)
		if err != nil {
			return err
		}
		if len(encoded) == 0 {
			return errEmptyOutput
		}
		out = Output{Data: encoded, Ext: ext, Kind: KindAudio, DurationSeconds: duration}
		return nil
	})
	return out, err
}
