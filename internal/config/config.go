package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"sb3slim/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	CacheDir string `toml:"cache_dir"`
}

// Audio contains the audio engine binary and the duration-based codec policy.
type Audio struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	// LosslessMaxSeconds is the exclusive upper bound on clip duration for the
	// lossless (wav) branch. Clips at or above it are encoded as mp3.
	LosslessMaxSeconds float64 `toml:"lossless_max_seconds"`
	SampleRate         int     `toml:"sample_rate"`
	Channels           int     `toml:"channels"`
	MP3Quality         int     `toml:"mp3_quality"`
}

// Image contains raster re-encoding settings.
type Image struct {
	WebPQuality float64 `toml:"webp_quality"`
}

// Vector contains SVG optimization settings.
type Vector struct {
	Multipass bool `toml:"multipass"`
	MaxPasses int  `toml:"max_passes"`
}

// Naming selects the digest used for content-addressed asset names.
type Naming struct {
	Hash string `toml:"hash"`
}

// Cache contains configuration for the persistent transcode cache.
type Cache struct {
	Enabled     bool   `toml:"enabled"`
	MaxEntries  int    `toml:"max_entries"`
	Compression string `toml:"compression"` // zstd, lz4 or none
}

// Output contains configuration for the written archive.
type Output struct {
	Suffix      string `toml:"suffix"`
	Compression string `toml:"compression"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sb3slim.
//
// Configuration sections by subsystem:
//   - Paths: log and cache directories
//   - Audio: ffmpeg binary and duration-based codec policy
//   - Image: lossy raster quality
//   - Vector: SVG multipass optimization
//   - Naming: content hash algorithm for asset names
//   - Cache: persistent transcode cache
//   - Output: archive suffix and compression mode
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Audio   Audio   `toml:"audio"`
	Image   Image   `toml:"image"`
	Vector  Vector  `toml:"vector"`
	Naming  Naming  `toml:"naming"`
	Cache   Cache   `toml:"cache"`
	Output  Output  `toml:"output"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sb3slim/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sb3slim.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and, when caching is enabled,
// the cache directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Paths.CacheDir) != "" {
		if err := os.MkdirAll(c.Paths.CacheDir, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", c.Paths.CacheDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used by the audio engine.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.Audio.FFmpegBinary) == "" {
		return defaultFFmpegBinary
	}
	return c.Audio.FFmpegBinary
}

// OutputPath derives the default output archive path for an input archive:
// the input stem plus the configured suffix, keeping the .sb3 extension.
func (c *Config) OutputPath(inputPath string) string {
	suffix := defaultOutputSuffix
	if c != nil {
		suffix = c.Output.Suffix
	}
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	stem := base
	if strings.EqualFold(ext, ".sb3") {
		stem = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(dir, stem+suffix+".sb3")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "sb3slim")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/sb3slim"
	}
	return filepath.Join(home, ".cache", "sb3slim")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := fileutil.WriteFileAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
