package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeVector()
	c.normalizeNaming()
	c.normalizeCache()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	if value, ok := os.LookupEnv("SB3SLIM_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Audio.FFmpegBinary = strings.TrimSpace(value)
	}
	c.Audio.FFmpegBinary = strings.TrimSpace(c.Audio.FFmpegBinary)
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaultChannels
	}
}

func (c *Config) normalizeVector() {
	if c.Vector.MaxPasses <= 0 {
		c.Vector.MaxPasses = defaultMaxPasses
	}
	if !c.Vector.Multipass {
		c.Vector.MaxPasses = 1
	}
}

func (c *Config) normalizeNaming() {
	c.Naming.Hash = strings.ToLower(strings.TrimSpace(c.Naming.Hash))
	if c.Naming.Hash == "" {
		c.Naming.Hash = defaultHash
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = defaultCacheMaxEntries
	}
	c.Cache.Compression = strings.ToLower(strings.TrimSpace(c.Cache.Compression))
	if c.Cache.Compression == "" {
		c.Cache.Compression = defaultCacheCompression
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Suffix = strings.TrimSpace(c.Output.Suffix)
	c.Output.Compression = strings.ToLower(strings.TrimSpace(c.Output.Compression))
	if c.Output.Compression == "" {
		c.Output.Compression = defaultCompression
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
