package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateOutput()
}

func (c *Config) validateCache() error {
	switch c.Cache.Compression {
	case "zstd", "lz4", "none":
		return nil
	default:
		return fmt.Errorf("cache.compression: unsupported value %q (want zstd, lz4 or none)", c.Cache.Compression)
	}
}

func (c *Config) validateAudio() error {
	if c.Audio.LosslessMaxSeconds < 0 {
		return errors.New("audio.lossless_max_seconds must be >= 0")
	}
	if c.Audio.MP3Quality < 0 || c.Audio.MP3Quality > 9 {
		return fmt.Errorf("audio.mp3_quality must be between 0 and 9, got %d", c.Audio.MP3Quality)
	}
	if c.Audio.Channels > 2 {
		return fmt.Errorf("audio.channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	return nil
}

func (c *Config) validateImage() error {
	if c.Image.WebPQuality <= 0 || c.Image.WebPQuality > 1 {
		return fmt.Errorf("image.webp_quality must be in (0, 1], got %v", c.Image.WebPQuality)
	}
	return nil
}

func (c *Config) validateNaming() error {
	switch c.Naming.Hash {
	case "md5", "blake3":
		return nil
	default:
		return fmt.Errorf("naming.hash: unsupported value %q (want md5 or blake3)", c.Naming.Hash)
	}
}

func (c *Config) validateOutput() error {
	switch c.Output.Compression {
	case "deflate", "store":
		return nil
	default:
		return fmt.Errorf("output.compression: unsupported value %q (want deflate or store)", c.Output.Compression)
	}
}
