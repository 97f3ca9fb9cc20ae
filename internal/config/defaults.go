package config

const (
	defaultLogDir             = "~/.local/share/sb3slim/logs"
	defaultFFmpegBinary       = "ffmpeg"
	defaultLosslessMaxSeconds = 5.0
	defaultSampleRate         = 16000
	defaultChannels           = 1
	defaultMP3Quality         = 8
	defaultWebPQuality        = 0.80
	defaultMaxPasses          = 10
	defaultHash               = "md5"
	defaultCacheMaxEntries    = 5000
	defaultCacheCompression   = "zstd"
	defaultOutputSuffix       = "_TURBO"
	defaultCompression        = "deflate"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir(),
		},
		Audio: Audio{
			FFmpegBinary:       defaultFFmpegBinary,
			LosslessMaxSeconds: defaultLosslessMaxSeconds,
			SampleRate:         defaultSampleRate,
			Channels:           defaultChannels,
			MP3Quality:         defaultMP3Quality,
		},
		Image: Image{
			WebPQuality: defaultWebPQuality,
		},
		Vector: Vector{
			Multipass: true,
			MaxPasses: defaultMaxPasses,
		},
		Naming: Naming{
			Hash: defaultHash,
		},
		Cache: Cache{
			MaxEntries:  defaultCacheMaxEntries,
			Compression: defaultCacheCompression,
		},
		Output: Output{
			Suffix:      defaultOutputSuffix,
			Compression: defaultCompression,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
