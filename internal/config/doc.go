// Package config loads, normalizes, and validates sb3slim configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SB3SLIM_FFMPEG. The Config type centralizes every knob the CLI and the
// repackaging pipeline need, from codec quality settings to the transcode
// cache location.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
