// Package ffmpeg wraps the ffmpeg binary as the audio engine used for sound
// transcoding.
//
// An Engine is an explicit, lazily loaded handle: Load verifies the binary and
// prepares a private scratch directory at most once, and every later caller
// reuses it. Sessions serialize access to the scratch directory because ffmpeg
// invocations read and write fixed scratch names; each session clears the
// directory when it ends so no asset ever observes files left by another.
//
// Diagnostic output is returned per invocation as a Capture instead of being
// intercepted through a shared logging hook.
package ffmpeg
