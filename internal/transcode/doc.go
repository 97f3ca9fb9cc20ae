// Package transcode turns one archive asset into its smaller replacement.
//
// Dispatch is by file extension: svg goes through the vector optimizer,
// png/jpg/jpeg are re-encoded as lossy WebP, wav/mp3 are probed for duration
// and re-encoded by the audio engine (mono, 16 kHz; wav below the lossless
// threshold, mp3 otherwise), and everything else passes through untouched.
//
// Failures are returned as *Error carrying the asset path and kind; callers
// decide whether to fall back.
package transcode
