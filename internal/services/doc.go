// Package services defines shared utilities consumed by the repackaging
// pipeline and the codec integrations it drives.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and asset paths for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (fatal input, external tool, configuration, cancellation).
//
// Use these helpers when wiring new codec or pipeline logic so operational
// behaviour (error handling, observability) stays uniform.
package services
