// Package pipeline repackages a Scratch project archive with every asset
// re-encoded and renamed by the digest of its new bytes.
//
// A run moves through Idle, Loading, Optimizing, Finalizing and Complete.
// Cancellation is cooperative: the context is checked after the audio engine
// loads and before each asset, and a cancelled run produces no archive at
// all. A failure on a single asset never aborts the run; the asset is copied
// through under its original name and its manifest references are left as
// they were.
package pipeline
