// Package main hosts the sb3slim CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the transcoder,
// cache and pipeline from it, and renders progress and results for the
// terminal. Archive processing itself lives in internal/pipeline; commands
// here only wire components and present outcomes.
package main
