// Package manifest reads and rewrites the project.json document stored in a
// Scratch project archive.
//
// Only the asset identity fields (assetId, dataFormat, md5ext) of costume
// and sound entries are ever modified. Every other value, including monitors
// and extension declarations, is carried through as the raw JSON it was
// parsed from, so unchanged entries serialize to the same bytes they were
// read from (modulo insignificant whitespace).
package manifest
