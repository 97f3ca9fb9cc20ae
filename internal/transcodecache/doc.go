// Package transcodecache persists transcoded asset outputs in a SQLite
// database so repeated runs over the same project skip re-encoding.
//
// Entries are keyed by a digest of the transcoder settings and the source
// bytes. Blobs are stored compressed with a per-row codec tag; the cache
// directory is guarded by an advisory file lock so only one process writes
// it at a time. The least recently used entries are evicted once the
// configured entry limit is exceeded.
package transcodecache
