// Package cache defines the disk-backed store holding downloaded data files
// under <CachePath>/data_cache/<key>. Keys are derived from the source URL by
// a weak hash plus the URL length, so the directory stays flat and file names
// never leak readable identifiers. The store exposes read/write primitives
// with safe semantics (temp file + rename) plus a keep-set driven Cleanup used
// after a fully successful sync session. The remote fetcher depends on this
// package to serve cache hits and persist network responses without
// duplicating filesystem logic.
package cache
