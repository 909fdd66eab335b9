// Package persist stores the card dataset outside the process.
//
// Every mutation calls the store's persist hook; [Saver.Hook] turns that
// into a write of the exported dataset to a [Backend] under a single key.
// The hook runs on the caller's goroutine, so a slow backend slows the
// interaction that triggered it.
//
// # Backends
//
//   - [Null]: discards writes, reports every read as a miss
//   - [Disk]: one file per key under a directory (diskv)
//   - [Redis]: one string value per key
//   - [Mongo]: one document per key in a collection
//   - [SQLite]: one row per key in a documents table
//   - [Multi]: fans writes out to several backends at once
//
// [Open] builds a backend from a [Config]; several names produce a [Multi].
//
// # Retries
//
// Backends mark transient failures (network, busy database) with
// [Retryable]. [RetryWithBackoff] retries only those, three attempts with a
// doubling delay, and gives up early when the context ends.
//
// # Change detection
//
// [Saver] hashes each export with [Hash] and skips the write when nothing
// changed since the last successful save or load.
package persist
