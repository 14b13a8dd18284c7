// Package journal owns the file and memory-mapping concerns the
// partitioned ring buffer itself stays free of: a Store opens (or
// creates) a fixed-size file, maps it into memory with
// golang.org/x/sys/unix, and hands the resulting byte slice to
// internal/prb as the buffer's backing region.
//
// A Store adds three things on top of a bare prb.Buffer:
//
//   - Durability: Sync msyncs the mapping (or fsyncs the file, for a
//     heap-backed Store) so a committed record survives a crash.
//   - Archival: Seal drains every currently-live record, compresses
//     them (internal/compression) behind a checksum of a caller-chosen
//     type (internal/checksum), and writes the result to a side file before
//     resetting the live buffer — so records the ring would otherwise
//     silently evict are not lost, just moved to cold storage.
//   - Observability: every operation that can fail logs through
//     internal/logging, and exposes kill points (internal/testutil) at
//     the same places a crash would be most interesting to inject.
//
// Concurrency: a Store serializes all of Append, Sync, and Seal behind
// a single mutex; none of them may be called concurrently with Close.
package journal
