// Package prb implements the partitioned ring buffer: a fixed-capacity,
// crash-safe, self-describing FIFO log laid out entirely inside a
// caller-provided memory block.
//
// A Buffer owns no memory of its own. It is a view over a []byte supplied
// by the caller (typically a memory-mapped file owned by package journal);
// every byte of state needed to resume iteration or accept new writes after
// a process restart lives in that slice, in the wire format below. There is
// no sidecar metadata file and no external allocator.
//
// # Wire format
//
// The buffer begins with a 16-byte little-endian header:
//
//	offset  size  field
//	0       4     version  (must be 0)
//	4       4     size     (must equal len(mem))
//	8       4     begin    (byte offset of the oldest record)
//	12      4     end      (one past the newest committed record)
//	16      -     record region begins (BASE_OFFSET)
//
// Records between BASE_OFFSET and size are a 4-byte little-endian
// flag_size (high bit FAKE marks a padding frame; low 31 bits are the
// payload length) followed by the payload, rounded up to 4-byte alignment.
//
// # Concurrency
//
// A Buffer is single-owner and non-reentrant. It performs no locking and
// no I/O: concurrent mutation, or iteration concurrent with mutation, is a
// data race the caller must prevent (see package journal for a mutex-
// guarded wrapper around a file-backed Buffer).
//
// Reference: adapted from the "Variant A" record framing described for the
// partitioned ring buffer; see original_source/src/lib/core/prbuf.{c,h} for
// the alternate (rejected) "Variant B" framing this implementation does not
// use.
package prb
