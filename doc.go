/*
Package prbdb provides a partitioned ring buffer: a fixed-capacity,
crash-safe, self-describing FIFO record log that lives entirely inside
caller-provided memory, plus a small stack of domain components built on
top of it — a durable, mmap-backed journal with segment archival
(internal/journal), a journal-logged dual-index function registry
(internal/funccache), a bounded format-ID cache (internal/formatmap), and
minimal tuple-constraint definitions (internal/constraint).

The ring buffer itself (Buffer, Iterator) is a thin public re-export of
internal/prb, which owns the wire format and all recovery logic; prbdb
exists so callers outside this module can use the buffer without
importing an internal package.

# Usage

	mem := make([]byte, 4096)
	buf, err := prbdb.Create(mem)
	if err != nil {
		// ...
	}
	if data, ok := buf.Prepare(len(payload)); ok {
		copy(data, payload)
		buf.Commit()
	}
	for it := buf.Iterate(); ; {
		rec, ok := it.Next()
		if !ok {
			break
		}
		// ...
	}

For a durable, file-backed buffer see internal/journal.Store, or drive one
from the shell with cmd/prbctl.

# Concurrency

A Buffer is not safe for concurrent use; callers serialize Prepare/Commit/
Iterate themselves, the way journal.Store does with its own mutex.
Iterators are invalidated by the next Commit on the same Buffer and panic
on next use once that happens.

# Compatibility

The wire format is stable across Go versions and platforms: a buffer
written by one process can be reopened by any other process linking this
package, little-endian byte order throughout.
*/
package prbdb
