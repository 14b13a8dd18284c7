package prbdb

import "github.com/aalhour/prbdb/internal/prb"

// Buffer is a partitioned ring buffer over caller-provided memory. See
// internal/prb for the wire format and recovery details.
type Buffer = prb.Buffer

// Iterator walks the live records of a Buffer, oldest first. It is
// invalidated by the next Commit on the same Buffer.
type Iterator = prb.Iterator

var (
	// ErrInvalid is returned by Open when the backing bytes do not
	// describe a valid buffer (bad version, corrupt record stream, or a
	// begin/end pair that violates the header invariants).
	ErrInvalid = prb.ErrInvalid

	// ErrTooSmall is returned by Create and Open when the backing region
	// is not larger than the 16-byte header.
	ErrTooSmall = prb.ErrTooSmall

	// ErrTooLarge is returned by Create and Open when the backing region
	// exceeds the largest size the wire format can address.
	ErrTooLarge = prb.ErrTooLarge
)

// Create initializes a fresh, empty buffer over mem, writing the header
// at offset 0. mem's length fixes the buffer's capacity for its whole
// lifetime.
func Create(mem []byte) (*Buffer, error) {
	return prb.Create(mem)
}

// Open recovers a buffer previously initialized by Create from mem,
// validating the header and walking the full record stream before
// trusting it.
func Open(mem []byte) (*Buffer, error) {
	return prb.Open(mem)
}
