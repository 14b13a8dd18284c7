package prb

import "errors"

var (
	// ErrInvalid is returned by Open when the backing bytes do not describe
	// a consistent buffer: bad version, size mismatch, out-of-range begin/end,
	// or a record walk that does not land exactly on end. There is no
	// partial recovery; the caller should treat the bytes as garbage and
	// typically Create fresh over them.
	ErrInvalid = errors.New("prb: invalid buffer")

	// ErrTooSmall is returned by Create and Open when N is not larger than
	// the fixed header. A region that passes this check can still be too
	// small for any record (the smallest record footprint is 8 bytes).
	ErrTooSmall = errors.New("prb: backing region too small")

	// ErrTooLarge is returned by Create and Open when N exceeds SizeMax.
	ErrTooLarge = errors.New("prb: backing region too large")
)
