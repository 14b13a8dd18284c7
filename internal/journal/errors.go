package journal

import "errors"

var (
	// ErrClosed is returned by any Store method called after Close.
	ErrClosed = errors.New("journal: store is closed")

	// ErrRecordTooLarge is returned by Append when a payload can never
	// fit in the store's configured segment size, mirroring
	// prb.Buffer.Prepare's capacity refusal.
	ErrRecordTooLarge = errors.New("journal: record too large for segment")

	// ErrArchiveChecksumMismatch is returned by ReadArchive when the
	// trailing checksum, computed with whichever checksum.Type the
	// archive was Sealed with, does not match its compressed contents.
	ErrArchiveChecksumMismatch = errors.New("journal: archive checksum mismatch")
)
