package prb

import "github.com/aalhour/prbdb/internal/encoding"

// Version is the current on-wire layout version. Buffers with any other
// version are rejected by Open.
const Version uint32 = 0

// HeaderSize is the fixed size of the buffer header: version, size, begin,
// end, each a little-endian u32.
const HeaderSize = 16

// BaseOffset is the byte offset where the record region begins, i.e. the
// end of the header. It is also the canonical begin/end value of an empty
// buffer.
const BaseOffset = HeaderSize

// Buffer is a partitioned ring buffer view over a caller-owned byte slice.
// The zero Buffer is not usable; construct one with Create or Open.
//
// A Buffer is single-owner and non-reentrant (package doc, "Concurrency").
type Buffer struct {
	mem []byte

	// generation is bumped on every Commit. Iterator captures it at
	// creation and Next panics if it has since moved, turning the spec's
	// "undefined behavior" on mutation-during-iteration into a loud
	// failure instead of a silent bad read (SPEC_FULL.md §9, Open
	// Question 5).
	generation uint64

	// pending is the offset of the record most recently written by
	// Prepare but not yet made visible by Commit, or noPending if there
	// is none. It is pure in-memory bookkeeping: header.end is only
	// mutated by Commit, so an aborted reservation is invisible to Open
	// and to any Iterator (writer.go).
	pending uint32
}

// Create initializes a fresh, empty buffer in mem. len(mem) must equal N
// and satisfy HeaderSize < N <= SizeMax.
//
// Create always poisons the record region with a recognizable byte so that
// reading beyond a record's declared length is more likely to be noticed;
// see poisonRecordRegion.
func Create(mem []byte) (*Buffer, error) {
	n := len(mem)
	if n <= HeaderSize {
		return nil, ErrTooSmall
	}
	if uint64(n) > uint64(SizeMax) {
		return nil, ErrTooLarge
	}

	b := &Buffer{mem: mem, pending: noPending}
	poisonRecordRegion(mem[BaseOffset:])
	b.setVersion(Version)
	b.setSize(uint32(n))
	b.setBegin(BaseOffset)
	b.setEnd(BaseOffset)
	return b, nil
}

// Open validates mem as an existing buffer and, on success, adopts it.
// On any inconsistency it returns ErrInvalid and the caller must treat mem
// as garbage (typically by calling Create fresh over it); there is no
// partial recovery.
func Open(mem []byte) (*Buffer, error) {
	n := len(mem)
	if n <= HeaderSize {
		return nil, ErrTooSmall
	}
	if uint64(n) > uint64(SizeMax) {
		return nil, ErrTooLarge
	}

	b := &Buffer{mem: mem, pending: noPending}
	if b.version() != Version {
		return nil, ErrInvalid
	}
	if b.size() != uint32(n) {
		return nil, ErrInvalid
	}
	begin, end := b.begin(), b.end()
	if begin < BaseOffset || begin >= uint32(n) {
		return nil, ErrInvalid
	}
	if end < BaseOffset || end >= uint32(n) {
		return nil, ErrInvalid
	}
	if err := b.walk(begin, end); err != nil {
		return nil, err
	}
	return b, nil
}

// walk implements the §4.1 recovery validator: it replays the record
// sequence from begin and requires it to land exactly on end.
func (b *Buffer) walk(begin, end uint32) error {
	if begin == end && begin == BaseOffset {
		return nil // empty
	}

	size := b.size()
	cur := begin

	if begin >= end {
		// Pre-wrap segment: [begin, size), optionally ending in one FAKE
		// record that exactly fills the remainder.
		for cur >= end {
			if cur+4 > size {
				return ErrInvalid
			}
			flagSize := encoding.DecodeFixed32(b.mem[cur:])
			f := footprint(payloadLen(flagSize))
			remaining := size - cur
			if f > remaining {
				return ErrInvalid
			}
			if isFake(flagSize) {
				if f != remaining {
					return ErrInvalid
				}
				cur = BaseOffset
				break
			}
			if f == remaining {
				cur = BaseOffset
				break
			}
			cur += f
		}
	}

	// Post-wrap (or never-wrapped) segment: [cur, end).
	for cur < end {
		if cur+4 > end {
			return ErrInvalid
		}
		flagSize := encoding.DecodeFixed32(b.mem[cur:])
		if isFake(flagSize) {
			return ErrInvalid
		}
		f := footprint(payloadLen(flagSize))
		if f > end-cur {
			return ErrInvalid
		}
		cur += f
	}

	if cur != end {
		return ErrInvalid
	}
	return nil
}

// Size returns N, the total size of the backing region including the
// header.
func (b *Buffer) Size() uint32 { return b.size() }

// Empty reports whether the buffer currently holds no records.
func (b *Buffer) Empty() bool {
	begin, end := b.begin(), b.end()
	return begin == end && begin == BaseOffset
}

// --- raw header accessors -------------------------------------------------

func (b *Buffer) version() uint32   { return encoding.DecodeFixed32(b.mem[0:]) }
func (b *Buffer) size() uint32      { return encoding.DecodeFixed32(b.mem[4:]) }
func (b *Buffer) begin() uint32     { return encoding.DecodeFixed32(b.mem[8:]) }
func (b *Buffer) end() uint32       { return encoding.DecodeFixed32(b.mem[12:]) }
func (b *Buffer) setVersion(v uint32) { encoding.EncodeFixed32(b.mem[0:], v) }
func (b *Buffer) setSize(v uint32)    { encoding.EncodeFixed32(b.mem[4:], v) }
func (b *Buffer) setBegin(v uint32)   { encoding.EncodeFixed32(b.mem[8:], v) }
func (b *Buffer) setEnd(v uint32)     { encoding.EncodeFixed32(b.mem[12:], v) }

// poisonPattern is written across the unused record region on Create so
// that reading stale or uninitialized bytes as a record is more likely to
// fail loudly (garbage flag_size values) than to silently succeed.
const poisonPattern = 0xAB

func poisonRecordRegion(region []byte) {
	for i := range region {
		region[i] = poisonPattern
	}
}
