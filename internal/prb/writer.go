package prb

import "github.com/aalhour/prbdb/internal/encoding"

// noPending marks that there is no outstanding (uncommitted) reservation.
const noPending = ^uint32(0)

// Prepare reserves space for a record of the given payload length and
// returns a slice of that length the caller may fill in. The write is not
// visible to Open or to an Iterator until Commit is called.
//
// Prepare returns ok == false, with the buffer otherwise untouched, when
// the record could never fit even in an empty buffer of this size — a
// capacity refusal, not an error (§7): the buffer remains usable for
// smaller requests.
//
// Calling Prepare again before Commit silently discards the first
// reservation; the buffer itself is only mutated up through header.begin
// (oldest records may be evicted to make room) until Commit advances
// header.end, so an aborted reservation leaves no observable trace.
//
// Prepare panics if n is not positive, or exceeds SizeMax: both are
// programmer errors per §7.
func (b *Buffer) Prepare(n int) (data []byte, ok bool) {
	if n <= 0 {
		panic("prb: Prepare requires a positive length")
	}
	if uint64(n) > uint64(SizeMax) {
		panic("prb: Prepare length exceeds SizeMax")
	}

	size := b.size()
	f := footprint(uint32(n))
	if uint64(BaseOffset)+uint64(f) > uint64(size) {
		return nil, false
	}

	end := b.end()
	if uint64(end)+uint64(f) <= uint64(size) {
		// Case A: the record fits without wrapping.
		for {
			begin := b.begin()
			if !(begin > end && uint64(end)+uint64(f) > uint64(begin)) {
				break
			}
			b.dropOldest()
		}
		b.writeFlagSize(end, uint32(n))
		b.pending = end
		return b.payload(end, uint32(n)), true
	}

	// Case B: the record wraps. Pad the tail (if there is room for a
	// header) so a reader walking the pre-wrap segment knows to jump to
	// BaseOffset, then reserve the new record there.
	//
	// If the buffer is already wrapped (begin >= end), every record in
	// the pre-wrap segment is older than the records at BaseOffset that
	// the new record is about to overwrite, so all of them go first; this
	// also clears [end, size) before the FAKE pad is written into it.
	for b.begin() >= end {
		b.dropOldest()
	}
	tail := size - end
	if tail >= 4 {
		b.writeFlagSizeRaw(end, makeFake(tail-4))
	}

	cur := uint32(BaseOffset)

	// begin may already be anywhere up to end (Case A's own loop advances
	// it on every wrap after the first), so eviction here is conditional
	// on actual overlap, exactly like Case A above. Unlike Case A, begin
	// is never less than cur — cur is always BaseOffset, the smallest
	// valid offset — so equality (begin == cur, the first-ever wrap,
	// before any eviction has moved begin away from BaseOffset) still
	// needs evicting: the new record is about to overwrite begin's
	// header in place. The loop also stops once begin catches up with
	// the pre-wrap end: every previously live record has then been
	// evicted and begin sits on the FAKE pad. If the new record reaches
	// past that pad it overwrites it, so begin moves to BaseOffset, the
	// new record's own offset.
	for {
		begin := b.begin()
		if begin == end {
			if uint64(cur)+uint64(f) > uint64(end) {
				b.setBegin(BaseOffset)
			}
			break
		}
		if uint64(cur)+uint64(f) <= uint64(begin) {
			break
		}
		b.dropOldest()
	}
	b.writeFlagSize(cur, uint32(n))
	b.pending = cur
	return b.payload(cur, uint32(n)), true
}

// Commit finalizes the most recent Prepare, making it visible to Open and
// to future Iterators. It panics if there is no outstanding reservation —
// a double Commit, or a Commit with no preceding Prepare, is a programmer
// error per §7.
func (b *Buffer) Commit() {
	if b.pending == noPending {
		panic("prb: Commit with no outstanding Prepare")
	}
	offset := b.pending
	flagSize := encoding.DecodeFixed32(b.mem[offset:])
	newEnd := offset + footprint(payloadLen(flagSize))
	if newEnd == b.size() {
		newEnd = BaseOffset
	}
	b.setEnd(newEnd)
	b.pending = noPending
	b.generation++
}

// dropOldest evicts the record at header.begin, advancing begin past its
// footprint (or to BaseOffset, if it was the FAKE record terminating the
// pre-wrap segment, or its footprint exactly reached size).
func (b *Buffer) dropOldest() {
	begin := b.begin()
	flagSize := encoding.DecodeFixed32(b.mem[begin:])
	b.setBegin(advance(begin, flagSize, b.size()))
}

// advance computes the next record cursor after skipping the record whose
// flag_size word is flagSize, starting at offset cur, wrapping to
// BaseOffset if the record (FAKE or not) reaches exactly size. Shared by
// eviction (writer.go) and iteration (reader.go).
func advance(cur uint32, flagSize uint32, size uint32) uint32 {
	next := cur + footprint(payloadLen(flagSize))
	if next == size {
		return BaseOffset
	}
	return next
}

// writeFlagSize writes a live (non-FAKE) record header with the given
// payload length at offset o.
func (b *Buffer) writeFlagSize(o uint32, payloadLen uint32) {
	encoding.EncodeFixed32(b.mem[o:], payloadLen)
}

// writeFlagSizeRaw writes a raw flag_size word (used for FAKE records,
// which already carry the FAKE bit) at offset o.
func (b *Buffer) writeFlagSizeRaw(o uint32, flagSize uint32) {
	encoding.EncodeFixed32(b.mem[o:], flagSize)
}

// payload returns the n-byte payload slice of the record at offset o.
func (b *Buffer) payload(o uint32, n uint32) []byte {
	return b.mem[o+4 : o+4+n]
}
