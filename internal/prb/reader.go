package prb

import "github.com/aalhour/prbdb/internal/encoding"

// Iterator walks the live records of a Buffer from oldest to newest, as
// described in §4.3. It is a read-only snapshot of the cursor state at
// creation time; it does not see records committed after it was created.
//
// An Iterator is tied to the generation of its Buffer at the time it was
// created. Any Commit on that Buffer bumps the generation, and the next
// call to Next panics rather than silently walking a buffer that has
// moved out from under it (SPEC_FULL.md §9, Open Question 5 — a
// deliberate strengthening of the source spec's "undefined behavior").
type Iterator struct {
	buf        *Buffer
	generation uint64
	cur        uint32
	end        uint32
	done       bool
}

// Iterate returns an Iterator positioned before the oldest live record.
func (b *Buffer) Iterate() *Iterator {
	begin, end := b.begin(), b.end()
	return &Iterator{
		buf:        b,
		generation: b.generation,
		cur:        begin,
		end:        end,
		done:       b.Empty(),
	}
}

// Next advances the iterator and returns the next record's payload, or
// ok == false once every live record has been visited. The returned slice
// aliases the buffer; it is only valid until the next mutation.
func (it *Iterator) Next() (record []byte, ok bool) {
	if it.buf.generation != it.generation {
		panic("prb: Iterator used after a Commit on its Buffer")
	}
	if it.done {
		return nil, false
	}

	size := it.buf.size()
	cur := it.cur
	for {
		flagSize := encoding.DecodeFixed32(it.buf.mem[cur:])
		if isFake(flagSize) {
			cur = advance(cur, flagSize, size)
			continue
		}
		n := payloadLen(flagSize)
		next := advance(cur, flagSize, size)
		it.cur = next
		it.done = next == it.end
		return it.buf.payload(cur, n), true
	}
}
