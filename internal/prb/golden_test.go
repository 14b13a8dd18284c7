package prb

import (
	"fmt"
	"testing"

	"github.com/aalhour/prbdb/internal/encoding"
)

func setEndRaw(mem []byte, v uint32) {
	encoding.EncodeFixed32(mem[12:], v)
}

// This file implements the concrete scenarios a reader of the buffer
// format's byte layout is expected to reproduce exactly: S1 through S7.

func TestS1_EmptyRoundTrip(t *testing.T) {
	mem := make([]byte, 128)
	if _, err := Create(mem); err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := Open(mem)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := b.Iterate().Next(); ok {
		t.Fatal("iterator over an empty buffer should yield nothing")
	}
}

func TestS2_SingleRecord(t *testing.T) {
	b := mustCreate(t, 128)
	payload := []byte{0xAB, 0xDB, 0xEE, 0xCC}
	data, ok := b.Prepare(len(payload))
	if !ok {
		t.Fatal("prepare(4): want ok")
	}
	copy(data, payload)
	b.Commit()

	it := b.Iterate()
	rec, ok := it.Next()
	if !ok {
		t.Fatal("want a record")
	}
	if string(rec) != string(payload) {
		t.Fatalf("record = % X, want % X", rec, payload)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("want exactly one record")
	}
}

func TestS3_FillAndEvict(t *testing.T) {
	const n = 128
	b := mustCreate(t, n)
	payload := []byte{0xAB, 0xDB, 0xEE, 0xCC}
	f := footprint(uint32(len(payload)))

	for i := 0; i < 32; i++ {
		data, ok := b.Prepare(len(payload))
		if !ok {
			t.Fatalf("prepare #%d: want ok", i)
		}
		copy(data, payload)
		b.Commit()
	}

	usable := uint32(n - BaseOffset)
	maxK := usable / f

	var got [][]byte
	it := b.Iterate()
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		cp := append([]byte(nil), rec...)
		got = append(got, cp)
	}

	if uint32(len(got)) > maxK {
		t.Fatalf("got %d records, more than the capacity bound %d", len(got), maxK)
	}
	if len(got) == 0 {
		t.Fatal("want at least one surviving record after the wrap")
	}
	for i, rec := range got {
		if string(rec) != string(payload) {
			t.Fatalf("record %d = % X, want % X", i, rec, payload)
		}
	}
}

// TestS4_VariablePayloads commits 16 records of varying sizes, each filled
// with its own byte, and checks that the survivors are exactly the longest
// suffix of commits whose footprints fit in the live region. The
// footprints sum to 228 bytes against a 240-byte region, so the buffer
// never wraps and all 16 records are expected back intact, in order.
func TestS4_VariablePayloads(t *testing.T) {
	b := mustCreate(t, 256)
	capacity := 256 - BaseOffset

	sizes := []int{4, 9, 1, 16, 7, 12, 3, 20, 5, 8, 11, 2, 15, 6, 10, 13}
	payloads := make([]string, len(sizes))
	footprints := make([]int, len(sizes))
	for i, n := range sizes {
		p := make([]byte, n)
		for j := range p {
			p[j] = byte('A' + i)
		}
		payloads[i] = string(p)
		footprints[i] = int(footprint(uint32(n)))
		prepareCommit(t, b, payloads[i])
	}

	// FIFO eviction keeps exactly the longest suffix of commits whose
	// footprints sum to at most the live region's capacity.
	sum := 0
	keepFrom := len(payloads)
	for i := len(payloads) - 1; i >= 0; i-- {
		sum += footprints[i]
		if sum > capacity {
			break
		}
		keepFrom = i
	}
	want := payloads[keepFrom:]

	got := collect(b.Iterate())
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Iterate() = %v, want %v", got, want)
	}
}

func TestS5_LargePayload(t *testing.T) {
	b := mustCreate(t, 512)
	payload := make([]byte, 40)
	for i := range payload {
		payload[i] = byte(i)
	}

	for i := 0; i < 64; i++ {
		data, ok := b.Prepare(len(payload))
		if !ok {
			t.Fatalf("prepare #%d: want ok", i)
		}
		copy(data, payload)
		b.Commit()
	}

	it := b.Iterate()
	count := 0
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		if string(rec) != string(payload) {
			t.Fatalf("record %d corrupted", count)
		}
		count++
	}
	if count == 0 {
		t.Fatal("want at least one surviving record")
	}
}

func TestS6_RejectOversize(t *testing.T) {
	b := mustCreate(t, 128)
	if _, ok := b.Prepare(200); ok {
		t.Fatal("prepare(200) on a 128-byte buffer: want ok == false")
	}
	data, ok := b.Prepare(4)
	if !ok {
		t.Fatal("prepare(4) after the refusal: want ok")
	}
	copy(data, []byte{1, 2, 3, 4})
	b.Commit()
	if rec, ok := b.Iterate().Next(); !ok || len(rec) != 4 {
		t.Fatalf("Next() = %v, %v; want a 4-byte record", rec, ok)
	}
}

func TestS7_OpenRejects(t *testing.T) {
	t.Run("flipped version", func(t *testing.T) {
		mem := make([]byte, 128)
		if _, err := Create(mem); err != nil {
			t.Fatalf("create: %v", err)
		}
		mem[0] = 1
		if _, err := Open(mem); err != ErrInvalid {
			t.Fatalf("open: got %v, want ErrInvalid", err)
		}
	})

	t.Run("end set to N", func(t *testing.T) {
		mem := make([]byte, 128)
		if _, err := Create(mem); err != nil {
			t.Fatalf("create: %v", err)
		}
		setEndRaw(mem, 128)
		if _, err := Open(mem); err != ErrInvalid {
			t.Fatalf("open: got %v, want ErrInvalid", err)
		}
	})
}
