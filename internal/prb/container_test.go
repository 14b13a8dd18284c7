package prb

import (
	"testing"
)

func TestCreate_RejectsTooSmall(t *testing.T) {
	for _, n := range []int{0, 1, HeaderSize - 1, HeaderSize} {
		if _, err := Create(make([]byte, n)); err != ErrTooSmall {
			t.Fatalf("Create(%d bytes): got %v, want ErrTooSmall", n, err)
		}
	}
}

func TestCreate_EmptyBuffer(t *testing.T) {
	b, err := Create(make([]byte, 64))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !b.Empty() {
		t.Fatal("freshly created buffer should be Empty")
	}
	if b.Size() != 64 {
		t.Fatalf("Size() = %d, want 64", b.Size())
	}
}

func TestOpen_RoundTrip(t *testing.T) {
	mem := make([]byte, 128)
	b, err := Create(mem)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, ok := b.Prepare(5)
	if !ok {
		t.Fatal("Prepare: want ok")
	}
	copy(data, "hello")
	b.Commit()

	reopened, err := Open(mem)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	it := reopened.Iterate()
	rec, ok := it.Next()
	if !ok || string(rec) != "hello" {
		t.Fatalf("Next() = %q, %v; want %q, true", rec, ok, "hello")
	}
	if _, ok := it.Next(); ok {
		t.Fatal("second Next() should report no more records")
	}
}

func TestOpen_RejectsWrongVersion(t *testing.T) {
	mem := make([]byte, 64)
	if _, err := Create(mem); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mem[0] = 0xFF
	if _, err := Open(mem); err != ErrInvalid {
		t.Fatalf("Open: got %v, want ErrInvalid", err)
	}
}

func TestOpen_RejectsSizeMismatch(t *testing.T) {
	mem := make([]byte, 64)
	if _, err := Create(mem); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := Open(mem[:32]); err != ErrInvalid {
		t.Fatalf("Open on truncated region: got %v, want ErrInvalid", err)
	}
}

func TestOpen_RejectsCorruptedRecordStream(t *testing.T) {
	mem := make([]byte, 64)
	b, err := Create(mem)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, ok := b.Prepare(8)
	if !ok {
		t.Fatal("Prepare: want ok")
	}
	copy(data, "deadbeef")
	b.Commit()

	// Corrupt the record's declared length so the walk overruns end.
	mem[BaseOffset] = 0xFF
	mem[BaseOffset+1] = 0xFF

	if _, err := Open(mem); err != ErrInvalid {
		t.Fatalf("Open on corrupted stream: got %v, want ErrInvalid", err)
	}
}

func TestOpen_RejectsUninitializedGarbage(t *testing.T) {
	mem := make([]byte, 64)
	for i := range mem {
		mem[i] = 0xAB
	}
	if _, err := Open(mem); err != ErrInvalid {
		t.Fatalf("Open on garbage: got %v, want ErrInvalid", err)
	}
}
