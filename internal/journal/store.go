package journal

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aalhour/prbdb/internal/logging"
	"github.com/aalhour/prbdb/internal/prb"
	"github.com/aalhour/prbdb/internal/testutil"
)

// Store durably backs a prb.Buffer with a fixed-size file.
type Store struct {
	mu     sync.Mutex
	file   *os.File
	region region
	buf    *prb.Buffer
	log    logging.Logger
	closed bool
}

// Create truncates (or creates) the file at path to size bytes, maps it,
// and initializes a fresh, empty buffer over it.
func Create(path string, size int, log logging.Logger) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("journal: truncate %s: %w", path, err)
	}
	r, err := openRegion(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}
	buf, err := prb.Create(r.Bytes())
	if err != nil {
		r.Close()
		f.Close()
		return nil, err
	}
	return &Store{file: f, region: r, buf: buf, log: logging.OrDefault(log)}, nil
}

// Open maps the existing file at path and adopts it as a buffer. The file
// size determines the segment size; it is not truncated.
func Open(path string, log logging.Logger) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("journal: stat %s: %w", path, err)
	}
	r, err := openRegion(f, int(info.Size()))
	if err != nil {
		f.Close()
		return nil, err
	}
	buf, err := prb.Open(r.Bytes())
	if err != nil {
		r.Close()
		f.Close()
		return nil, fmt.Errorf("journal: %s: %w", path, err)
	}
	return &Store{file: f, region: r, buf: buf, log: logging.OrDefault(log)}, nil
}

// Append reserves space for payload, copies it in, and commits it.
// ErrRecordTooLarge is returned if payload can never fit in this segment's
// configured size — the caller should Seal and retry on a fresh segment.
func (s *Store) Append(payload []byte) (ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	testutil.MaybeKill(testutil.KPSegmentPrepare0)
	data, ok := s.buf.Prepare(len(payload))
	if !ok {
		return false, ErrRecordTooLarge
	}
	copy(data, payload)

	testutil.MaybeKill(testutil.KPSegmentCommit0)
	s.buf.Commit()
	testutil.MaybeKill(testutil.KPSegmentCommit1)

	s.log.Debugf(logging.NSJournal+"appended record (%d bytes)", len(payload))
	return true, nil
}

// Sync persists every Append since the last Sync to stable storage. ctx is
// checked before the (blocking, uninterruptible) msync/fsync call begins;
// it cannot cancel a sync already in flight.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	testutil.MaybeKill(testutil.KPJournalSync0)
	if err := s.region.Sync(); err != nil {
		return err
	}
	testutil.MaybeKill(testutil.KPJournalSync1)
	return nil
}

// Iterate returns an iterator over the currently live records. The
// returned iterator, like prb.Iterator, is invalidated by the next
// Append.
func (s *Store) Iterate() *prb.Iterator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Iterate()
}

// Size returns the segment's total size in bytes, header included.
func (s *Store) Size() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Size()
}

// Close syncs, unmaps, and closes the backing file. Close is not safe to
// call concurrently with any other Store method.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	syncErr := s.region.Sync()
	closeErr := s.region.Close()
	fileErr := s.file.Close()
	if syncErr != nil {
		return syncErr
	}
	if closeErr != nil {
		return closeErr
	}
	return fileErr
}
