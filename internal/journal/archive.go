package journal

import (
	"fmt"
	"os"

	"github.com/aalhour/prbdb/internal/checksum"
	"github.com/aalhour/prbdb/internal/compression"
	"github.com/aalhour/prbdb/internal/encoding"
	"github.com/aalhour/prbdb/internal/logging"
	"github.com/aalhour/prbdb/internal/prb"
	"github.com/aalhour/prbdb/internal/testutil"
)

// archiveMagic tags an archive file so ReadArchive can reject unrelated
// files quickly instead of failing deep inside decompression.
const archiveMagic = "PRBA"

// Seal drains every live record into archivePath (length-prefixed,
// compressed with ctyp, trailed by a checksum of type ztyp computed over
// the compressed bytes with the compression type folded in as the
// checksum's separate last byte, the same technique RocksDB uses for
// block checksums) and then resets the segment to a fresh, empty buffer —
// the records remain recoverable from the archive, but are no longer
// subject to the ring's own overwrite-oldest eviction.
func (s *Store) Seal(archivePath string, ctyp compression.Type, ztyp checksum.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	testutil.MaybeKill(testutil.KPRotateSeal0)

	var plain []byte
	it := s.buf.Iterate()
	for {
		rec, ok := it.Next()
		if !ok {
			break
		}
		plain = encoding.AppendLengthPrefixedSlice(plain, rec)
	}

	testutil.MaybeKill(testutil.KPRotateArchive0)

	compressed, err := compression.Compress(ctyp, plain)
	if err != nil {
		return fmt.Errorf("journal: compress archive: %w", err)
	}

	out := make([]byte, 0, len(archiveMagic)+2+len(compressed)+4)
	out = append(out, archiveMagic...)
	out = append(out, byte(ztyp))
	out = append(out, byte(ctyp))
	out = append(out, compressed...)
	out = encoding.AppendFixed32(out, checksum.ComputeChecksum(ztyp, compressed, byte(ctyp)))

	if err := os.WriteFile(archivePath, out, 0o644); err != nil {
		return fmt.Errorf("journal: write archive %s: %w", archivePath, err)
	}

	testutil.MaybeKill(testutil.KPRotateArchive1)

	fresh, err := prb.Create(s.region.Bytes())
	if err != nil {
		return err
	}
	s.buf = fresh

	s.log.Infof(logging.NSJournal+"sealed %d bytes to %s", len(plain), archivePath)
	return nil
}

// ReadArchive reads back the records written by Seal, verifying the
// trailing checksum before trusting the decompressed content.
func ReadArchive(path string) ([][]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("journal: read archive %s: %w", path, err)
	}
	if len(raw) < len(archiveMagic)+2+4 || string(raw[:len(archiveMagic)]) != archiveMagic {
		return nil, fmt.Errorf("journal: %s is not a valid archive", path)
	}

	ztyp := checksum.Type(raw[len(archiveMagic)])
	ctyp := compression.Type(raw[len(archiveMagic)+1])
	compressed := raw[len(archiveMagic)+2 : len(raw)-4]

	wantChecksum := encoding.DecodeFixed32(raw[len(raw)-4:])
	if checksum.ComputeChecksum(ztyp, compressed, byte(ctyp)) != wantChecksum {
		return nil, ErrArchiveChecksumMismatch
	}

	plain, err := compression.Decompress(ctyp, compressed)
	if err != nil {
		return nil, fmt.Errorf("journal: decompress archive %s: %w", path, err)
	}

	var records [][]byte
	rest := plain
	for len(rest) > 0 {
		rec, n, err := encoding.DecodeLengthPrefixedSlice(rest)
		if err != nil {
			return nil, fmt.Errorf("journal: corrupt archive %s: %w", path, err)
		}
		records = append(records, rec)
		rest = rest[n:]
	}
	return records, nil
}
