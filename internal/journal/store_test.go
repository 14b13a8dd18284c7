package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aalhour/prbdb/internal/checksum"
	"github.com/aalhour/prbdb/internal/compression"
)

func TestCreateAppendOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.prb")

	s, err := Create(path, 4096, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ok, err := s.Append([]byte("hello"))
	if err != nil || !ok {
		t.Fatalf("Append: ok=%v err=%v", ok, err)
	}
	if err := s.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	it := reopened.Iterate()
	rec, ok := it.Next()
	if !ok || string(rec) != "hello" {
		t.Fatalf("Next() = %q, %v; want hello, true", rec, ok)
	}
}

func TestAppend_RefusesAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.prb")
	s, err := Create(path, 4096, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := s.Append([]byte("x")); err != ErrClosed {
		t.Fatalf("Append after Close: got %v, want ErrClosed", err)
	}
}

func TestSeal_ArchivesThenResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.prb")
	archivePath := filepath.Join(t.TempDir(), "segment.archive")

	s, err := Create(path, 4096, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()

	want := []string{"one", "two", "three"}
	for _, w := range want {
		if ok, err := s.Append([]byte(w)); err != nil || !ok {
			t.Fatalf("Append(%q): ok=%v err=%v", w, ok, err)
		}
	}

	if err := s.Seal(archivePath, compression.SnappyCompression, checksum.TypeXXH3); err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if !s.buf.Empty() {
		t.Fatal("Seal should reset the live buffer to empty")
	}

	records, err := ReadArchive(archivePath)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, w := range want {
		if string(records[i]) != w {
			t.Fatalf("record %d = %q, want %q", i, records[i], w)
		}
	}
}

func TestReadArchive_RejectsTamperedChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.prb")
	archivePath := filepath.Join(t.TempDir(), "segment.archive")

	s, err := Create(path, 4096, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()
	if ok, err := s.Append([]byte("payload")); err != nil || !ok {
		t.Fatalf("Append: ok=%v err=%v", ok, err)
	}
	if err := s.Seal(archivePath, compression.NoCompression, checksum.TypeXXHash64); err != nil {
		t.Fatalf("Seal: %v", err)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		t.Fatalf("rewriting archive: %v", err)
	}

	if _, err := ReadArchive(archivePath); err != ErrArchiveChecksumMismatch {
		t.Fatalf("ReadArchive: got %v, want ErrArchiveChecksumMismatch", err)
	}
}

func TestSeal_CRC32CRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.prb")
	archivePath := filepath.Join(t.TempDir(), "segment.archive")

	s, err := Create(path, 4096, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()
	if ok, err := s.Append([]byte("crc")); err != nil || !ok {
		t.Fatalf("Append: ok=%v err=%v", ok, err)
	}
	if err := s.Seal(archivePath, compression.SnappyCompression, checksum.TypeCRC32C); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	records, err := ReadArchive(archivePath)
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	if len(records) != 1 || string(records[0]) != "crc" {
		t.Fatalf("records = %v, want [crc]", records)
	}
}

// TestSeal_NoChecksumSkipsVerification documents that TypeNoChecksum, like
// RocksDB's kNoChecksum, intentionally disables tamper detection: the
// stored and recomputed values are both always 0, so ReadArchive accepts
// the archive regardless of corruption in its compressed payload.
func TestSeal_NoChecksumSkipsVerification(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.prb")
	archivePath := filepath.Join(t.TempDir(), "segment.archive")

	s, err := Create(path, 4096, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer s.Close()
	if ok, err := s.Append([]byte("unverified")); err != nil || !ok {
		t.Fatalf("Append: ok=%v err=%v", ok, err)
	}
	if err := s.Seal(archivePath, compression.NoCompression, checksum.TypeNoChecksum); err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := ReadArchive(archivePath); err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
}
