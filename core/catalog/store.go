package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrOutOfRange reports access to a position outside [1, Count]. It is a
// caller bug, not a store fault, and is never wrapped around an I/O error.
var ErrOutOfRange = errors.New("catalog: position out of range")

// Store is a sequence of fixed-width game records addressed by 1-based
// position. Positions are stable identities: records are never physically
// removed or reordered, deletion only sets the tombstone bit.
type Store interface {
	// Append writes a new record at the end and returns its 1-based position.
	Append(e Entry) (int, error)

	// ReadAt returns the record at pos, tombstoned or not.
	ReadAt(pos int) (Entry, error)

	// UpdateAt overwrites the record at pos in place.
	UpdateAt(pos int, e Entry) error

	// SoftDelete sets the tombstone bit at pos. Idempotent.
	SoftDelete(pos int) error

	// Count returns the number of records, including tombstoned ones.
	Count() int

	// Scan calls fn for every position in ascending order, tombstones
	// included; callers decide whether to skip them. fn returning false
	// stops the scan. Each call starts a fresh pass from position 1.
	Scan(fn func(pos int, e Entry) bool) error

	// Flush forces buffered mutations to stable storage.
	Flush() error
}

// FileStore is the GAMES.DAT-backed store used by the launcher itself.
type FileStore struct {
	f        *os.File
	path     string
	count    int
	readOnly bool
}

// OpenFile opens (or creates) a record file. A file size that is not a
// multiple of RecordSize means a torn final record; the partial tail is
// ignored rather than treated as fatal, matching the launcher's tolerance.
func OpenFile(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	return newFileStore(f, path, false)
}

// OpenReadOnly opens an existing record file for reading. Unlike OpenFile
// it never creates the file: a missing catalog is an error, so inspection
// commands cannot plant an empty GAMES.DAT next to a mistyped path.
func OpenReadOnly(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	return newFileStore(f, path, true)
}

func newFileStore(f *os.File, path string, readOnly bool) (*FileStore, error) {
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("catalog: stat %s: %w", path, err)
	}

	return &FileStore{
		f:        f,
		path:     path,
		count:    int(info.Size() / RecordSize),
		readOnly: readOnly,
	}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Close flushes and closes the backing file.
func (s *FileStore) Close() error {
	if s.readOnly {
		return s.f.Close()
	}
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return fmt.Errorf("catalog: sync %s: %w", s.path, err)
	}
	return s.f.Close()
}

func (s *FileStore) Append(e Entry) (int, error) {
	offset := int64(s.count) * RecordSize
	if _, err := s.f.WriteAt(EncodeEntry(e), offset); err != nil {
		return 0, fmt.Errorf("catalog: append record: %w", err)
	}
	s.count++
	return s.count, nil
}

func (s *FileStore) ReadAt(pos int) (Entry, error) {
	if pos < 1 || pos > s.count {
		return Entry{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, pos, s.count)
	}

	buf := make([]byte, RecordSize)
	offset := int64(pos-1) * RecordSize
	if _, err := s.f.ReadAt(buf, offset); err != nil {
		return Entry{}, fmt.Errorf("catalog: read record %d: %w", pos, err)
	}
	return DecodeEntry(buf)
}

func (s *FileStore) UpdateAt(pos int, e Entry) error {
	if pos < 1 || pos > s.count {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, pos, s.count)
	}

	offset := int64(pos-1) * RecordSize
	if _, err := s.f.WriteAt(EncodeEntry(e), offset); err != nil {
		return fmt.Errorf("catalog: update record %d: %w", pos, err)
	}
	return nil
}

func (s *FileStore) SoftDelete(pos int) error {
	e, err := s.ReadAt(pos)
	if err != nil {
		return err
	}
	if e.Deleted {
		return nil
	}
	e.Deleted = true
	return s.UpdateAt(pos, e)
}

func (s *FileStore) Count() int {
	return s.count
}

func (s *FileStore) Scan(fn func(pos int, e Entry) bool) error {
	buf := make([]byte, RecordSize)
	for pos := 1; pos <= s.count; pos++ {
		offset := int64(pos-1) * RecordSize
		if _, err := s.f.ReadAt(buf, offset); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("catalog: scan record %d: %w", pos, err)
		}
		e, err := DecodeEntry(buf)
		if err != nil {
			return err
		}
		if !fn(pos, e) {
			return nil
		}
	}
	return nil
}

func (s *FileStore) Flush() error {
	if s.readOnly {
		return nil
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("catalog: sync %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps records in a slice behind the same Store contract.
// It backs tests and dry-run imports, where file persistence is unwanted.
type MemoryStore struct {
	records []Entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(e Entry) (int, error) {
	s.records = append(s.records, Truncate(e))
	return len(s.records), nil
}

func (s *MemoryStore) ReadAt(pos int) (Entry, error) {
	if pos < 1 || pos > len(s.records) {
		return Entry{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, pos, len(s.records))
	}
	return s.records[pos-1], nil
}

func (s *MemoryStore) UpdateAt(pos int, e Entry) error {
	if pos < 1 || pos > len(s.records) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, pos, len(s.records))
	}
	s.records[pos-1] = Truncate(e)
	return nil
}

func (s *MemoryStore) SoftDelete(pos int) error {
	if pos < 1 || pos > len(s.records) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, pos, len(s.records))
	}
	s.records[pos-1].Deleted = true
	return nil
}

func (s *MemoryStore) Count() int {
	return len(s.records)
}

func (s *MemoryStore) Scan(fn func(pos int, e Entry) bool) error {
	for i, e := range s.records {
		if !fn(i+1, e) {
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Flush() error {
	return nil
}
