package idmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// On-disk mapping record layout (48 bytes):
//
//	0  catalog position  uint16, little-endian (0 = unused slot)
//	2  database ID       int32, little-endian
//	6  GUID              String[36] (length byte + CP437 data)
//	43 zero padding to 48
const (
	// RecordSize is the size of one encoded mapping record.
	RecordSize = 48
	// GUIDWidth is the capacity of the GUID field, sized for the canonical
	// hyphenated UUID form.
	GUIDWidth = 36
)

var (
	cp437Encoder = encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())
	cp437Decoder = charmap.CodePage437.NewDecoder()
)

// ErrPositionRange reports a position the record's uint16 field cannot
// hold. Truncating it would silently bind the mapping to a different
// catalog slot, so encoding fails instead.
var ErrPositionRange = errors.New("idmap: position outside uint16 range")

// Mapping binds a catalog position to the external source's identity.
// Either DatabaseID or GUID may be absent (zero/empty) but not both in a
// useful record.
type Mapping struct {
	// Position is the 1-based catalog position. 0 marks an unused slot and
	// is skipped by lookups.
	Position int

	// DatabaseID is the LaunchBox numeric database identifier.
	DatabaseID int32

	// GUID is the LaunchBox entry GUID, canonical form when parseable.
	GUID string
}

// Encode packs a mapping into its fixed-width on-disk form. Positions
// outside [0, 65535] are unrepresentable and rejected; 0 stays legal as
// the unused-slot marker.
func Encode(m Mapping) ([]byte, error) {
	if m.Position < 0 || m.Position > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d", ErrPositionRange, m.Position)
	}

	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint16(buf[0:], uint16(m.Position))
	binary.LittleEndian.PutUint32(buf[2:], uint32(m.DatabaseID))

	guid, err := cp437Encoder.Bytes([]byte(m.GUID))
	if err != nil {
		guid = nil
	}
	if len(guid) > GUIDWidth {
		guid = guid[:GUIDWidth]
	}
	buf[6] = byte(len(guid))
	copy(buf[7:], guid)
	return buf, nil
}

// Decode unpacks a fixed-width mapping record.
func Decode(data []byte) (Mapping, error) {
	if len(data) != RecordSize {
		return Mapping{}, fmt.Errorf("idmap: record must be exactly %d bytes, got %d", RecordSize, len(data))
	}

	m := Mapping{
		Position:   int(binary.LittleEndian.Uint16(data[0:])),
		DatabaseID: int32(binary.LittleEndian.Uint32(data[2:])),
	}

	n := int(data[6])
	if n > GUIDWidth {
		n = GUIDWidth
	}
	guid, err := cp437Decoder.Bytes(data[7 : 7+n])
	if err != nil {
		return m, nil
	}
	m.GUID = string(guid)
	return m, nil
}

// Store is an append-only sequence of mapping records. There is no update
// or delete: corrections are appended and lookups return the last match.
type Store interface {
	// Append adds a mapping record at the end.
	Append(m Mapping) error

	// Count returns the number of records.
	Count() int

	// Scan calls fn for every record in file order, unused slots included.
	// fn returning false stops the scan.
	Scan(fn func(m Mapping) bool) error

	// Flush forces buffered mutations to stable storage.
	Flush() error
}

// FindByDatabaseID returns the most recent mapping with the given database
// ID, or ok=false when none exists. Zero IDs never match.
func FindByDatabaseID(s Store, id int32) (Mapping, bool, error) {
	if id == 0 {
		return Mapping{}, false, nil
	}
	var found Mapping
	var ok bool
	err := s.Scan(func(m Mapping) bool {
		if m.Position > 0 && m.DatabaseID == id {
			found, ok = m, true
		}
		return true
	})
	return found, ok, err
}

// FindByGUID returns the most recent mapping with the given GUID.
func FindByGUID(s Store, guid string) (Mapping, bool, error) {
	if guid == "" {
		return Mapping{}, false, nil
	}
	var found Mapping
	var ok bool
	err := s.Scan(func(m Mapping) bool {
		if m.Position > 0 && m.GUID == guid {
			found, ok = m, true
		}
		return true
	})
	return found, ok, err
}

// FindByPosition returns the most recent mapping for a catalog position.
func FindByPosition(s Store, pos int) (Mapping, bool, error) {
	if pos <= 0 {
		return Mapping{}, false, nil
	}
	var found Mapping
	var ok bool
	err := s.Scan(func(m Mapping) bool {
		if m.Position == pos {
			found, ok = m, true
		}
		return true
	})
	return found, ok, err
}

// FileStore is the LBMAP.DAT-backed store. The file is optional: opening a
// missing file creates it empty, and its absence only means no accelerated
// matching is available.
type FileStore struct {
	f        *os.File
	path     string
	count    int
	readOnly bool
}

// OpenFile opens (or creates) a mapping file. A partial trailing record is
// ignored.
func OpenFile(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("idmap: open %s: %w", path, err)
	}
	return newFileStore(f, path, false)
}

// OpenReadOnly opens an existing mapping file for reading. Unlike OpenFile
// it never creates the file, so inspection commands cannot plant an empty
// map next to a mistyped path.
func OpenReadOnly(path string) (*FileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("idmap: open %s: %w", path, err)
	}
	return newFileStore(f, path, true)
}

func newFileStore(f *os.File, path string, readOnly bool) (*FileStore, error) {
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("idmap: stat %s: %w", path, err)
	}

	return &FileStore{
		f:        f,
		path:     path,
		count:    int(info.Size() / RecordSize),
		readOnly: readOnly,
	}, nil
}

// Close flushes and closes the backing file.
func (s *FileStore) Close() error {
	if s.readOnly {
		return s.f.Close()
	}
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return fmt.Errorf("idmap: sync %s: %w", s.path, err)
	}
	return s.f.Close()
}

func (s *FileStore) Append(m Mapping) error {
	buf, err := Encode(m)
	if err != nil {
		return err
	}
	offset := int64(s.count) * RecordSize
	if _, err := s.f.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("idmap: append record: %w", err)
	}
	s.count++
	return nil
}

func (s *FileStore) Count() int {
	return s.count
}

func (s *FileStore) Scan(fn func(m Mapping) bool) error {
	buf := make([]byte, RecordSize)
	for i := 0; i < s.count; i++ {
		if _, err := s.f.ReadAt(buf, int64(i)*RecordSize); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("idmap: scan record %d: %w", i, err)
		}
		m, err := Decode(buf)
		if err != nil {
			return err
		}
		if !fn(m) {
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
		return fmt.Errorf("idmap: sync %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps mapping records in a slice behind the Store contract,
// for tests and dry-run imports.
type MemoryStore struct {
	records []Mapping
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(m Mapping) error {
	if m.Position < 0 || m.Position > math.MaxUint16 {
		return fmt.Errorf("%w: %d", ErrPositionRange, m.Position)
	}
	s.records = append(s.records, m)
	return nil
}

func (s *MemoryStore) Count() int {
	return len(s.records)
}

func (s *MemoryStore) Scan(fn func(m Mapping) bool) error {
	for _, m := range s.records {
		if !fn(m) {
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Flush() error {
	return nil
}
