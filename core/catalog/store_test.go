package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFixtures runs the same assertions against both Store implementations.
func storeFixtures(t *testing.T) map[string]Store {
	t.Helper()

	file, err := OpenFile(filepath.Join(t.TempDir(), "GAMES.DAT"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	return map[string]Store{
		"file":   file,
		"memory": NewMemoryStore(),
	}
}

func TestStoreAppendAndReadAt(t *testing.T) {
	for name, store := range storeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			first := Entry{Title: "Doom", Year: "1993", FMSound: FMSB16}
			second := Entry{Title: "Keen", Year: "1990"}

			pos1, err := store.Append(first)
			require.NoError(t, err)
			assert.Equal(t, 1, pos1)

			pos2, err := store.Append(second)
			require.NoError(t, err)
			assert.Equal(t, 2, pos2)

			got, err := store.ReadAt(pos1)
			require.NoError(t, err)
			assert.Equal(t, first, got)

			got, err = store.ReadAt(pos2)
			require.NoError(t, err)
			assert.Equal(t, second, got)
			assert.Equal(t, 2, store.Count())
		})
	}
}

func TestStoreOutOfRange(t *testing.T) {
	for name, store := range storeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Append(Entry{Title: "Only"})
			require.NoError(t, err)

			tests := []int{0, -1, 2, 100}
			for _, pos := range tests {
				_, err := store.ReadAt(pos)
				assert.ErrorIs(t, err, ErrOutOfRange, "ReadAt(%d)", pos)

				err = store.UpdateAt(pos, Entry{})
				assert.ErrorIs(t, err, ErrOutOfRange, "UpdateAt(%d)", pos)

				err = store.SoftDelete(pos)
				assert.ErrorIs(t, err, ErrOutOfRange, "SoftDelete(%d)", pos)
			}
		})
	}
}

func TestStoreUpdateAtOverwritesInPlace(t *testing.T) {
	for name, store := range storeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			pos, err := store.Append(Entry{Title: "X-Wing", Publisher: ""})
			require.NoError(t, err)

			updated := Entry{Title: "X-Wing", Publisher: "LucasArts", Year: "1993"}
			require.NoError(t, store.UpdateAt(pos, updated))

			got, err := store.ReadAt(pos)
			require.NoError(t, err)
			assert.Equal(t, updated, got)
			assert.Equal(t, 1, store.Count(), "update must not grow the store")
		})
	}
}

func TestSoftDeleteIsIdempotentTombstone(t *testing.T) {
	for name, store := range storeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			entry := Entry{Title: "Syndicate", Publisher: "Bullfrog", Year: "1993"}
			pos, err := store.Append(entry)
			require.NoError(t, err)

			require.NoError(t, store.SoftDelete(pos))
			require.NoError(t, store.SoftDelete(pos))

			got, err := store.ReadAt(pos)
			require.NoError(t, err)
			assert.True(t, got.Deleted)

			// Only the tombstone bit changes.
			got.Deleted = false
			assert.Equal(t, entry, got)
			assert.Equal(t, 1, store.Count(), "tombstoning must not remove the slot")
		})
	}
}

func TestScanVisitsAllPositionsInOrder(t *testing.T) {
	for name, store := range storeFixtures(t) {
		t.Run(name, func(t *testing.T) {
			titles := []string{"Alpha", "Beta", "Gamma"}
			for _, title := range titles {
				_, err := store.Append(Entry{Title: title})
				require.NoError(t, err)
			}
			require.NoError(t, store.SoftDelete(2))

			var positions []int
			var seen []string
			err := store.Scan(func(pos int, e Entry) bool {
				positions = append(positions, pos)
				seen = append(seen, e.Title)
				return true
			})
			require.NoError(t, err)

			assert.Equal(t, []int{1, 2, 3}, positions, "scan includes tombstoned positions")
			assert.Equal(t, titles, seen)

			// A second scan starts fresh from position 1.
			count := 0
			err = store.Scan(func(pos int, e Entry) bool {
				count++
				return count < 2
			})
			require.NoError(t, err)
			assert.Equal(t, 2, count, "scan stops when fn returns false")
		})
	}
}

func TestOpenFileRecoversExistingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GAMES.DAT")

	store, err := OpenFile(path)
	require.NoError(t, err)
	_, err = store.Append(Entry{Title: "Prince of Persia", Year: "1989"})
	require.NoError(t, err)
	_, err = store.Append(Entry{Title: "Lemmings", Year: "1991"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Count())
	got, err := reopened.ReadAt(2)
	require.NoError(t, err)
	assert.Equal(t, "Lemmings", got.Title)
}

func TestOpenReadOnlyNeverCreatesTheFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GAMES.DAT")

	_, err := OpenReadOnly(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "a read-only open must not plant a file")
}

func TestOpenReadOnlyReadsExistingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GAMES.DAT")

	w, err := OpenFile(path)
	require.NoError(t, err)
	_, err = w.Append(Entry{Title: "Stunts", Year: "1990"})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 1, r.Count())
	got, err := r.ReadAt(1)
	require.NoError(t, err)
	assert.Equal(t, "Stunts", got.Title)
}

func TestOpenFileIgnoresPartialTailRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GAMES.DAT")

	store, err := OpenFile(path)
	require.NoError(t, err)
	_, err = store.Append(Entry{Title: "Complete"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Simulate a torn write of a second record.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write(make([]byte, RecordSize/2))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 1, reopened.Count())
}
