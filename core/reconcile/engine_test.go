package reconcile

import (
	"context"
	"errors"
	"testing"

	"catalog-manager/core/catalog"
	"catalog-manager/core/idmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*Engine, *catalog.MemoryStore, *idmap.MemoryStore) {
	t.Helper()
	store := catalog.NewMemoryStore()
	maps := idmap.NewMemoryStore()
	return NewEngine(store, maps, Config{}, zap.NewNop()), store, maps
}

func TestReconcileCreatesThenMatchesExact(t *testing.T) {
	engine, store, maps := newTestEngine(t)
	batch := []ExternalEntry{
		{
			DatabaseID: 1,
			Title:      "SIMCITY 2000",
			Publisher:  "Maxis",
			Year:       "1993",
			Genre:      8,
			FMSound:    catalog.FMSB16,
		},
	}

	// First run against an empty catalog: created.
	report, err := engine.Reconcile(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.MatchedExact)
	assert.Equal(t, 0, report.MatchedFuzzy)

	entry, err := store.ReadAt(1)
	require.NoError(t, err)
	assert.Equal(t, "SIMCITY 2000", entry.Title)
	assert.NotZero(t, entry.FMSound&catalog.FMSB16)
	assert.Equal(t, "1993", entry.Year)

	m, ok, err := idmap.FindByDatabaseID(maps, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, m.Position)

	// Second run with the same batch: everything resolves exactly, the
	// store is unchanged and no mapping is appended.
	report, err = engine.Reconcile(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedExact)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, 1, maps.Count())

	again, err := store.ReadAt(1)
	require.NoError(t, err)
	assert.Equal(t, entry, again, "re-import must not change the record")
}

func TestReconcileFuzzyFallbackPromotesToExact(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	// Existing catalog entry with no mapping.
	_, err := store.Append(catalog.Entry{Title: "SIMCITY 2000"})
	require.NoError(t, err)

	report, err := engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 1, Title: "SimCity 2000", Publisher: "Maxis", Year: "1993"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.MatchedFuzzy)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, store.Count(), "no duplicate entry")

	entry, err := store.ReadAt(1)
	require.NoError(t, err)
	assert.Equal(t, "SIMCITY 2000", entry.Title, "catalog title is kept")
	assert.Equal(t, "Maxis", entry.Publisher)
	assert.Equal(t, "1993", entry.Year)

	m, ok, err := idmap.FindByDatabaseID(maps, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, m.Position, "fuzzy match is promoted to an exact mapping")
}

func TestReconcileExactMatchBeatsBetterFuzzyCandidate(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	posMapped, err := store.Append(catalog.Entry{Title: "SC2K"})
	require.NoError(t, err)
	_, err = store.Append(catalog.Entry{Title: "SimCity 2000"})
	require.NoError(t, err)
	require.NoError(t, maps.Append(idmap.Mapping{Position: posMapped, DatabaseID: 1}))

	// The fuzzy scorer would prefer position 2, but the identity mapping
	// is authoritative.
	report, err := engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 1, Title: "SimCity 2000", Publisher: "Maxis"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.MatchedExact)
	require.Len(t, report.Items, 1)
	assert.Equal(t, posMapped, report.Items[0].Position)

	mapped, err := store.ReadAt(posMapped)
	require.NoError(t, err)
	assert.Equal(t, "Maxis", mapped.Publisher)

	other, err := store.ReadAt(2)
	require.NoError(t, err)
	assert.Empty(t, other.Publisher, "the fuzzy candidate is untouched")
}

func TestReconcileGUIDFallbackWhenNoDatabaseID(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	pos, err := store.Append(catalog.Entry{Title: "Crusader"})
	require.NoError(t, err)
	require.NoError(t, maps.Append(idmap.Mapping{Position: pos, GUID: "abc-123"}))

	report, err := engine.Reconcile(context.Background(), []ExternalEntry{
		{GUID: "abc-123", Title: "Crusader: No Remorse", Publisher: "Origin"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedExact)

	entry, err := store.ReadAt(pos)
	require.NoError(t, err)
	assert.Equal(t, "Origin", entry.Publisher)
}

func TestReconcileGUIDHitBackfillsDatabaseID(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	pos, err := store.Append(catalog.Entry{Title: "Crusader"})
	require.NoError(t, err)
	// An older import only knew the GUID.
	require.NoError(t, maps.Append(idmap.Mapping{Position: pos, GUID: "abc-123"}))

	batch := []ExternalEntry{
		{DatabaseID: 41, GUID: "abc-123", Title: "Crusader: No Remorse"},
	}
	report, err := engine.Reconcile(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedExact)

	m, ok, err := idmap.FindByDatabaseID(maps, 41)
	require.NoError(t, err)
	require.True(t, ok, "the refreshed mapping must resolve by ID")
	assert.Equal(t, pos, m.Position)
	assert.Equal(t, "abc-123", m.GUID)
	assert.Equal(t, 2, maps.Count())

	// The next import is an ID hit; no further record is appended.
	report, err = engine.Reconcile(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedExact)
	assert.Equal(t, 2, maps.Count())
}

func TestReconcileStaleDatabaseIDMappingResolvesByGUID(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	old, err := store.Append(catalog.Entry{Title: "Ascendancy"})
	require.NoError(t, err)
	current, err := store.Append(catalog.Entry{Title: "Ascendancy"})
	require.NoError(t, err)
	require.NoError(t, maps.Append(idmap.Mapping{Position: old, DatabaseID: 5}))
	require.NoError(t, maps.Append(idmap.Mapping{Position: current, GUID: "asc-guid"}))
	require.NoError(t, store.SoftDelete(old))

	report, err := engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 5, GUID: "asc-guid", Title: "Ascendancy", Year: "1995"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.MatchedExact, "the GUID key rescues a stale ID mapping")
	assert.Equal(t, 2, store.Count(), "no duplicate created")
	assert.NotEmpty(t, report.Warnings, "the stale mapping is reported")

	entry, err := store.ReadAt(current)
	require.NoError(t, err)
	assert.Equal(t, "1995", entry.Year)

	m, ok, err := idmap.FindByDatabaseID(maps, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, current, m.Position, "the ID key now points at the live entry")
}

func TestReconcileAmbiguousFuzzySkipped(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	// Two candidates within the margin of each other.
	_, err := store.Append(catalog.Entry{Title: "Ultima VII Part One"})
	require.NoError(t, err)
	_, err = store.Append(catalog.Entry{Title: "Ultima VII Part Two"})
	require.NoError(t, err)

	report, err := engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 9, Title: "Ultima VII"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Resolved(), "ambiguous entries produce no outcome")
	require.Len(t, report.Ambiguous, 1)
	assert.Equal(t, "Ultima VII", report.Ambiguous[0].Title)
	assert.Equal(t, 2, store.Count(), "nothing created")
	assert.Equal(t, 0, maps.Count(), "no mapping recorded")
}

func TestReconcileStaleMappingFallsThrough(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	pos, err := store.Append(catalog.Entry{Title: "Ascendancy"})
	require.NoError(t, err)
	require.NoError(t, maps.Append(idmap.Mapping{Position: pos, DatabaseID: 5}))
	require.NoError(t, store.SoftDelete(pos))

	// The mapped entry is tombstoned; the import falls back to fuzzy and,
	// with no live candidates, creates a fresh entry.
	report, err := engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 5, Title: "Ascendancy", Year: "1995"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.NotEmpty(t, report.Warnings)
	assert.Equal(t, 2, store.Count())

	m, ok, err := idmap.FindByDatabaseID(maps, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, m.Position, "new mapping wins over the stale one")
}

func TestReconcileUpdateKeepsLocalFields(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	pos, err := store.Append(catalog.Entry{
		Title:   "Dune II",
		Path:    `C:\GAMES\DUNE2`,
		Command: "DUNE2.EXE",
		Args:    "/vga",
		Timing:  250,
		FMSound: catalog.FMAdLib,
	})
	require.NoError(t, err)
	require.NoError(t, maps.Append(idmap.Mapping{Position: pos, DatabaseID: 77}))

	_, err = engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 77, Title: "Dune II", Publisher: "Westwood", Year: "1992", FMSound: catalog.FMSB16},
	})
	require.NoError(t, err)

	entry, err := store.ReadAt(pos)
	require.NoError(t, err)
	assert.Equal(t, `C:\GAMES\DUNE2`, entry.Path, "invocation fields are never touched")
	assert.Equal(t, "DUNE2.EXE", entry.Command)
	assert.Equal(t, uint16(250), entry.Timing)
	assert.Equal(t, "Westwood", entry.Publisher)
	assert.Equal(t, catalog.FMAdLib|catalog.FMSB16, entry.FMSound, "hints are additive")
}

func TestReconcileEmptyExternalFieldsPreserveExisting(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	pos, err := store.Append(catalog.Entry{Title: "Zork", Publisher: "Infocom", Year: "1982", Genre: 2})
	require.NoError(t, err)
	require.NoError(t, maps.Append(idmap.Mapping{Position: pos, DatabaseID: 3}))

	_, err = engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 3, Title: "Zork"},
	})
	require.NoError(t, err)

	entry, err := store.ReadAt(pos)
	require.NoError(t, err)
	assert.Equal(t, "Infocom", entry.Publisher)
	assert.Equal(t, "1982", entry.Year)
	assert.Equal(t, uint8(2), entry.Genre)
}

func TestReconcileBatchOrderAndMultipleOutcomes(t *testing.T) {
	engine, store, maps := newTestEngine(t)

	existing, err := store.Append(catalog.Entry{Title: "PREHISTORIK 2"})
	require.NoError(t, err)
	mappedPos, err := store.Append(catalog.Entry{Title: "One Must Fall 2097"})
	require.NoError(t, err)
	require.NoError(t, maps.Append(idmap.Mapping{Position: mappedPos, DatabaseID: 20}))

	report, err := engine.Reconcile(context.Background(), []ExternalEntry{
		{DatabaseID: 20, Title: "One Must Fall 2097", Publisher: "Epic"},
		{DatabaseID: 21, Title: "Prehistorik 2"},
		{DatabaseID: 22, Title: "Jazz Jackrabbit"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.MatchedExact)
	assert.Equal(t, 1, report.MatchedFuzzy)
	assert.Equal(t, 1, report.Created)

	require.Len(t, report.Items, 3)
	assert.Equal(t, OutcomeMatchedExact, report.Items[0].Outcome)
	assert.Equal(t, OutcomeMatchedFuzzy, report.Items[1].Outcome)
	assert.Equal(t, existing, report.Items[1].Position)
	assert.Equal(t, OutcomeCreated, report.Items[2].Outcome)
	assert.Equal(t, 3, store.Count())
}

func TestReconcileCancelledContextAborts(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := engine.Reconcile(ctx, []ExternalEntry{
		{DatabaseID: 1, Title: "Never Imported"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, report.Resolved())
	assert.Equal(t, 0, store.Count())
}

// faultyStore wraps a MemoryStore and fails Append after a set number of
// successes, standing in for a disk fault mid-batch.
type faultyStore struct {
	*catalog.MemoryStore
	appendsLeft int
}

func (s *faultyStore) Append(e catalog.Entry) (int, error) {
	if s.appendsLeft <= 0 {
		return 0, errors.New("disk fault")
	}
	s.appendsLeft--
	return s.MemoryStore.Append(e)
}

func TestReconcileStorageFaultPreservesCommittedWork(t *testing.T) {
	store := &faultyStore{MemoryStore: catalog.NewMemoryStore(), appendsLeft: 1}
	maps := idmap.NewMemoryStore()
	engine := NewEngine(store, maps, Config{}, zap.NewNop())

	batch := []ExternalEntry{
		{DatabaseID: 1, Title: "Committed"},
		{DatabaseID: 2, Title: "Fails"},
	}

	report, err := engine.Reconcile(context.Background(), batch)
	require.Error(t, err)

	// The first entry's work survives the abort.
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, store.Count())
	m, ok, findErr := idmap.FindByDatabaseID(maps, 1)
	require.NoError(t, findErr)
	require.True(t, ok)
	assert.Equal(t, 1, m.Position)

	// Retrying with a healthy store resolves the committed entry exactly
	// and only creates the one that failed.
	store.appendsLeft = 1
	report, err = engine.Reconcile(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedExact)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 2, store.Count())
}
