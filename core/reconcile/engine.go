package reconcile

import (
	"context"
	"errors"
	"fmt"

	"catalog-manager/core/catalog"
	"catalog-manager/core/filter"
	"catalog-manager/core/idmap"

	"go.uber.org/zap"
)

// Engine merges batches of external metadata entries into the catalog,
// keeping the identity map consistent across repeated imports.
type Engine struct {
	store catalog.Store
	maps  idmap.Store
	cfg   Config
	log   *zap.Logger
}

// NewEngine creates an engine over the given stores. Zero config fields
// take the documented defaults.
func NewEngine(store catalog.Store, maps idmap.Store, cfg Config, log *zap.Logger) *Engine {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = 0.8
	}
	if cfg.FuzzyMargin <= 0 {
		cfg.FuzzyMargin = 0.05
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, maps: maps, cfg: cfg, log: log}
}

// Reconcile processes the batch in input order. Each entry resolves through
// three stages: identity-map hit (update in place), unambiguous fuzzy title
// match (update + record mapping), or creation (append entry + mapping).
// Entries whose best fuzzy candidates are too close to call are skipped and
// reported, never guessed.
//
// Every entry's mutations are flushed before the next entry begins, so an
// aborted run leaves both files mutually consistent and a retry resolves
// the committed entries via the exact path. The first storage fault aborts
// the batch; the report covers the work committed so far.
func (e *Engine) Reconcile(ctx context.Context, batch []ExternalEntry) (*Report, error) {
	report := &Report{}

	for _, ext := range batch {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		item, ambiguous, err := e.reconcileOne(ext, report)
		if err != nil {
			return report, fmt.Errorf("reconcile %q: %w", ext.Title, err)
		}
		if ambiguous != nil {
			report.Ambiguous = append(report.Ambiguous, *ambiguous)
			e.log.Warn("ambiguous fuzzy match skipped",
				zap.String("title", ext.Title),
				zap.Int("best_position", ambiguous.Best.Position),
				zap.Float64("best_score", ambiguous.Best.Score),
				zap.Int("second_position", ambiguous.Second.Position),
				zap.Float64("second_score", ambiguous.Second.Score),
			)
			continue
		}

		switch item.Outcome {
		case OutcomeMatchedExact:
			report.MatchedExact++
		case OutcomeMatchedFuzzy:
			report.MatchedFuzzy++
		case OutcomeCreated:
			report.Created++
		}
		report.Items = append(report.Items, item)

		// Per-item commit: both files land before the next entry.
		if err := e.store.Flush(); err != nil {
			return report, err
		}
		if err := e.maps.Flush(); err != nil {
			return report, err
		}
	}

	return report, nil
}

// reconcileOne resolves a single external entry. A non-nil AmbiguousCase
// means the entry was skipped without mutation.
func (e *Engine) reconcileOne(ext ExternalEntry, report *Report) (Item, *AmbiguousCase, error) {
	// Stage 1: identity map. A mapping whose position no longer holds a
	// live entry is stale (tombstoned since the last import) and falls
	// through to fuzzy matching.
	pos, live, err := e.lookupMapped(ext, report)
	if err != nil {
		return Item{}, nil, err
	}
	if live {
		entry, err := e.store.ReadAt(pos)
		if err != nil {
			return Item{}, nil, err
		}
		if err := e.store.UpdateAt(pos, applyMetadata(entry, ext, report)); err != nil {
			return Item{}, nil, err
		}
		e.log.Debug("exact match",
			zap.String("title", ext.Title),
			zap.Int32("database_id", ext.DatabaseID),
			zap.Int("position", pos),
		)
		return Item{Title: ext.Title, DatabaseID: ext.DatabaseID, Outcome: OutcomeMatchedExact, Position: pos}, nil, nil
	}

	// Stage 2: fuzzy title match over live entries.
	best, second, err := e.bestCandidates(ext.Title)
	if err != nil {
		return Item{}, nil, err
	}
	if best.Position > 0 && best.Score >= e.cfg.FuzzyThreshold {
		if second.Position > 0 && best.Score-second.Score < e.cfg.FuzzyMargin {
			return Item{}, &AmbiguousCase{Title: ext.Title, DatabaseID: ext.DatabaseID, Best: best, Second: second}, nil
		}

		entry, err := e.store.ReadAt(best.Position)
		if err != nil {
			return Item{}, nil, err
		}
		if err := e.store.UpdateAt(best.Position, applyMetadata(entry, ext, report)); err != nil {
			return Item{}, nil, err
		}
		if err := e.appendMapping(best.Position, ext); err != nil {
			return Item{}, nil, err
		}
		e.log.Debug("fuzzy match promoted to exact",
			zap.String("title", ext.Title),
			zap.String("catalog_title", entry.Title),
			zap.Int("position", best.Position),
			zap.Float64("score", best.Score),
		)
		return Item{Title: ext.Title, DatabaseID: ext.DatabaseID, Outcome: OutcomeMatchedFuzzy, Position: best.Position, Score: best.Score}, nil, nil
	}

	// Stage 3: no match, create.
	newPos, err := e.store.Append(newEntry(ext, report))
	if err != nil {
		return Item{}, nil, err
	}
	if err := e.appendMapping(newPos, ext); err != nil {
		return Item{}, nil, err
	}
	e.log.Debug("created catalog entry",
		zap.String("title", ext.Title),
		zap.Int("position", newPos),
	)
	return Item{Title: ext.Title, DatabaseID: ext.DatabaseID, Outcome: OutcomeCreated, Position: newPos}, nil, nil
}

// lookupMapped resolves an external entry through the identity map, by
// database ID first, then GUID. Mappings whose position no longer holds a
// live entry are stale and skipped; a stale ID mapping still gets the GUID
// key tried. A hit only the GUID could resolve appends a refreshed mapping
// carrying both identifiers, so later imports resolve by ID directly.
func (e *Engine) lookupMapped(ext ExternalEntry, report *Report) (pos int, live bool, err error) {
	m, ok, err := idmap.FindByDatabaseID(e.maps, ext.DatabaseID)
	if err != nil {
		return 0, false, err
	}
	if ok {
		pos, live, err = e.liveAt(m.Position, ext.Title, report)
		if err != nil || live {
			return pos, live, err
		}
	}

	m, ok, err = idmap.FindByGUID(e.maps, ext.GUID)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	pos, live, err = e.liveAt(m.Position, ext.Title, report)
	if err != nil || !live {
		return 0, false, err
	}

	// The ID key missed (absent or stale) but the GUID resolved; a single
	// refreshed record makes the next import an ID hit.
	if ext.DatabaseID != 0 {
		if err := e.appendMapping(pos, ext); err != nil {
			return 0, false, err
		}
	}
	return pos, true, nil
}

// liveAt reports whether a mapped position still holds a live entry,
// collecting a warning when it does not.
func (e *Engine) liveAt(pos int, title string, report *Report) (int, bool, error) {
	entry, err := e.store.ReadAt(pos)
	if err != nil {
		if errors.Is(err, catalog.ErrOutOfRange) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("mapping for %q points at position %d beyond the catalog, ignored", title, pos))
			return 0, false, nil
		}
		return 0, false, err
	}
	if entry.Deleted {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("mapping for %q points at tombstoned position %d, ignored", title, pos))
		return 0, false, nil
	}
	return pos, true, nil
}

// bestCandidates scores title against every live catalog entry and returns
// the two best. A zero Position marks "no candidate".
func (e *Engine) bestCandidates(title string) (best, second Candidate, err error) {
	err = e.store.Scan(func(pos int, entry catalog.Entry) bool {
		if entry.Deleted {
			return true
		}
		score := filter.Score(title, entry.Title)
		c := Candidate{Position: pos, Title: entry.Title, Score: score}
		switch {
		case score > best.Score || best.Position == 0:
			second = best
			best = c
		case score > second.Score || second.Position == 0:
			second = c
		}
		return true
	})
	return best, second, err
}

func (e *Engine) appendMapping(pos int, ext ExternalEntry) error {
	if ext.DatabaseID == 0 && ext.GUID == "" {
		return nil
	}
	return e.maps.Append(idmap.Mapping{
		Position:   pos,
		DatabaseID: ext.DatabaseID,
		GUID:       ext.GUID,
	})
}

// applyMetadata overwrites an existing entry's metadata with the external
// values. Absent external fields (empty text, zero code, zero mask) leave
// the entry alone, and the external source never touches invocation fields
// or the timing value: it knows nothing about the local installation.
func applyMetadata(entry catalog.Entry, ext ExternalEntry, report *Report) catalog.Entry {
	if ext.Publisher != "" {
		entry.Publisher = ext.Publisher
	}
	if ext.Year != "" {
		entry.Year = ext.Year
	}
	if ext.Genre != catalog.GenreNone {
		entry.Genre = ext.Genre
	}
	entry.LegacySound |= ext.LegacySound
	entry.FMSound |= ext.FMSound
	entry.MIDISound |= ext.MIDISound
	entry.Graphics |= ext.Graphics

	if !catalog.GenreKnown(entry.Genre) {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("entry %q carries unknown genre code %d, treated as none", entry.Title, entry.Genre))
		entry.Genre = catalog.GenreNone
	}
	return entry
}

// newEntry builds a fresh catalog entry from external metadata. Invocation
// fields stay empty until the launcher's editor fills them in.
func newEntry(ext ExternalEntry, report *Report) catalog.Entry {
	entry := catalog.Entry{
		Title:       ext.Title,
		Publisher:   ext.Publisher,
		Year:        ext.Year,
		Genre:       ext.Genre,
		LegacySound: ext.LegacySound,
		FMSound:     ext.FMSound,
		MIDISound:   ext.MIDISound,
		Graphics:    ext.Graphics,
	}
	if !catalog.GenreKnown(entry.Genre) {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("entry %q carries unknown genre code %d, treated as none", entry.Title, entry.Genre))
		entry.Genre = catalog.GenreNone
	}
	return entry
}
