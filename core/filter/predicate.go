package filter

import (
	"strings"

	"catalog-manager/core/catalog"
)

// GenreAny disables the genre dimension of a predicate.
const GenreAny = -1

// Predicate is a composite catalog filter. Zero-valued dimensions are
// unconstrained; supplied dimensions combine with logical AND. Within one
// bitmask dimension the semantics are additive: any overlap between the
// mask and the entry's flags matches.
type Predicate struct {
	// Title matches entries whose title contains this substring,
	// case-insensitively. Empty matches all.
	Title string

	// Publisher matches entries whose publisher contains this substring,
	// case-insensitively.
	Publisher string

	// Year matches entries with exactly this year text.
	Year string

	// Genre matches entries with exactly this genre code; GenreAny (or any
	// negative value) disables the dimension.
	Genre int

	// Bitmask dimensions. Zero disables a dimension.
	LegacySoundMask uint8
	FMSoundMask     uint8
	MIDISoundMask   uint8
	GraphicsMask    uint8

	// RequireNoCD excludes entries that need removable media.
	RequireNoCD bool

	// IncludeDeleted includes tombstoned entries, which are skipped by
	// default.
	IncludeDeleted bool
}

// NewPredicate returns a predicate that matches every live entry.
func NewPredicate() Predicate {
	return Predicate{Genre: GenreAny}
}

// Match reports whether e satisfies every supplied dimension.
func (p Predicate) Match(e catalog.Entry) bool {
	if e.Deleted && !p.IncludeDeleted {
		return false
	}
	if p.Title != "" && !strings.Contains(strings.ToUpper(e.Title), strings.ToUpper(p.Title)) {
		return false
	}
	if p.Publisher != "" && !strings.Contains(strings.ToUpper(e.Publisher), strings.ToUpper(p.Publisher)) {
		return false
	}
	if p.Year != "" && e.Year != p.Year {
		return false
	}
	if p.Genre >= 0 && int(e.Genre) != p.Genre {
		return false
	}
	if p.LegacySoundMask != 0 && e.LegacySound&p.LegacySoundMask == 0 {
		return false
	}
	if p.FMSoundMask != 0 && e.FMSound&p.FMSoundMask == 0 {
		return false
	}
	if p.MIDISoundMask != 0 && e.MIDISound&p.MIDISoundMask == 0 {
		return false
	}
	if p.GraphicsMask != 0 && e.Graphics&p.GraphicsMask == 0 {
		return false
	}
	if p.RequireNoCD && e.RequiresCD {
		return false
	}
	return true
}

// Apply streams matching entries from the store's scan in position order.
// fn returning false stops the stream early.
func Apply(st catalog.Store, p Predicate, fn func(pos int, e catalog.Entry) bool) error {
	return st.Scan(func(pos int, e catalog.Entry) bool {
		if !p.Match(e) {
			return true
		}
		return fn(pos, e)
	})
}
