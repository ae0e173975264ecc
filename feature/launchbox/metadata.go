package launchbox

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"catalog-manager/core/catalog"
	"catalog-manager/core/reconcile"
	"catalog-manager/core/utils"

	"github.com/google/uuid"
)

// xmlGame mirrors one <Game> element of a LaunchBox export. Only the
// fields the importer consumes are decoded.
type xmlGame struct {
	Title       string `xml:"Title"`
	DatabaseID  string `xml:"DatabaseID"`
	ID          string `xml:"Id"`
	Publisher   string `xml:"Publisher"`
	ReleaseDate string `xml:"ReleaseDate"`
	Genre       string `xml:"Genre"`
}

type xmlDocument struct {
	Games []xmlGame `xml:"Game"`
}

// Parse reads a LaunchBox XML export and returns the normalized external
// batch in document order. Games without a title are skipped; everything
// else is normalized leniently, since exports vary a lot between LaunchBox
// versions.
func Parse(r io.Reader) ([]reconcile.ExternalEntry, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("launchbox: decode xml: %w", err)
	}

	entries := make([]reconcile.ExternalEntry, 0, len(doc.Games))
	for _, g := range doc.Games {
		title := strings.TrimSpace(g.Title)
		if title == "" {
			continue
		}

		entries = append(entries, reconcile.ExternalEntry{
			DatabaseID: int32(utils.ToInt(strings.TrimSpace(g.DatabaseID))),
			GUID:       normalizeGUID(g.ID),
			Title:      title,
			Publisher:  strings.TrimSpace(g.Publisher),
			Year:       releaseYear(g.ReleaseDate),
			Genre:      catalog.GenreCode(primaryGenre(g.Genre)),
		})
	}
	return entries, nil
}

// ParseFile parses the export at path.
func ParseFile(path string) ([]reconcile.ExternalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("launchbox: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// releaseYear extracts the 4-digit year from a release date, whose format
// varies between exports (YYYY, YYYY-MM-DD, full timestamps).
func releaseYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) > 4 {
		date = date[:4]
	}
	return date
}

// primaryGenre returns the first of a semicolon-separated genre list.
func primaryGenre(genre string) string {
	if i := strings.IndexByte(genre, ';'); i >= 0 {
		genre = genre[:i]
	}
	return strings.TrimSpace(genre)
}

// normalizeGUID canonicalizes a LaunchBox GUID so that mapping lookups are
// format-insensitive. Unparseable values are kept verbatim rather than
// dropped; they still work as opaque keys.
func normalizeGUID(guid string) string {
	guid = strings.TrimSpace(guid)
	if guid == "" {
		return ""
	}
	if u, err := uuid.Parse(guid); err == nil {
		return u.String()
	}
	return guid
}
