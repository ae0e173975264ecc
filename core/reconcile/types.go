package reconcile

// ExternalEntry is one normalized record from the external metadata source.
// Translating the source's native format (LaunchBox XML, etc.) into this
// shape is the adapter's job; see feature/launchbox.
type ExternalEntry struct {
	// DatabaseID is the source's numeric identifier. 0 = not provided.
	DatabaseID int32

	// GUID is the source's secondary identifier. Empty = not provided.
	GUID string

	// Title is the display name used for fuzzy matching.
	Title string

	Publisher string
	Year      string

	// Genre is the already-resolved genre code, 0 = none.
	Genre uint8

	// Hardware hints, same bit sets as the catalog entry. Zero = no hint.
	LegacySound uint8
	FMSound     uint8
	MIDISound   uint8
	Graphics    uint8
}

// Outcome classifies how one external entry was resolved.
type Outcome string

const (
	// OutcomeMatchedExact means an identity mapping resolved the entry.
	OutcomeMatchedExact Outcome = "matched_exact"
	// OutcomeMatchedFuzzy means title similarity resolved the entry and a
	// new identity mapping was recorded.
	OutcomeMatchedFuzzy Outcome = "matched_fuzzy"
	// OutcomeCreated means a new catalog entry was appended.
	OutcomeCreated Outcome = "created"
)

// Candidate is one fuzzy-match candidate considered for an external entry.
type Candidate struct {
	// Position is the candidate's catalog position.
	Position int `json:"position"`

	// Title is the candidate's catalog title.
	Title string `json:"title"`

	// Score is the similarity score against the external title.
	Score float64 `json:"score"`
}

// AmbiguousCase records an external entry that was skipped because two
// candidates scored too close to call. It is surfaced for manual review
// instead of being resolved by tie-break.
type AmbiguousCase struct {
	// Title is the external entry's title.
	Title string `json:"title"`

	// DatabaseID is the external entry's database ID.
	DatabaseID int32 `json:"database_id"`

	// Best and Second are the two top-scoring candidates.
	Best   Candidate `json:"best"`
	Second Candidate `json:"second"`
}

// Item records the resolution of one external entry.
type Item struct {
	// Title is the external entry's title.
	Title string `json:"title"`

	// DatabaseID is the external entry's database ID.
	DatabaseID int32 `json:"database_id"`

	// Outcome is how the entry was resolved.
	Outcome Outcome `json:"outcome"`

	// Position is the catalog position the entry resolved to.
	Position int `json:"position"`

	// Score is the similarity score for fuzzy matches, 0 otherwise.
	Score float64 `json:"score,omitempty"`
}

// Report summarizes one reconciliation run.
type Report struct {
	// MatchedExact, MatchedFuzzy and Created tally resolved entries by
	// outcome. Every non-ambiguous entry lands in exactly one bucket.
	MatchedExact int `json:"matched_exact"`
	MatchedFuzzy int `json:"matched_fuzzy"`
	Created      int `json:"created"`

	// Items lists per-entry resolutions in batch order.
	Items []Item `json:"items"`

	// Ambiguous lists skipped entries needing manual review.
	Ambiguous []AmbiguousCase `json:"ambiguous"`

	// Warnings collects non-fatal oddities (stale mappings, unknown genre
	// codes) noticed during the run.
	Warnings []string `json:"warnings,omitempty"`
}

// Resolved returns the number of entries that produced an outcome.
func (r *Report) Resolved() int {
	return r.MatchedExact + r.MatchedFuzzy + r.Created
}

// Config holds configuration for the reconciliation engine.
type Config struct {
	// FuzzyThreshold is the minimum similarity score for a fuzzy match.
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" default:"0.8"`
	// FuzzyMargin is the minimum lead the best candidate needs over the
	// runner-up; anything closer is ambiguous and skipped.
	FuzzyMargin float64 `mapstructure:"fuzzy_margin" default:"0.05"`
}
