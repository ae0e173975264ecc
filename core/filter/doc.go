// Package filter evaluates composite predicates against the catalog and
// scores title similarity for the importer's fuzzy matching.
//
// Predicates combine text, genre and hardware-bitmask dimensions with
// logical AND; within a single bitmask dimension any overlapping bit
// matches, so filtering for "sb16,gus" returns titles supporting either
// card. Tombstoned entries are skipped unless explicitly requested.
package filter
