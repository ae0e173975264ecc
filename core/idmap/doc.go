// Package idmap implements the LaunchBox identity map: an append-only file
// of fixed-width 48-byte records (LBMAP.DAT) binding catalog positions to
// LaunchBox database IDs and GUIDs.
//
// The map is a pure acceleration structure for re-imports. The catalog is
// fully usable without it; when it is missing the importer simply falls
// back to fuzzy title matching for every entry.
//
// Records are never updated or deleted. A correction is a new record for
// the same key, and all lookups are defined as most-recent-wins.
package idmap
