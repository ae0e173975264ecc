// Package catalog implements the launcher's game record store: a sequence
// of fixed-width 256-byte records in GAMES.DAT, addressed by stable 1-based
// position.
//
// # Format
//
// Records are packed with Pascal strings (length byte + fixed capacity) in
// CP437, single-byte flag sets for sound and graphics hardware, a genre
// code from a closed table, and a tombstone byte for soft deletion. The
// exact layout is documented in codec.go and is a published contract: the
// DOS launcher and external tools read the same file.
//
// # Position stability
//
// Records are never physically removed or reordered. Deletion sets the
// tombstone bit and nothing else, so a record's position can be used as a
// durable identity by the idmap package.
//
// # Usage
//
//	store, err := catalog.OpenFile("GAMES.DAT")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	pos, _ := store.Append(catalog.Entry{Title: "SIMCITY 2000"})
//	entry, _ := store.ReadAt(pos)
package catalog
