// Package reconcile merges external metadata batches into the catalog
// without duplicating entries across repeated imports.
//
// Each batch entry resolves through three stages:
//
//  1. Identity map hit (database ID, then GUID): the mapped catalog entry
//     is updated in place. Authoritative; no further matching.
//  2. Fuzzy title match: the best-scoring live catalog entry above the
//     threshold is updated, and a new identity mapping is appended so the
//     next import resolves it through stage 1.
//  3. Creation: a new catalog entry and its identity mapping are appended.
//
// A fuzzy best whose runner-up scores within the configured margin is
// ambiguous. Ambiguous entries are skipped without mutation and listed in
// the report for manual review; guessing would silently misattribute
// metadata.
//
// Mutations are flushed per entry, so an aborted batch leaves the catalog
// and the identity map mutually consistent and a retry is idempotent: the
// entries committed before the abort resolve through stage 1.
package reconcile
