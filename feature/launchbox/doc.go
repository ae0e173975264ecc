// Package launchbox translates LaunchBox XML exports into the normalized
// external batch consumed by the reconcile engine.
//
// The adapter extracts the title, database ID, GUID, publisher, release
// year and primary genre from each <Game> element, resolves genre labels
// to the catalog's closed genre table, and canonicalizes GUIDs. LaunchBox
// carries no DOS hardware information, so the hint masks stay zero.
package launchbox
