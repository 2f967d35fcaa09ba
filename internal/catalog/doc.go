// Package catalog lists the backend's decks and writes their packages to disk.
//
// Deck names are shown without any path prefix or deck-file extension, so "cards/biology.csv"
// is listed as "biology". A [Catalog] satisfies tasks.DeckSource for bulk exports.
package catalog
