// Package models defines domain entities for the ankix flashcard client.
//
// The package contains three categories of types:
//
// 1. Wire values exchanged with the backend
//   - [Flashcard] : a question/answer pair, identified only by its position in a deck
//   - [Deck] : a catalog summary (name and card count)
//   - [Package] : a validated binary deck export
//
// 2. Processing job status, modelled as a closed set of variants
//   - [Processing] : still running, with progress in [0,100] and a message
//   - [Completed] : finished, always carrying a deck identifier
//   - [Failed] : terminal failure with a readable message
//
// 3. Client-side values
//   - [Route] : one of the four client routes (upload, status, review, decks)
//   - [ExportRecord] : a persisted row in the local export history
//
// Persistent entities implement the [Model] interface; the [Repository] interface defines their CRUD operations.
package models
