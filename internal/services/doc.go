// Package services defines the [Service] interface for the flashcard backend and implements it over HTTP with [Client].
//
// # Endpoints
//
//   - POST /api/upload : multipart form, repeated "files" field
//   - POST /api/process : starts card generation, returns {jobId}
//   - GET /api/process/{jobId} : job status
//   - GET /api/cards/list : {decks: [{name, totalCards}]}
//   - GET /api/cards/csv/{deckName} : {cards: [{question, answer}]}
//   - PUT /api/cards/csv/{deckName} : replaces a deck with a JSON array of cards
//   - GET /api/cards/apkg/{deckName} : binary package, application/octet-stream
//   - GET /api/health : {status: "ok"}
//
// Deck names and job ids are path-escaped. Every request carries an X-Request-ID header, and
// [NewHTTPClient] adds a bearer token through golang.org/x/oauth2 when one is configured.
//
// # Status Decoding
//
// [DecodeStatus] turns the optional-field status payload into one of [models.Processing],
// [models.Completed] or [models.Failed]. A completed job without a deck name falls back to the
// uploaded filename and then to the configured fallback deck.
//
// # Error Handling
//
// Errors wrap one kind from the shared package:
//   - [shared.ErrNetwork] : transport failure
//   - [shared.ErrProtocol] : non-2xx status, malformed body or wrong content type
//   - [shared.ErrValidation] : a required response field is missing
//   - [shared.ErrUserInput] : bad local input such as an empty file selection
package services
