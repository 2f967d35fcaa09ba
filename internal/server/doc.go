// Package server provides an in-memory development backend for the flashcard API.
//
// # Routing
//
// [Backend.Handler] returns a chi router with request ids ([middleware.RequestID]), request logging
// through [RequestLogger] and panic recovery. The endpoints match those consumed by the services package.
//
// # Jobs
//
// Uploaded PDFs are kept in memory. Starting a job parses each file with github.com/ledongthuc/pdf
// and derives placeholder cards from page text. A job reports "pending" on its first poll, then gains
// [Options.Step] percent on every poll until it completes. The deck is stored once the completed
// status has been served. Files that cannot be parsed produce a job whose status carries an error.
//
// # Export
//
// Packages are zip archives containing deck.csv, served as application/octet-stream.
//
// [Serve] runs a handler until its context is cancelled; `ankix mock` uses it.
package server
