// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has one screen per client route ([models.Route]):
//  1. Upload (/) : Enter PDF paths and start card generation
//  2. Status (/status/:jobId) : Follow the processing job until it completes or fails
//  3. Review (/review/:deckName) : Step through, edit, delete, save and export cards
//  4. Decks (/decks) : Browse decks, open one for review or download its package
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Poll updates flow through a channel from a [tasks.PollHandle]; leaving the Status screen cancels the handle, and
// messages tagged with an older navigation generation are dropped so a torn-down screen never changes state.
//
// Export is offered on the Review screen only after the last card has been reached.
package ui
