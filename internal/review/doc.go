// Package review holds the state of one deck review: the cards, the cursor over them and the
// operations that write them back.
//
// A [Collection] loads a deck through a [CardStore], applies local edits and deletes, and
// persists the whole deck on request. A [Cursor] tracks the displayed card and whether the last
// card has been reached; that flag never clears, so deleting cards later does not re-lock export.
// [Session] ties the two together and gates [Session.Export] behind the cursor.
package review
