package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// gen is the navigation generation the message belongs to; messages from a screen that has
// since been left are dropped.
type Msg struct {
	kind MsgKind
	gen  int
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgUploadDone MsgKind = iota
	MsgProgressUpdate
	MsgPollDone
	MsgCardsLoaded
	MsgCardsSaved
	MsgPackageSaved
	MsgDecksLoaded
)

type uploadResult struct {
	jobID string
	err   error
}

type pollResult struct {
	route models.Route
	err   error
}

type cardsResult struct {
	cards []models.Flashcard
	err   error
}

type fileResult struct {
	path string
	err  error
}

type decksResult struct {
	decks []models.Deck
	err   error
}

// uploadDoneMsg is the constructor for [MsgUploadDone]
func uploadDoneMsg(gen int, jobID string, err error) Msg {
	return Msg{kind: MsgUploadDone, gen: gen, data: uploadResult{jobID, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(gen int, update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, gen: gen, data: update}
}

// pollDoneMsg is the constructor for [MsgPollDone]
func pollDoneMsg(gen int, route models.Route, err error) Msg {
	return Msg{kind: MsgPollDone, gen: gen, data: pollResult{route, err}}
}

// cardsLoadedMsg is the constructor for [MsgCardsLoaded]; Update applies it to the session
func cardsLoadedMsg(gen int, cards []models.Flashcard, err error) Msg {
	return Msg{kind: MsgCardsLoaded, gen: gen, data: cardsResult{cards, err}}
}

// cardsSavedMsg is the constructor for [MsgCardsSaved]
func cardsSavedMsg(gen int, err error) Msg {
	return Msg{kind: MsgCardsSaved, gen: gen, data: err}
}

// packageSavedMsg is the constructor for [MsgPackageSaved]
func packageSavedMsg(gen int, path string, err error) Msg {
	return Msg{kind: MsgPackageSaved, gen: gen, data: fileResult{path, err}}
}

// decksLoadedMsg is the constructor for [MsgDecksLoaded]
func decksLoadedMsg(gen int, decks []models.Deck, err error) Msg {
	return Msg{kind: MsgDecksLoaded, gen: gen, data: decksResult{decks, err}}
}
