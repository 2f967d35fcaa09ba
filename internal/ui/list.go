package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/ankix/internal/models"
)

var _ list.Item = deckItem{}

// deckItem wraps [models.Deck] to implement [list.Item].
type deckItem struct {
	deck models.Deck
}

func (i deckItem) FilterValue() string { return i.deck.Name }
func (i deckItem) Title() string       { return i.deck.Name }
func (i deckItem) Description() string {
	if i.deck.TotalCards == 1 {
		return "1 card"
	}
	return fmt.Sprintf("%d cards", i.deck.TotalCards)
}

func deckItems(decks []models.Deck) []list.Item {
	items := make([]list.Item, len(decks))
	for i, d := range decks {
		items[i] = deckItem{deck: d}
	}
	return items
}
