package models

import (
	"path"
	"strings"
)

// Flashcard is a question/answer pair. It has no identity beyond its position in a deck.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Deck is the catalog projection of a stored deck.
type Deck struct {
	Name       string `json:"name" validate:"required"`
	TotalCards int    `json:"totalCards" validate:"gte=0"`
}

// Package is an exported deck archive that passed content checks.
type Package struct {
	Deck        string
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (p *Package) Size() int { return len(p.Data) }

// PackageExt is the file extension of exported decks.
const PackageExt = ".apkg"

// deckFileExts are the storage extensions the backend may leave on a deck name.
var deckFileExts = []string{".csv", PackageExt}

// DeckBaseName strips any directory prefix and a deck file extension from name.
//
// "cards/biology.csv" and "biology.apkg" both become "biology". Other dotted suffixes
// ("chapter.1") are part of the name and are kept.
func DeckBaseName(name string) string {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	for _, ext := range deckFileExts {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	if base == "" {
		return name
	}
	return base
}

// StripExt removes the final extension of a file name ("notes.v2.pdf" → "notes.v2").
func StripExt(filename string) string {
	ext := path.Ext(filename)
	if ext == "" || ext == filename {
		return filename
	}
	return strings.TrimSuffix(filename, ext)
}

// PackageFilename returns the file name a deck package is saved under.
func PackageFilename(deck string) string {
	return DeckBaseName(deck) + PackageExt
}
