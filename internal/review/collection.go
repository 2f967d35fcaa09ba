package review

import (
	"context"
	"fmt"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

// LoadState tracks the last load of a [Collection].
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// CardStore is the backend a collection reads from and writes to.
// [services.Client] satisfies it.
type CardStore interface {
	GetCards(ctx context.Context, deck string) ([]models.Flashcard, error)
	SaveCards(ctx context.Context, deck string, cards []models.Flashcard) error
	ExportPackage(ctx context.Context, deck string) (*models.Package, error)
}

// Collection is the ordered cards of one deck.
type Collection struct {
	deck  string
	store CardStore
	cards []models.Flashcard
	state LoadState
	err   error
}

func NewCollection(store CardStore, deck string) *Collection {
	return &Collection{deck: deck, store: store, cards: []models.Flashcard{}}
}

func (c *Collection) Deck() string     { return c.deck }
func (c *Collection) State() LoadState { return c.state }
func (c *Collection) Len() int         { return len(c.cards) }

// Err returns the error of the last failed load, if any.
func (c *Collection) Err() error { return c.err }

// Card returns the card at i.
func (c *Collection) Card(i int) (models.Flashcard, error) {
	if err := c.checkIndex(i); err != nil {
		return models.Flashcard{}, err
	}
	return c.cards[i], nil
}

// Cards returns a copy of the current contents.
func (c *Collection) Cards() []models.Flashcard {
	out := make([]models.Flashcard, len(c.cards))
	copy(out, c.cards)
	return out
}

// Load fetches the deck and replaces the contents.
//
// On failure the previous contents are kept, the state becomes [Failed] and the error wraps
// [shared.ErrFetch] together with the kind reported by the store.
func (c *Collection) Load(ctx context.Context) error {
	c.BeginLoad()
	cards, err := c.Fetch(ctx)
	return c.Apply(cards, err)
}

// BeginLoad marks the collection as [Loading] and clears the last error.
func (c *Collection) BeginLoad() {
	c.state = Loading
	c.err = nil
}

// Fetch reads the deck from the store. It does not touch the collection, so it may run on
// another goroutine while the owner keeps reading.
func (c *Collection) Fetch(ctx context.Context) ([]models.Flashcard, error) {
	return c.store.GetCards(ctx, c.deck)
}

// Apply records the result of a [Collection.Fetch], with the same outcome as [Collection.Load].
func (c *Collection) Apply(cards []models.Flashcard, err error) error {
	if err != nil {
		c.state = Failed
		c.err = fmt.Errorf("%w: %w", shared.ErrFetch, err)
		return c.err
	}

	replaced := make([]models.Flashcard, len(cards))
	copy(replaced, cards)
	c.cards = replaced
	c.state = Loaded
	return nil
}

// Update replaces the card at i. The change is local until [Collection.Persist].
func (c *Collection) Update(i int, card models.Flashcard) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.cards[i] = card
	return nil
}

// Delete removes the card at i and shifts the following cards down.
func (c *Collection) Delete(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}
	c.cards = append(c.cards[:i], c.cards[i+1:]...)
	return nil
}

// Persist replaces the stored deck with the current contents.
func (c *Collection) Persist(ctx context.Context) error {
	if c.state != Loaded {
		return fmt.Errorf("%w: %w: deck %q", shared.ErrNotLoaded, shared.ErrUserInput, c.deck)
	}
	return c.store.SaveCards(ctx, c.deck, c.Cards())
}

// ExportPackage asks the backend for the deck package. Unsaved edits are not persisted first.
func (c *Collection) ExportPackage(ctx context.Context) (*models.Package, error) {
	return c.store.ExportPackage(ctx, c.deck)
}

func (c *Collection) checkIndex(i int) error {
	if c.state != Loaded {
		return fmt.Errorf("%w: %w: deck %q", shared.ErrNotLoaded, shared.ErrUserInput, c.deck)
	}
	if i < 0 || i >= len(c.cards) {
		return fmt.Errorf("%w: %w: %d not in [0, %d)", shared.ErrIndexOutOfRange, shared.ErrUserInput, i, len(c.cards))
	}
	return nil
}
