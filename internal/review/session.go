package review

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/shared"
)

// Session pairs a deck's [Collection] with a [Cursor].
//
// A session is owned by one goroutine and is not safe for concurrent use. A UI event loop
// runs [Session.Fetch] in the background and hands the result to [Session.Apply].
type Session struct {
	id     string
	coll   *Collection
	cursor Cursor
	logger *log.Logger
}

// NewSession creates a session for deck. A nil logger discards output.
func NewSession(store CardStore, deck string, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	id := uuid.NewString()
	return &Session{
		id:     id,
		coll:   NewCollection(store, deck),
		logger: logger.With("session", id[:8], "deck", deck),
	}
}

func (s *Session) ID() string                { return s.id }
func (s *Session) Deck() string              { return s.coll.Deck() }
func (s *Session) State() LoadState          { return s.coll.State() }
func (s *Session) Err() error                { return s.coll.Err() }
func (s *Session) Len() int                  { return s.coll.Len() }
func (s *Session) Cards() []models.Flashcard { return s.coll.Cards() }
func (s *Session) ReachedEnd() bool          { return s.cursor.ReachedEnd() }

// CanExport reports whether every card has been shown at least once.
func (s *Session) CanExport() bool { return s.cursor.ReachedEnd() }

// Index returns the cursor position; ok is false for an empty deck.
func (s *Session) Index() (int, bool) { return s.cursor.Index() }

// Load fetches the deck and moves to its first card. Calling it again retries a failed load.
func (s *Session) Load(ctx context.Context) error {
	s.BeginLoad()
	cards, err := s.Fetch(ctx)
	return s.Apply(cards, err)
}

// BeginLoad marks the deck as loading.
func (s *Session) BeginLoad() { s.coll.BeginLoad() }

// Fetch reads the deck without changing the session; it is the only method safe to call
// from another goroutine.
func (s *Session) Fetch(ctx context.Context) ([]models.Flashcard, error) {
	return s.coll.Fetch(ctx)
}

// Apply installs the result of [Session.Fetch] and moves to the first card.
func (s *Session) Apply(cards []models.Flashcard, err error) error {
	if err := s.coll.Apply(cards, err); err != nil {
		s.logger.Error("load failed", "error", err)
		return err
	}
	s.cursor.Reset(s.coll.Len())
	s.logger.Debug("loaded", "cards", s.coll.Len())
	return nil
}

// Current returns the card under the cursor.
func (s *Session) Current() (models.Flashcard, bool) {
	i, ok := s.cursor.Index()
	if !ok {
		return models.Flashcard{}, false
	}
	card, err := s.coll.Card(i)
	return card, err == nil
}

func (s *Session) Next()     { s.cursor.Next(s.coll.Len()) }
func (s *Session) Previous() { s.cursor.Previous() }

// Edit replaces the current card.
func (s *Session) Edit(card models.Flashcard) error {
	i, ok := s.cursor.Index()
	if !ok {
		return fmt.Errorf("%w: %w: deck %q is empty", shared.ErrIndexOutOfRange, shared.ErrUserInput, s.Deck())
	}
	return s.coll.Update(i, card)
}

func (s *Session) EditQuestion(q string) error {
	card, _ := s.Current()
	card.Question = q
	return s.Edit(card)
}

func (s *Session) EditAnswer(a string) error {
	card, _ := s.Current()
	card.Answer = a
	return s.Edit(card)
}

// DeleteCurrent removes the current card and clamps the cursor.
func (s *Session) DeleteCurrent() error {
	i, ok := s.cursor.Index()
	if !ok {
		return fmt.Errorf("%w: %w: deck %q is empty", shared.ErrIndexOutOfRange, shared.ErrUserInput, s.Deck())
	}
	if err := s.coll.Delete(i); err != nil {
		return err
	}
	s.cursor.Clamp(s.coll.Len())
	s.logger.Debug("deleted card", "index", i, "remaining", s.coll.Len())
	return nil
}

// Save persists the current contents.
func (s *Session) Save(ctx context.Context) error {
	if err := s.coll.Persist(ctx); err != nil {
		s.logger.Error("save failed", "error", err)
		return err
	}
	s.logger.Info("saved", "cards", s.coll.Len())
	return nil
}

// Export fetches the deck package. It fails with [shared.ErrExportLocked] until the final card
// has been reached, and does not save pending edits.
func (s *Session) Export(ctx context.Context) (*models.Package, error) {
	if !s.cursor.ReachedEnd() {
		return nil, fmt.Errorf("%w: %w", shared.ErrExportLocked, shared.ErrUserInput)
	}
	pkg, err := s.coll.ExportPackage(ctx)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		return nil, err
	}
	s.logger.Info("exported", "bytes", pkg.Size())
	return pkg, nil
}
