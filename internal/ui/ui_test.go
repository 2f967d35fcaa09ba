package ui

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/review"
	"github.com/desertthunder/ankix/internal/server"
	"github.com/desertthunder/ankix/internal/services"
	"github.com/desertthunder/ankix/internal/tasks"
	tu "github.com/desertthunder/ankix/internal/testing"
)

// processingService reports every job as still processing.
type processingService struct {
	services.Service
}

func (processingService) JobStatus(context.Context, string) (models.JobStatus, error) {
	return models.NewProcessing(10, ""), nil
}

// slowCardService answers GetCards after a delay so a load stays in flight.
type slowCardService struct {
	services.Service
	delay time.Duration
	cards []models.Flashcard
}

func (s slowCardService) GetCards(context.Context, string) ([]models.Flashcard, error) {
	time.Sleep(s.delay)
	return s.cards, nil
}

// collect runs cmd and every command it batches, returning the resulting [Msg] values.
func collect(cmd tea.Cmd) []Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case Msg:
		return []Msg{msg}
	}
	return nil
}

// drive runs cmd and feeds every resulting [Msg] back into m until no work is left.
func drive(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drive(m, c)
		}
	case Msg:
		_, next := m.Update(msg)
		drive(m, next)
	}
}

func press(m *Model, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func newDevModel(t *testing.T, start models.Route) (*Model, *server.Backend) {
	t.Helper()
	backend := server.New(server.Options{Step: 100})
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client := services.NewClient(services.ClientOpts{BaseURL: srv.URL, FallbackDeck: "default"})
	m := NewModel(context.Background(), Options{
		Service:   client,
		Poller:    tasks.PollerOpts{Interval: time.Millisecond},
		ExportDir: t.TempDir(),
	}, start)
	return m, backend
}

func TestModel(t *testing.T) {
	t.Run("Leaving Status Cancels Poll", func(t *testing.T) {
		m := NewModel(context.Background(), Options{
			Service: processingService{},
			Poller:  tasks.PollerOpts{Interval: time.Hour},
		}, models.Status("job-1"))

		m.Init()
		h := m.poll
		if h == nil {
			t.Fatal("expected a running poll")
		}
		staleGen := m.gen

		press(m, "esc")
		if m.Route().Kind != models.UploadRoute {
			t.Errorf("expected upload route, got %v", m.Route())
		}

		select {
		case <-h.Done():
		case <-time.After(time.Second):
			t.Fatal("poll not cancelled on teardown")
		}
		if _, err := h.Result(); !tasks.Cancelled(err) {
			t.Errorf("expected cancelled poll, got %v", err)
		}

		m.Update(progressUpdateMsg(staleGen, tasks.ProgressUpdate{Message: "stale"}))
		m.Update(pollDoneMsg(staleGen, models.Review("stale"), nil))
		if m.status.Message == "stale" || m.Route().Kind != models.UploadRoute {
			t.Error("expected messages from the torn-down screen to be dropped")
		}
	})

	t.Run("Upload Through Review", func(t *testing.T) {
		m, backend := newDevModel(t, models.Route{Kind: models.UploadRoute})
		m.Init()

		pdfPath := filepath.Join(t.TempDir(), "biology.pdf")
		tu.WritePDF(t, pdfPath, 2)
		m.paths.SetValue(pdfPath)

		drive(m, press(m, "enter"))

		if m.Route() != models.Review("biology") {
			t.Fatalf("expected review route for biology, got %v (err %v)", m.Route(), m.err)
		}
		stored, _ := backend.Cards("biology")
		if m.session.Len() != len(stored) || m.session.Len() == 0 {
			t.Errorf("expected %d cards in session, got %d", len(stored), m.session.Len())
		}
	})

	t.Run("Empty Selection", func(t *testing.T) {
		m, _ := newDevModel(t, models.Route{Kind: models.UploadRoute})
		m.Init()
		drive(m, press(m, "enter"))

		if m.err == nil || m.Route().Kind != models.UploadRoute {
			t.Errorf("expected an error on the upload screen, got %v on %v", m.err, m.Route())
		}
	})

	t.Run("Export Offered After Last Card", func(t *testing.T) {
		m, backend := newDevModel(t, models.Review("biology"))
		backend.Seed("biology", []models.Flashcard{
			{Question: "Q1", Answer: "A1"},
			{Question: "Q2", Answer: "A2"},
		})
		drive(m, m.Init())

		if !strings.Contains(m.View(), "Card Review (1 / 2)") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
		if strings.Contains(m.View(), "export") {
			t.Error("expected export to be hidden before the last card")
		}
		if cmd := press(m, "E"); cmd != nil {
			t.Error("expected export key to do nothing before the last card")
		}

		press(m, "l")
		view := m.View()
		if !strings.Contains(view, "Card Review (2 / 2)") || !strings.Contains(view, "export") {
			t.Errorf("expected export on the last card, got:\n%s", view)
		}

		drive(m, press(m, "E"))
		if m.err != nil {
			t.Fatalf("export failed: %v", m.err)
		}
		path := filepath.Join(m.opts.ExportDir, "biology.apkg")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected package at %s: %v", path, err)
		}
	})

	t.Run("Delete And Save", func(t *testing.T) {
		m, backend := newDevModel(t, models.Review("biology"))
		backend.Seed("biology", []models.Flashcard{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}})
		drive(m, m.Init())

		press(m, "x")
		drive(m, press(m, "s"))

		stored, _ := backend.Cards("biology")
		if len(stored) != 1 || stored[0].Question != "Q2" {
			t.Errorf("expected only Q2 stored, got %v", stored)
		}
		if m.notice != "Saved." {
			t.Errorf("expected saved notice, got %q", m.notice)
		}
	})

	t.Run("Retry Failed Load", func(t *testing.T) {
		m, backend := newDevModel(t, models.Review("later"))
		drive(m, m.Init())
		if m.err == nil {
			t.Fatal("expected missing deck to fail")
		}

		backend.Seed("later", []models.Flashcard{{Question: "Q", Answer: "A"}})
		drive(m, press(m, "r"))
		if m.err != nil || m.session.Len() != 1 {
			t.Errorf("expected retry to load the deck, got %v", m.err)
		}
	})

	t.Run("Decks Screen", func(t *testing.T) {
		m, backend := newDevModel(t, models.Route{Kind: models.DecksRoute})
		backend.Seed("biology", []models.Flashcard{{Question: "Q", Answer: "A"}})
		drive(m, m.Init())

		if len(m.deckList.Items()) != 1 {
			t.Fatalf("expected one deck, got %d", len(m.deckList.Items()))
		}

		drive(m, press(m, "d"))
		if !strings.HasPrefix(m.notice, "Saved to ") {
			t.Errorf("expected download notice, got %q (err %v)", m.notice, m.err)
		}

		drive(m, press(m, "enter"))
		if m.Route() != models.Review("biology") {
			t.Errorf("expected review route, got %v", m.Route())
		}
	})
}

func TestModelLoadInBackground(t *testing.T) {
	m := NewModel(context.Background(), Options{
		Service: slowCardService{
			delay: 20 * time.Millisecond,
			cards: []models.Flashcard{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}},
		},
	}, models.Review("biology"))

	cmd := m.Init()
	if m.session.State() != review.Loading {
		t.Fatalf("expected Loading before the fetch returns, got %v", m.session.State())
	}
	done := make(chan []Msg)
	go func() { done <- collect(cmd) }()

	var msgs []Msg
	for msgs == nil {
		select {
		case msgs = <-done:
		default:
			_ = m.View()
		}
	}

	if len(msgs) != 1 || msgs[0].kind != MsgCardsLoaded {
		t.Fatalf("expected one cards loaded message, got %d", len(msgs))
	}
	m.Update(msgs[0])

	if m.session.Len() != 2 || m.err != nil {
		t.Fatalf("expected two cards applied on update, got %d (err %v)", m.session.Len(), m.err)
	}
	if !strings.Contains(m.View(), "Card Review (1 / 2)") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestSplitPaths(t *testing.T) {
	got := splitPaths(" a.pdf, b c.pdf ,, ")
	if len(got) != 2 || got[0] != "a.pdf" || got[1] != "b c.pdf" {
		t.Errorf("unexpected paths %q", got)
	}
	if splitPaths("") != nil {
		t.Error("expected nil for empty input")
	}
}
