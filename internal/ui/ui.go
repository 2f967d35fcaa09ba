package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/ankix/internal/catalog"
	"github.com/desertthunder/ankix/internal/models"
	"github.com/desertthunder/ankix/internal/review"
	"github.com/desertthunder/ankix/internal/services"
	"github.com/desertthunder/ankix/internal/tasks"
)

// Options holds the TUI's dependencies.
type Options struct {
	Service   services.Service
	Catalog   *catalog.Catalog
	Poller    tasks.PollerOpts
	Upload    tasks.UploadOpts
	ExportDir string
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	opts   Options
	logger *log.Logger
	start  models.Route
	route  models.Route
	gen    int
	width  int
	height int
	busy   bool

	paths  textinput.Model
	topics bool

	poll         *tasks.PollHandle
	progressChan chan tasks.ProgressUpdate
	status       tasks.ProgressUpdate
	pollFailed   bool
	bar          progress.Model
	spinner      spinner.Model

	session    *review.Session
	editor     textarea.Model
	editing    bool
	editAnswer bool

	deckList list.Model

	notice string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a TUI model that opens on start.
func NewModel(ctx context.Context, opts Options, start models.Route) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.New(opts.Service, catalog.Opts{Logger: opts.Logger})
	}

	paths := textinput.New()
	paths.Placeholder = "notes.pdf, slides.pdf"
	paths.Prompt = "PDF files: "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	deckList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	deckList.Title = "Decks"

	return &Model{
		ctx:      ctx,
		opts:     opts,
		logger:   opts.Logger,
		start:    start,
		topics:   true,
		paths:    paths,
		bar:      progress.New(progress.WithDefaultGradient()),
		spinner:  sp,
		editor:   textarea.New(),
		deckList: deckList,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctx context.Context, opts Options, start models.Route) error {
	m := NewModel(ctx, opts, start)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	m.teardown()
	return err
}

// Route returns the current screen.
func (m *Model) Route() models.Route { return m.route }

// Init opens the start route.
func (m *Model) Init() tea.Cmd {
	return m.navigate(m.start)
}

// navigate tears down the current screen and opens r.
func (m *Model) navigate(r models.Route) tea.Cmd {
	m.teardown()
	m.gen++
	m.route = r
	m.err = nil
	m.notice = ""
	m.busy = false
	m.logger.Debug("navigate", "route", r.String())

	switch r.Kind {
	case models.StatusRoute:
		return m.startPolling(r.Param)
	case models.ReviewRoute:
		m.session = review.NewSession(m.opts.Service, r.Param, m.logger)
		m.editing = false
		return m.loadCards()
	case models.DecksRoute:
		return m.loadDecks()
	default:
		m.route = models.Route{Kind: models.UploadRoute}
		return m.paths.Focus()
	}
}

// teardown cancels work owned by the current screen.
func (m *Model) teardown() {
	if m.poll != nil {
		m.poll.Cancel()
		m.poll = nil
	}
	m.progressChan = nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.deckList.SetSize(max(msg.Width-4, 0), max(msg.Height-6, 0))
		m.editor.SetWidth(max(msg.Width-6, 10))
		m.bar.Width = max(min(msg.Width-8, 60), 10)
		m.paths.Width = max(msg.Width-16, 10)
		return m, nil

	case spinner.TickMsg:
		if !m.spinning() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgUploadDone:
		res := msg.data.(uploadResult)
		m.busy = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		return m, m.navigate(models.Status(res.jobID))

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.status = update
		if _, ok := update.Data.(models.Failed); ok {
			m.pollFailed = true
		}
		return m, m.waitForProgress()

	case MsgPollDone:
		res := msg.data.(pollResult)
		m.poll = nil
		m.progressChan = nil
		if res.err != nil {
			if !tasks.Cancelled(res.err) {
				m.pollFailed = true
				m.err = res.err
			}
			return m, nil
		}
		return m, m.navigate(res.route)

	case MsgCardsLoaded:
		m.busy = false
		res := msg.data.(cardsResult)
		if err := m.session.Apply(res.cards, res.err); err != nil {
			m.err = err
		}
		return m, nil

	case MsgCardsSaved:
		m.busy = false
		if err, _ := msg.data.(error); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.notice = "Saved."
		return m, nil

	case MsgPackageSaved:
		res := msg.data.(fileResult)
		m.busy = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		m.err = nil
		m.notice = fmt.Sprintf("Saved to %s", res.path)
		return m, nil

	case MsgDecksLoaded:
		res := msg.data.(decksResult)
		m.busy = false
		if res.err != nil {
			m.err = res.err
			return m, nil
		}
		return m, m.deckList.SetItems(deckItems(res.decks))
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit
	}

	switch m.route.Kind {
	case models.UploadRoute:
		return m.handleUploadKeys(msg)
	case models.StatusRoute:
		return m.handleStatusKeys(msg)
	case models.ReviewRoute:
		return m.handleReviewKeys(msg)
	case models.DecksRoute:
		return m.handleDecksKeys(msg)
	}
	return m, nil
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.enter):
		return m, m.upload(splitPaths(m.paths.Value()))
	case key.Matches(msg, m.keys.topics):
		m.topics = !m.topics
		return m, nil
	case key.Matches(msg, m.keys.tab):
		m.paths.Blur()
		return m, m.navigate(models.Route{Kind: models.DecksRoute})
	case key.Matches(msg, m.keys.back):
		m.teardown()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.paths, cmd = m.paths.Update(msg)
	return m, cmd
}

func (m *Model) handleStatusKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.teardown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(models.Route{Kind: models.UploadRoute})
	}
	return m, nil
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditorKeys(msg)
	}
	if m.busy {
		return m, nil
	}

	s := m.session
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		return m, m.navigate(models.Route{Kind: models.DecksRoute})
	case key.Matches(msg, m.keys.retry) && s.State() == review.Failed:
		return m, m.loadCards()
	}

	if s.State() != review.Loaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.next):
		s.Next()
	case key.Matches(msg, m.keys.prev):
		s.Previous()
	case key.Matches(msg, m.keys.question), key.Matches(msg, m.keys.answer):
		card, ok := s.Current()
		if !ok {
			return m, nil
		}
		m.editAnswer = key.Matches(msg, m.keys.answer)
		if m.editAnswer {
			m.editor.SetValue(card.Answer)
		} else {
			m.editor.SetValue(card.Question)
		}
		m.editing = true
		return m, m.editor.Focus()
	case key.Matches(msg, m.keys.remove):
		if err := s.DeleteCurrent(); err != nil {
			m.err = err
		}
	case key.Matches(msg, m.keys.save):
		return m, m.saveCards()
	case key.Matches(msg, m.keys.export) && s.CanExport():
		return m, m.exportPackage()
	}
	return m, nil
}

func (m *Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.editing = false
		m.editor.Blur()
		return m, nil
	case key.Matches(msg, m.keys.apply):
		var err error
		if m.editAnswer {
			err = m.session.EditAnswer(m.editor.Value())
		} else {
			err = m.session.EditQuestion(m.editor.Value())
		}
		m.err = err
		m.editing = false
		m.editor.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) handleDecksKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deckList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.deckList, cmd = m.deckList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.tab):
		return m, m.navigate(models.Route{Kind: models.UploadRoute})
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.deckList.SelectedItem().(deckItem); ok {
			return m, m.navigate(catalog.EditRoute(item.deck.Name))
		}
		return m, nil
	case key.Matches(msg, m.keys.download):
		if item, ok := m.deckList.SelectedItem().(deckItem); ok && !m.busy {
			return m, m.download(item.deck.Name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.deckList, cmd = m.deckList.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.route.Kind {
	case models.UploadRoute:
		m.paths, cmd = m.paths.Update(msg)
	case models.ReviewRoute:
		if m.editing {
			m.editor, cmd = m.editor.Update(msg)
		}
	case models.DecksRoute:
		m.deckList, cmd = m.deckList.Update(msg)
	}
	return m, cmd
}

func (m *Model) spinning() bool {
	switch m.route.Kind {
	case models.StatusRoute:
		return !m.pollFailed
	default:
		return m.busy
	}
}

func (m *Model) upload(paths []string) tea.Cmd {
	m.busy = true
	m.err = nil
	gen := m.gen
	opts := m.opts.Upload
	opts.IncludeTopicCards = m.topics
	ctx, svc := m.ctx, m.opts.Service

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		jobID, err := tasks.UploadAndProcess(ctx, svc, paths, opts, nil)
		return uploadDoneMsg(gen, jobID, err)
	})
}

func (m *Model) startPolling(jobID string) tea.Cmd {
	ch := make(chan tasks.ProgressUpdate, 16)
	h := tasks.NewPoller(m.opts.Service, m.opts.Poller).Start(m.ctx, jobID, ch)

	m.progressChan = ch
	m.poll = h
	m.pollFailed = false
	m.status = tasks.ProgressUpdate{Phase: tasks.PollJob, Message: "Processing..."}

	go func() {
		h.Result()
		close(ch)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

// waitForProgress reads the next poll update, or the poll result once the channel closes.
func (m *Model) waitForProgress() tea.Cmd {
	ch, h, gen := m.progressChan, m.poll, m.gen
	if ch == nil || h == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			route, err := h.Result()
			return pollDoneMsg(gen, route, err)
		}
		return progressUpdateMsg(gen, update)
	}
}

func (m *Model) loadCards() tea.Cmd {
	m.busy = true
	m.err = nil
	m.session.BeginLoad()
	ctx, s, gen := m.ctx, m.session, m.gen

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		cards, err := s.Fetch(ctx)
		return cardsLoadedMsg(gen, cards, err)
	})
}

func (m *Model) saveCards() tea.Cmd {
	m.busy = true
	ctx, s, gen := m.ctx, m.session, m.gen

	return func() tea.Msg {
		return cardsSavedMsg(gen, s.Save(ctx))
	}
}

func (m *Model) exportPackage() tea.Cmd {
	m.busy = true
	ctx, s, gen := m.ctx, m.session, m.gen
	cat, dir := m.opts.Catalog, m.opts.ExportDir

	return func() tea.Msg {
		pkg, err := s.Export(ctx)
		if err != nil {
			return packageSavedMsg(gen, "", err)
		}
		path, err := cat.Save(pkg, dir)
		return packageSavedMsg(gen, path, err)
	}
}

func (m *Model) loadDecks() tea.Cmd {
	m.busy = true
	ctx, cat, gen := m.ctx, m.opts.Catalog, m.gen

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		decks, err := cat.Load(ctx)
		return decksLoadedMsg(gen, decks, err)
	})
}

func (m *Model) download(deck string) tea.Cmd {
	m.busy = true
	m.notice = fmt.Sprintf("Downloading %s...", deck)
	ctx, cat, dir, gen := m.ctx, m.opts.Catalog, m.opts.ExportDir, m.gen

	return func() tea.Msg {
		path, err := cat.Download(ctx, deck, dir)
		return packageSavedMsg(gen, path, err)
	}
}

// splitPaths splits a comma-separated list of paths.
func splitPaths(v string) []string {
	var paths []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// View renders the UI based on the current route.
func (m *Model) View() string {
	switch m.route.Kind {
	case models.StatusRoute:
		return m.renderStatus()
	case models.ReviewRoute:
		return m.renderReview()
	case models.DecksRoute:
		return m.renderDecks()
	default:
		return m.renderUpload()
	}
}

func (m *Model) footer(bindings ...key.Binding) string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(styles.ok.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(bindings))
	return b.String()
}

func (m *Model) renderUpload() string {
	title := styles.title.Render("Upload PDFs")

	topics := "off"
	if m.topics {
		topics = "on"
	}
	body := fmt.Sprintf("%s\n\nTopic cards: %s", m.paths.View(), topics)
	if m.busy {
		body += fmt.Sprintf("\n\n%s Uploading...", m.spinner.View())
	}

	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "upload"))
	return fmt.Sprintf("%s\n%s\n%s", title, body, m.footer(submit, m.keys.topics, m.keys.tab, m.keys.back))
}

func (m *Model) renderStatus() string {
	title := styles.title.Render("Processing")

	if m.pollFailed {
		msg := m.status.Message
		if msg == "" && m.err != nil {
			msg = m.err.Error()
		}
		return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render(msg), m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	}

	percent := float64(m.status.Step) / 100
	line := fmt.Sprintf("%s %s", m.spinner.View(), styles.progress.Render(m.status.Message))
	if _, ok := m.status.Data.(models.Completed); ok {
		line = styles.ok.Render("✓ " + m.status.Message)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.bar.ViewAs(percent), line, m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
}

func (m *Model) renderReview() string {
	s := m.session
	title := styles.title.Render(fmt.Sprintf("Deck: %s", s.Deck()))

	switch s.State() {
	case review.Idle, review.Loading:
		return fmt.Sprintf("%s\n%s Loading cards...", title, m.spinner.View())
	case review.Failed:
		return fmt.Sprintf("%s\n%s", title, m.footer(m.keys.retry, m.keys.back, m.keys.quit))
	}

	i, ok := s.Index()
	if !ok {
		body := styles.warn.Render("This deck has no cards.")
		return fmt.Sprintf("%s\n%s\n%s", title, body, m.footer(m.keys.save, m.keys.back, m.keys.quit))
	}

	card, _ := s.Current()
	header := styles.label.Render(fmt.Sprintf("Card Review (%d / %d)", i+1, s.Len()))

	question, answer := card.Question, card.Answer
	if m.editing {
		if m.editAnswer {
			answer = m.editor.View()
		} else {
			question = m.editor.View()
		}
	}
	body := styles.card.Render(fmt.Sprintf("%s\n%s\n\n%s\n%s",
		styles.label.Render("Question"), question,
		styles.label.Render("Answer"), answer,
	))

	bindings := []key.Binding{m.keys.prev, m.keys.next, m.keys.question, m.keys.answer, m.keys.remove, m.keys.save}
	if m.editing {
		bindings = []key.Binding{m.keys.apply, m.keys.back}
	} else {
		if s.CanExport() {
			bindings = append(bindings, m.keys.export)
		}
		bindings = append(bindings, m.keys.back, m.keys.quit)
	}

	if m.busy {
		header += " " + m.spinner.View()
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s", title, header, body, m.footer(bindings...))
}

func (m *Model) renderDecks() string {
	if m.busy && len(m.deckList.Items()) == 0 {
		return fmt.Sprintf("%s Loading decks...", m.spinner.View())
	}
	return fmt.Sprintf("%s\n%s", m.deckList.View(), m.footer(m.keys.enter, m.keys.download, m.keys.back, m.keys.quit))
}
