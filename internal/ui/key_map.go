package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	prev     key.Binding
	next     key.Binding
	enter    key.Binding
	back     key.Binding
	tab      key.Binding
	topics   key.Binding
	question key.Binding
	answer   key.Binding
	apply    key.Binding
	save     key.Binding
	remove   key.Binding
	export   key.Binding
	download key.Binding
	retry    key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous")),
		next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "decks")),
		topics:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "topic cards")),
		question: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit question")),
		answer:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "edit answer")),
		apply:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "apply")),
		save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		export:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export")),
		download: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prev, k.next, k.enter, k.back},
		{k.question, k.answer, k.apply, k.save, k.remove, k.export},
		{k.tab, k.topics, k.download, k.retry, k.quit},
	}
}
