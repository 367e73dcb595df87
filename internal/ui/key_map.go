package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	start    key.Binding
	complete key.Binding
	open     key.Binding
	retry    key.Binding
	reload   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/expand")),
		back:     key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start category")),
		complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "mark completed")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry connection")),
		reload:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload sample")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.start, k.complete, k.open},
		{k.retry, k.reload, k.quit},
	}
}
