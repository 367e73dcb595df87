package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/coursecat/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgBootstrapped MsgKind = iota
	MsgControllerEvent
	MsgAttempted
	MsgOpened
)

// bootstrappedMsg is the constructor for [MsgBootstrapped]
func bootstrappedMsg(err error) Msg {
	return Msg{kind: MsgBootstrapped, data: err}
}

// controllerEventMsg is the constructor for [MsgControllerEvent]
func controllerEventMsg(e tasks.Event) Msg {
	return Msg{kind: MsgControllerEvent, data: e}
}

// attemptedMsg is the constructor for [MsgAttempted]
func attemptedMsg(result tasks.AttemptResult, err error) Msg {
	return Msg{
		kind: MsgAttempted,
		data: struct {
			result tasks.AttemptResult
			err    error
		}{result, err},
	}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(url string, err error) Msg {
	return Msg{
		kind: MsgOpened,
		data: struct {
			url string
			err error
		}{url, err},
	}
}
