package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tapedeck/internal/player"
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
	MsgMediaEvent MsgKind = iota
	MsgEventsClosed
)

// mediaEventMsg is the constructor for [MsgMediaEvent]
func mediaEventMsg(ev player.Event) Msg {
	return Msg{kind: MsgMediaEvent, data: ev}
}

// eventsClosedMsg is the constructor for [MsgEventsClosed]
func eventsClosedMsg() Msg {
	return Msg{kind: MsgEventsClosed}
}

// waitForEvent blocks on the media element's event channel and delivers one event.
func waitForEvent(events <-chan player.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg()
		}
		return mediaEventMsg(ev)
	}
}
