package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type alertKind int

const (
	alertInfo alertKind = iota
	alertError
)

type alertExpiredMsg struct {
	kind alertKind
	seq  int
}

// alert is a banner line that hides itself after a timeout.
type alert struct {
	kind alertKind
	text string
	seq  int
}

func (a *alert) set(text string, timeout time.Duration) tea.Cmd {
	a.text = text
	a.seq++
	if text == "" || timeout <= 0 {
		return nil
	}
	kind, seq := a.kind, a.seq
	return tea.Tick(timeout, func(time.Time) tea.Msg {
		return alertExpiredMsg{kind: kind, seq: seq}
	})
}

func (a *alert) expire(msg alertExpiredMsg) {
	if msg.kind == a.kind && msg.seq == a.seq {
		a.text = ""
	}
}
