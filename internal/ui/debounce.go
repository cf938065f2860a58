package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DebounceMsg is delivered when a debounced trigger settles.
type DebounceMsg struct {
	ID      string
	Seq     int
	Payload any
}

// Debouncer delays an action until triggers stop arriving for wait.
// Every Trigger supersedes the previous one; only the tick carrying the
// latest sequence number is accepted.
type Debouncer struct {
	id   string
	wait time.Duration
	seq  int
}

// NewDebouncer returns a debouncer whose messages carry id.
func NewDebouncer(id string, wait time.Duration) *Debouncer {
	return &Debouncer{id: id, wait: wait}
}

// Trigger schedules payload for delivery after the wait.
func (d *Debouncer) Trigger(payload any) tea.Cmd {
	d.seq++
	id, seq := d.id, d.seq
	return tea.Tick(d.wait, func(time.Time) tea.Msg {
		return DebounceMsg{ID: id, Seq: seq, Payload: payload}
	})
}

// Accept reports whether msg is the latest trigger of this debouncer.
func (d *Debouncer) Accept(msg DebounceMsg) bool {
	return msg.ID == d.id && msg.Seq == d.seq
}
