package ui

import (
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	copiedMessage     = "Copied to clipboard!"
	copyFailedMessage = "Failed to copy to clipboard"
)

// clipboardWriter copies text to the system clipboard, falling back to an
// OSC 52 escape sequence written to the terminal.
type clipboardWriter struct {
	system   func(string) error
	terminal io.Writer
	env      func(string) string
}

var defaultClipboard = clipboardWriter{
	system:   clipboard.WriteAll,
	terminal: os.Stderr,
	env:      os.Getenv,
}

func (c clipboardWriter) copy(text string) error {
	if !clipboard.Unsupported && c.system != nil {
		if err := c.system(text); err == nil {
			return nil
		}
	}

	seq := osc52.New(text)
	switch {
	case c.env("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(c.env("TERM"), "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(c.terminal)
	return err
}

func (c clipboardWriter) cmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := c.copy(text); err != nil {
			return ShowToastMsg{Message: copyFailedMessage, Kind: ToastDanger}
		}
		return ShowToastMsg{Message: copiedMessage, Kind: ToastSuccess}
	}
}

// CopyToClipboard returns a command that copies text and reports the
// outcome as a toast. It never returns an error.
func CopyToClipboard(text string) tea.Cmd {
	return defaultClipboard.cmd(text)
}
