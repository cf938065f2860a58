package ui

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	chooseFileLabel = "Choose file..."
	dropHighlight   = 400 * time.Millisecond
)

type fileDropSettledMsg struct {
	id  string
	seq int
}

// FileInput is a path field that accepts files dropped onto the terminal.
// Terminals deliver a drop as a bracketed paste of the path.
type FileInput struct {
	id       string
	input    textinput.Model
	dragOver bool
	dropSeq  int
}

// NewFileInput returns an empty file field.
func NewFileInput(id, placeholder string) *FileInput {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 1024
	return &FileInput{id: id, input: in}
}

func (f *FileInput) Value() string { return strings.TrimSpace(f.input.Value()) }

func (f *FileInput) SetValue(v string) { f.input.SetValue(v) }

func (f *FileInput) Focus() tea.Cmd { return f.input.Focus() }

func (f *FileInput) Blur() { f.input.Blur() }

func (f *FileInput) Focused() bool { return f.input.Focused() }

// DragOver reports whether a drop was just received.
func (f *FileInput) DragOver() bool { return f.dragOver }

// Label is the chosen file name, or "Choose file..." when empty.
func (f *FileInput) Label() string {
	v := f.Value()
	if v == "" {
		return chooseFileLabel
	}
	return filepath.Base(v)
}

// Update handles typing, drops and the drop highlight timer.
func (f *FileInput) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fileDropSettledMsg:
		if msg.id == f.id && msg.seq == f.dropSeq {
			f.dragOver = false
		}
		return nil
	case tea.KeyMsg:
		if msg.Paste {
			return f.drop(string(msg.Runes))
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f *FileInput) drop(raw string) tea.Cmd {
	f.input.SetValue(cleanDroppedPath(raw))
	f.input.CursorEnd()
	f.dragOver = true
	f.dropSeq++
	id, seq := f.id, f.dropSeq
	return tea.Tick(dropHighlight, func(time.Time) tea.Msg {
		return fileDropSettledMsg{id: id, seq: seq}
	})
}

func (f *FileInput) View() string { return f.input.View() }

// cleanDroppedPath turns what a terminal pastes for a dropped file into a
// plain path: surrounding quotes, file:// URLs, backslash escapes and a
// leading ~ are resolved.
func cleanDroppedPath(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}

	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil {
			return u.Path
		}
	}

	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	s = b.String()

	if s == "~" || strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
	}
	return s
}
