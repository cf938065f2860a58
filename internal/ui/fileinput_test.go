package ui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanDroppedPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/list.csv", "/tmp/list.csv"},
		{"  /tmp/list.csv \n", "/tmp/list.csv"},
		{"'/tmp/my list.csv'", "/tmp/my list.csv"},
		{`"/tmp/my list.csv"`, "/tmp/my list.csv"},
		{`/tmp/my\ list.csv`, "/tmp/my list.csv"},
		{"file:///tmp/my%20list.csv", "/tmp/my list.csv"},
		{"~/list.csv", filepath.Join(home, "list.csv")},
		{"/tmp/a.csv\n/tmp/b.csv", "/tmp/a.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanDroppedPath(tt.in))
		})
	}
}

func TestFileInput_Drop(t *testing.T) {
	f := NewFileInput("recipients", "")
	f.Focus()
	assert.Equal(t, chooseFileLabel, f.Label())

	cmd := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("'/data/batch 1.csv'"), Paste: true})
	require.NotNil(t, cmd)
	assert.Equal(t, "/data/batch 1.csv", f.Value())
	assert.Equal(t, "batch 1.csv", f.Label())
	assert.True(t, f.DragOver())

	// A second drop restarts the highlight; the first timer is stale.
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/data/batch2.csv"), Paste: true})
	f.Update(fileDropSettledMsg{id: "recipients", seq: 1})
	assert.True(t, f.DragOver())

	f.Update(fileDropSettledMsg{id: "template", seq: 2})
	assert.True(t, f.DragOver())

	f.Update(fileDropSettledMsg{id: "recipients", seq: 2})
	assert.False(t, f.DragOver())
	assert.Equal(t, "batch2.csv", f.Label())
}

func TestFileInput_Typing(t *testing.T) {
	f := NewFileInput("template", "")
	f.Focus()
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("body.txt")})

	assert.Equal(t, "body.txt", f.Value())
	assert.False(t, f.DragOver())
}
