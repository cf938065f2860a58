package ui

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func failingSystem(string) error { return errors.New("no clipboard") }

func TestClipboard_SystemSuccess(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("system clipboard unsupported")
	}
	var got string
	var term bytes.Buffer
	w := clipboardWriter{
		system:   func(s string) error { got = s; return nil },
		terminal: &term,
		env:      envOf(nil),
	}

	msg := w.cmd("priya@example.com")()
	assert.Equal(t, ShowToastMsg{Message: "Copied to clipboard!", Kind: ToastSuccess}, msg)
	assert.Equal(t, "priya@example.com", got)
	assert.Zero(t, term.Len())
}

func TestClipboard_FallsBackToOSC52(t *testing.T) {
	var term bytes.Buffer
	w := clipboardWriter{system: failingSystem, terminal: &term, env: envOf(nil)}

	msg := w.cmd("priya@example.com")()
	assert.Equal(t, ShowToastMsg{Message: "Copied to clipboard!", Kind: ToastSuccess}, msg)

	out := term.String()
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(out, "\x1b]52;"))
	assert.Contains(t, out, base64.StdEncoding.EncodeToString([]byte("priya@example.com")))
}

func TestClipboard_TmuxWrapping(t *testing.T) {
	var term bytes.Buffer
	w := clipboardWriter{system: failingSystem, terminal: &term, env: envOf(map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"})}

	w.cmd("x")()
	assert.True(t, strings.HasPrefix(term.String(), "\x1bPtmux;"))
}

func TestClipboard_FallbackFailureReportsDanger(t *testing.T) {
	w := clipboardWriter{system: failingSystem, terminal: failingWriter{}, env: envOf(nil)}

	msg := w.cmd("x")()
	assert.Equal(t, ShowToastMsg{Message: "Failed to copy to clipboard", Kind: ToastDanger}, msg)
}
