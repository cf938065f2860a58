package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowToast(t *testing.T) {
	msg := ShowToast("Saved", ToastSuccess)()
	assert.Equal(t, ShowToastMsg{Message: "Saved", Kind: ToastSuccess}, msg)
}

func TestToaster_StackAndExpire(t *testing.T) {
	toaster := NewToaster(5 * time.Second)

	cmd, handled := toaster.Update(ShowToastMsg{Message: "first", Kind: ToastInfo})
	require.True(t, handled)
	assert.NotNil(t, cmd)
	toaster.Push("second", ToastDanger)

	assert.Equal(t, []string{"first", "second"}, toaster.Messages())
	view := toaster.View()
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "second")

	_, handled = toaster.Update(toastExpiredMsg{id: 1})
	require.True(t, handled)
	assert.Equal(t, []string{"second"}, toaster.Messages())

	// Expiring an id twice is harmless.
	toaster.Update(toastExpiredMsg{id: 1})
	assert.Equal(t, 1, toaster.Len())

	toaster.Update(toastExpiredMsg{id: 2})
	assert.Zero(t, toaster.Len())
	assert.Empty(t, toaster.View())
}

func TestToaster_IgnoresOtherMessages(t *testing.T) {
	toaster := NewToaster(time.Second)
	_, handled := toaster.Update(alertExpiredMsg{})
	assert.False(t, handled)
}

func TestToastKind_String(t *testing.T) {
	assert.Equal(t, "info", ToastInfo.String())
	assert.Equal(t, "success", ToastSuccess.String())
	assert.Equal(t, "warning", ToastWarning.String())
	assert.Equal(t, "danger", ToastDanger.String())
}

func TestOverlayTopRight(t *testing.T) {
	base := strings.Join([]string{
		strings.Repeat(".", 20),
		strings.Repeat(".", 20),
		strings.Repeat(".", 20),
	}, "\n")

	out := overlayTopRight(base, "XX\nYY", 20)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "XX"))
	assert.True(t, strings.HasSuffix(lines[1], "YY"))
	assert.Equal(t, strings.Repeat(".", 20), lines[2])

	assert.Equal(t, base, overlayTopRight(base, "", 20))
}
