package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ToastKind selects the colour and icon of a toast.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastDanger
)

func (k ToastKind) String() string {
	switch k {
	case ToastSuccess:
		return "success"
	case ToastWarning:
		return "warning"
	case ToastDanger:
		return "danger"
	default:
		return "info"
	}
}

func (k ToastKind) color() lipgloss.Color {
	switch k {
	case ToastSuccess:
		return ColorGreen
	case ToastWarning:
		return ColorYellow
	case ToastDanger:
		return ColorRed
	default:
		return ColorInfo
	}
}

func (k ToastKind) icon() string {
	switch k {
	case ToastSuccess:
		return "✓"
	case ToastWarning:
		return "!"
	case ToastDanger:
		return "✗"
	default:
		return "i"
	}
}

// ShowToastMsg asks the root model to display a toast.
type ShowToastMsg struct {
	Message string
	Kind    ToastKind
}

// ShowToast returns a command that displays message as a toast of kind.
func ShowToast(message string, kind ToastKind) tea.Cmd {
	return func() tea.Msg {
		return ShowToastMsg{Message: message, Kind: kind}
	}
}

type toast struct {
	id      int
	message string
	kind    ToastKind
}

type toastExpiredMsg struct {
	id int
}

// Toaster holds the visible toast stack, newest last.
type Toaster struct {
	items    []toast
	nextID   int
	lifetime time.Duration
}

// NewToaster returns a toaster whose toasts disappear after lifetime.
func NewToaster(lifetime time.Duration) *Toaster {
	return &Toaster{lifetime: lifetime}
}

// Push adds a toast and schedules its removal.
func (t *Toaster) Push(message string, kind ToastKind) tea.Cmd {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, toast{id: id, message: message, kind: kind})
	return tea.Tick(t.lifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// Update handles toast messages and reports whether msg was one.
func (t *Toaster) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		return t.Push(msg.Message, msg.Kind), true
	case toastExpiredMsg:
		t.remove(msg.id)
		return nil, true
	}
	return nil, false
}

func (t *Toaster) remove(id int) {
	for i, item := range t.items {
		if item.id == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Len is the number of visible toasts.
func (t *Toaster) Len() int { return len(t.items) }

// Messages returns the visible toast texts, oldest first.
func (t *Toaster) Messages() []string {
	out := make([]string, len(t.items))
	for i, item := range t.items {
		out[i] = item.message
	}
	return out
}

// View renders the toast stack.
func (t *Toaster) View() string {
	if len(t.items) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(t.items))
	for _, item := range t.items {
		c := item.kind.color()
		icon := lipgloss.NewStyle().Foreground(c).Bold(true).Render(item.kind.icon())
		boxes = append(boxes, toastBaseStyle.BorderForeground(c).Render(icon+" "+item.message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

// overlayTopRight draws overlay over the top-right corner of base.
func overlayTopRight(base, overlay string, width int) string {
	if overlay == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(overlay, "\n") {
		if i >= len(baseLines) {
			break
		}
		w := lipgloss.Width(line)
		keep := width - w - 1
		if keep < 0 {
			keep = 0
		}
		left := ansi.Truncate(baseLines[i], keep, "")
		if pad := keep - lipgloss.Width(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		baseLines[i] = left + line
	}
	return strings.Join(baseLines, "\n")
}
