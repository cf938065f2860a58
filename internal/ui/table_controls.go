package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// tableController is what the root model needs from whichever table the
// current screen shows.
type tableController interface {
	HandleKey(msg tea.KeyMsg, keys KeyMap, pageSize int) (tea.Cmd, bool)
	SortActiveColumn() (string, error)
	SortColumn(number int) (string, error)
	FocusSearch() (tea.Cmd, bool)
	BlurSearch()
	UpdateSearch(msg tea.Msg) tea.Cmd
	SettledSearch(msg DebounceMsg) (string, bool)
	JumpToTop()
	Meta() string
}

var _ tableController = (*TableView)(nil)
