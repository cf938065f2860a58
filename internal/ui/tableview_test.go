package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upsend/internal/table"
)

func sampleTable(id string) *table.Table {
	cols := []table.Column{
		{Key: "subject", Label: "subject", Sortable: true},
		{Key: "sent", Label: "sent", Sortable: true},
		{Key: "error", Label: "error"},
	}
	rows := []table.Row{
		{ID: "1", Cells: []string{"Welcome", "10", ""}},
		{ID: "2", Cells: []string{"Reminder", "2", "timeout"}},
		{ID: "3", Cells: []string{"Results", "33", ""}},
	}
	return table.New(id, cols, rows)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTableView_SearchAssociation(t *testing.T) {
	withSearch := NewTableView(sampleTable("campaigns"), WithSearch(time.Millisecond))
	assert.True(t, withSearch.HasSearch())
	assert.Equal(t, "search-campaigns", withSearch.SearchID())

	plain := NewTableView(sampleTable("campaign-logs-1"))
	assert.False(t, plain.HasSearch())
	assert.Empty(t, plain.SearchID())

	cmd, ok := plain.FocusSearch()
	assert.False(t, ok)
	assert.Nil(t, cmd)
	assert.Nil(t, plain.UpdateSearch(runes("x")))
	_, settled := plain.SettledSearch(DebounceMsg{ID: "search-campaigns", Seq: 1, Payload: "x"})
	assert.False(t, settled)
	assert.Equal(t, 3, plain.Table().VisibleLen())
}

func TestTableView_FilterOnEveryKeystroke(t *testing.T) {
	v := NewTableView(sampleTable("campaigns"), WithSearch(time.Hour))
	_, ok := v.FocusSearch()
	require.True(t, ok)
	assert.True(t, v.Searching())

	require.NotNil(t, v.UpdateSearch(runes("r")))
	assert.Equal(t, 2, v.Table().VisibleLen(), "reminder and results")

	require.NotNil(t, v.UpdateSearch(runes("em")))
	assert.Equal(t, 1, v.Table().VisibleLen())
	assert.Equal(t, "rem", v.Table().State().Term)

	v.UpdateSearch(tea.KeyMsg{Type: tea.KeyBackspace})
	v.UpdateSearch(tea.KeyMsg{Type: tea.KeyBackspace})
	v.UpdateSearch(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, 3, v.Table().VisibleLen())
	assert.Empty(t, v.Table().State().Term)

	v.BlurSearch()
	assert.False(t, v.Searching())
}

func TestTableView_SettledSearch(t *testing.T) {
	v := NewTableView(sampleTable("campaigns"), WithSearch(time.Millisecond))
	v.FocusSearch()
	v.UpdateSearch(runes("r"))
	v.UpdateSearch(runes("e"))

	_, ok := v.SettledSearch(DebounceMsg{ID: "search-campaigns", Seq: 1, Payload: "r"})
	assert.False(t, ok, "superseded tick")

	term, ok := v.SettledSearch(DebounceMsg{ID: "search-campaigns", Seq: 2, Payload: "re"})
	assert.True(t, ok)
	assert.Equal(t, "re", term)

	_, ok = v.SettledSearch(DebounceMsg{ID: "search-logs", Seq: 2, Payload: ""})
	assert.False(t, ok)
}

func TestTableView_Sorting(t *testing.T) {
	v := NewTableView(sampleTable("campaigns"))

	text, err := v.SortColumn(2)
	require.NoError(t, err)
	assert.Equal(t, "Sorted SENT ascending", text)
	assert.Equal(t, 1, v.ActiveColumn())

	text, err = v.SortActiveColumn()
	require.NoError(t, err)
	assert.Equal(t, "Sorted SENT descending", text)

	first, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "33", first.Cell(1))

	_, err = v.SortColumn(3)
	assert.EqualError(t, err, "column ERROR is not sortable")
	assert.Equal(t, 1, v.Table().State().SortColumn)

	_, err = v.SortColumn(9)
	assert.EqualError(t, err, "column 9 unavailable")
}

func TestTableView_SortMarkerInView(t *testing.T) {
	v := NewTableView(sampleTable("campaigns"), WithNoun("campaign"))
	_, err := v.SortColumn(1)
	require.NoError(t, err)

	out := v.View(80, 10)
	assert.Contains(t, out, "SUBJECT ↑")
	assert.Contains(t, out, "3/3 campaigns")

	_, err = v.SortColumn(1)
	require.NoError(t, err)
	assert.Contains(t, v.View(80, 10), "SUBJECT ↓")
}

func TestTableView_Navigation(t *testing.T) {
	v := NewTableView(sampleTable("campaigns"))
	keys := DefaultKeyMap()

	_, handled := v.HandleKey(runes("j"), keys, 10)
	require.True(t, handled)
	assert.Equal(t, 1, v.Cursor())

	v.HandleKey(runes("G"), keys, 10)
	assert.Equal(t, 2, v.Cursor())

	v.HandleKey(runes("j"), keys, 10)
	assert.Equal(t, 2, v.Cursor())

	v.JumpToTop()
	assert.Zero(t, v.Cursor())

	v.HandleKey(tea.KeyMsg{Type: tea.KeyTab}, keys, 10)
	assert.Equal(t, 1, v.ActiveColumn())
	v.HandleKey(tea.KeyMsg{Type: tea.KeyShiftTab}, keys, 10)
	v.HandleKey(tea.KeyMsg{Type: tea.KeyShiftTab}, keys, 10)
	assert.Equal(t, 2, v.ActiveColumn())

	_, handled = v.HandleKey(runes("x"), keys, 10)
	assert.False(t, handled)
}

func TestTableView_FilterClampsCursor(t *testing.T) {
	v := NewTableView(sampleTable("campaigns"), WithSearch(0))
	v.JumpToBottom()
	require.Equal(t, 2, v.Cursor())

	v.FocusSearch()
	v.UpdateSearch(runes("welcome"))

	assert.Zero(t, v.Cursor())
	row, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "Welcome", row.Cell(0))

	v.UpdateSearch(runes("zzz"))
	_, ok = v.Selected()
	assert.False(t, ok)
	assert.Contains(t, v.View(80, 10), "No rows match the search.")
}

func TestTableView_CopyWithoutRows(t *testing.T) {
	v := NewTableView(table.New("empty", nil, nil))
	msg := v.CopyCell()()
	assert.Equal(t, ShowToastMsg{Message: "Nothing to copy", Kind: ToastWarning}, msg)
}
