package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"upsend/internal/table"
	"upsend/internal/util"
)

const (
	maxColumnWidth = 40
	columnGap      = 2
)

// searchBox is a text input bound to one table by id.
type searchBox struct {
	id        string
	input     textinput.Model
	debouncer *Debouncer
}

// TableView renders a table.Table and turns keys into table actions.
type TableView struct {
	tbl          *table.Table
	activeColumn int
	cursor       int
	offset       int

	viewportHeight int

	search     *searchBox
	searchWait time.Duration
	searchable bool
	noun       string
	emptyText  string
}

// TableOption configures a TableView.
type TableOption func(*TableView)

// WithSearch gives the view a search box. Its term is reported as settled
// once no key has arrived for wait.
func WithSearch(wait time.Duration) TableOption {
	return func(v *TableView) {
		v.searchable = true
		v.searchWait = wait
	}
}

// WithNoun names one row for the status line, e.g. "campaign".
func WithNoun(noun string) TableOption {
	return func(v *TableView) { v.noun = noun }
}

// WithEmptyText sets what is shown when the table has no rows at all.
func WithEmptyText(text string) TableOption {
	return func(v *TableView) { v.emptyText = text }
}

// NewTableView wraps tbl.
func NewTableView(tbl *table.Table, opts ...TableOption) *TableView {
	v := &TableView{tbl: tbl, noun: "row", emptyText: "Nothing here yet."}
	for _, opt := range opts {
		opt(v)
	}
	if v.searchable {
		id := "search-" + tbl.ID()
		in := textinput.New()
		in.Prompt = "/ "
		in.Placeholder = "Search " + v.noun + "s..."
		in.CharLimit = 200
		v.search = &searchBox{id: id, input: in, debouncer: NewDebouncer(id, v.searchWait)}
	}
	return v
}

// Table exposes the underlying view-model.
func (v *TableView) Table() *table.Table { return v.tbl }

// HasSearch reports whether a search box is bound to the table.
func (v *TableView) HasSearch() bool { return v.search != nil }

// SearchID is the id of the bound search box, or "".
func (v *TableView) SearchID() string {
	if v.search == nil {
		return ""
	}
	return v.search.id
}

// Searching reports whether the search box has focus.
func (v *TableView) Searching() bool {
	return v.search != nil && v.search.input.Focused()
}

// FocusSearch focuses the search box. Without one it does nothing and returns false.
func (v *TableView) FocusSearch() (tea.Cmd, bool) {
	if v.search == nil {
		return nil, false
	}
	return v.search.input.Focus(), true
}

// BlurSearch leaves the search box, keeping its term.
func (v *TableView) BlurSearch() {
	if v.search != nil {
		v.search.input.Blur()
	}
}

// UpdateSearch feeds a message to the focused search box. A changed term
// filters the table at once; the debouncer only reports when typing has
// settled.
func (v *TableView) UpdateSearch(msg tea.Msg) tea.Cmd {
	if v.search == nil {
		return nil
	}
	before := v.search.input.Value()
	var cmd tea.Cmd
	v.search.input, cmd = v.search.input.Update(msg)
	if after := v.search.input.Value(); after != before {
		_ = v.tbl.Dispatch(table.FilterRequested{Term: after})
		v.clampCursor()
		return tea.Batch(cmd, v.search.debouncer.Trigger(after))
	}
	return cmd
}

// SettledSearch returns the term carried by msg when it is the latest
// settle tick of this view's search box.
func (v *TableView) SettledSearch(msg DebounceMsg) (string, bool) {
	if v.search == nil || !v.search.debouncer.Accept(msg) {
		return "", false
	}
	term, _ := msg.Payload.(string)
	return term, true
}

func (v *TableView) NextColumn() {
	if n := len(v.tbl.Columns()); n > 0 {
		v.activeColumn = (v.activeColumn + 1) % n
	}
}

func (v *TableView) PrevColumn() {
	n := len(v.tbl.Columns())
	if n == 0 {
		return
	}
	v.activeColumn--
	if v.activeColumn < 0 {
		v.activeColumn = n - 1
	}
}

// ActiveColumn is the index of the highlighted header.
func (v *TableView) ActiveColumn() int { return v.activeColumn }

// SortActiveColumn sorts by the highlighted header, the keyboard analogue
// of clicking it.
func (v *TableView) SortActiveColumn() (string, error) {
	return v.SortColumn(v.activeColumn + 1)
}

// SortColumn sorts by the 1-based column number and makes it active.
func (v *TableView) SortColumn(number int) (string, error) {
	idx := number - 1
	cols := v.tbl.Columns()
	if err := v.tbl.Dispatch(table.SortRequested{Column: idx}); err != nil {
		switch {
		case errors.Is(err, table.ErrNotSortable):
			return "", fmt.Errorf("column %s is not sortable", strings.ToUpper(cols[idx].Label))
		case errors.Is(err, table.ErrUnknownColumn):
			return "", fmt.Errorf("column %d unavailable", number)
		}
		return "", err
	}
	v.activeColumn = idx
	v.clampCursor()
	dir := "ascending"
	if v.tbl.Marker(idx) == table.Descending {
		dir = "descending"
	}
	return fmt.Sprintf("Sorted %s %s", strings.ToUpper(cols[idx].Label), dir), nil
}

// Selected returns the row under the cursor.
func (v *TableView) Selected() (table.Row, bool) {
	rows := v.tbl.Visible()
	if len(rows) == 0 || v.cursor >= len(rows) {
		return table.Row{}, false
	}
	return rows[v.cursor], true
}

// CopyCell copies the active cell of the selected row.
func (v *TableView) CopyCell() tea.Cmd {
	row, ok := v.Selected()
	if !ok {
		return ShowToast("Nothing to copy", ToastWarning)
	}
	return CopyToClipboard(row.Cell(v.activeColumn))
}

// CopyRow copies the selected row as tab separated cells.
func (v *TableView) CopyRow() tea.Cmd {
	row, ok := v.Selected()
	if !ok {
		return ShowToast("Nothing to copy", ToastWarning)
	}
	return CopyToClipboard(strings.Join(row.Cells, "\t"))
}

// Meta summarises the sort and filter state for the status bar.
func (v *TableView) Meta() string {
	cols := v.tbl.Columns()
	st := v.tbl.State()
	var parts []string
	if len(cols) > 0 {
		parts = append(parts, fmt.Sprintf("col %s", strings.ToUpper(cols[v.activeColumn].Label)))
	}
	if st.SortColumn >= 0 {
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(cols[st.SortColumn].Label), st.Direction))
	}
	if st.Term != "" {
		parts = append(parts, fmt.Sprintf("filter %q", st.Term))
	}
	return strings.Join(parts, "  ·  ")
}

// HandleKey applies table keys in nav mode and reports whether the key was used.
func (v *TableView) HandleKey(msg tea.KeyMsg, keys KeyMap, pageSize int) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.NextColumn):
		v.NextColumn()
	case key.Matches(msg, keys.PrevColumn):
		v.PrevColumn()
	case key.Matches(msg, keys.Down):
		v.MoveDown()
	case key.Matches(msg, keys.Up):
		v.MoveUp()
	case key.Matches(msg, keys.Bottom):
		v.JumpToBottom()
	case key.Matches(msg, keys.HalfPageDown):
		v.HalfPageDown(pageSize)
	case key.Matches(msg, keys.HalfPageUp):
		v.HalfPageUp(pageSize)
	case key.Matches(msg, keys.CopyCell):
		return v.CopyCell(), true
	case key.Matches(msg, keys.CopyRow):
		return v.CopyRow(), true
	default:
		return nil, false
	}
	return nil, true
}

func (v *TableView) clampCursor() {
	n := v.tbl.VisibleLen()
	if n == 0 {
		v.cursor = 0
		v.offset = 0
		return
	}
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if v.offset > v.cursor {
		v.offset = v.cursor
	}
}

func (v *TableView) viewport() int {
	if v.viewportHeight <= 0 {
		return 10
	}
	return v.viewportHeight
}

// MoveDown moves the cursor down.
func (v *TableView) MoveDown() {
	if v.cursor < v.tbl.VisibleLen()-1 {
		v.cursor++
		if v.cursor >= v.offset+v.viewport() {
			v.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (v *TableView) MoveUp() {
	if v.cursor > 0 {
		v.cursor--
		if v.cursor < v.offset {
			v.offset--
		}
	}
}

// JumpToTop jumps to the first row.
func (v *TableView) JumpToTop() {
	v.cursor = 0
	v.offset = 0
}

// JumpToBottom jumps to the last row.
func (v *TableView) JumpToBottom() {
	n := v.tbl.VisibleLen()
	if n == 0 {
		return
	}
	v.cursor = n - 1
	if v.cursor >= v.viewport() {
		v.offset = v.cursor - v.viewport() + 1
	}
}

// HalfPageDown moves down half a page.
func (v *TableView) HalfPageDown(pageSize int) {
	v.cursor += pageSize / 2
	v.clampCursor()
	if v.cursor >= v.offset+v.viewport() {
		v.offset = v.cursor - v.viewport() + 1
	}
}

// HalfPageUp moves up half a page.
func (v *TableView) HalfPageUp(pageSize int) {
	v.cursor -= pageSize / 2
	v.clampCursor()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
}

// Cursor is the index of the selected visible row.
func (v *TableView) Cursor() int { return v.cursor }

func (v *TableView) columnWidths(width int) []int {
	cols := v.tbl.Columns()
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.Label) + 2
	}
	for _, r := range v.tbl.Rows() {
		for i := range cols {
			if w := lipgloss.Width(r.Cell(i)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	total := 0
	for i := range widths {
		widths[i] = min(widths[i], maxColumnWidth)
		total += widths[i] + columnGap
	}
	if extra := width - total - 2; extra > 0 && len(widths) > 0 {
		widths[len(widths)-1] += extra
	}
	return widths
}

// View renders the search box, header, visible rows and status line.
func (v *TableView) View(width, height int) string {
	var top []string
	if v.search != nil && (v.search.input.Focused() || v.search.input.Value() != "") {
		top = append(top, StatusBarStyle.Render(v.search.input.View()))
	}

	if v.tbl.Len() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(top,
			EmptyStateStyle.Width(width).Render(v.emptyText))...)
	}

	cols := v.tbl.Columns()
	widths := v.columnWidths(width)
	headers := make([]string, len(cols))
	for i, c := range cols {
		label := strings.ToUpper(c.Label)
		switch v.tbl.Marker(i) {
		case table.Ascending:
			label += " ↑"
		case table.Descending:
			label += " ↓"
		}
		headers[i] = label
	}

	lines := []string{renderHeaderRow(headers, widths, v.activeColumn)}

	visibleHeight := height - 2 - len(top)
	v.viewportHeight = visibleHeight
	rows := v.tbl.Visible()
	if len(rows) == 0 {
		lines = append(lines, EmptyStateStyle.Render("No rows match the search."))
	}
	for i := v.offset; i < len(rows) && i < v.offset+visibleHeight; i++ {
		style := NormalRowStyle
		if i == v.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, len(cols))
		for c := range cols {
			cells[c] = rows[i].Cell(c)
		}
		lines = append(lines, renderTableRow(cells, widths, style))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, append(top, lines...)...)

	status := fmt.Sprintf("%d/%d %ss", len(rows), v.tbl.Len(), v.noun)
	if len(rows) > 0 {
		status += fmt.Sprintf("  ·  row %d", v.cursor+1)
	}
	if meta := v.Meta(); meta != "" {
		status += "  ·  " + meta
	}
	statusLine := StatusBarStyle.Render(status)

	spacer := lipgloss.NewStyle().Height(max(0, height-lipgloss.Height(content)-1)).Render("")
	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, statusLine)
}

func renderHeaderRow(labels []string, widths []int, active int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		style := TableHeaderStyle
		if i == active {
			style = ActiveHeaderStyle
		}
		parts[i] = style.Width(widths[i] + columnGap).Render(" " + util.TruncateString(l, widths[i]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = style.Width(widths[i] + columnGap).Render(" " + util.TruncateString(c, widths[i]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}
