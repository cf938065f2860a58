// Package table holds the view-model behind every interactive table in
// upsend: an ordered set of rows under a header, plus the sort and filter
// state that decides how those rows are projected onto the screen.
package table

import (
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// ErrUnknownColumn is returned when an action names a column index the table does not have.
	ErrUnknownColumn = errors.New("table: unknown column")
	// ErrNotSortable is returned when a sort is requested on a header not marked sortable.
	ErrNotSortable = errors.New("table: column is not sortable")
)

// Direction is the sort marker carried by a header.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// Column is a header cell.
type Column struct {
	Key      string
	Label    string
	Sortable bool
}

// Row is one record; Cells align positionally with the table's columns.
type Row struct {
	ID    string
	Cells []string
}

// Cell returns the trimmed text at index i, or "" when the row is short.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Text is every cell of the row joined the way a rendered row reads.
func (r Row) Text() string {
	return strings.Join(r.Cells, "\n")
}

// State is the per-table interaction state. SortColumn is -1 until a header
// has been sorted.
type State struct {
	SortColumn int
	Direction  Direction
	Term       string
}

// Option configures a Table.
type Option func(*Table)

// WithLocale sets the locale used for string comparison (BCP 47, default "en").
func WithLocale(tag string) Option {
	return func(t *Table) {
		t.locale = tag
	}
}

type entry struct {
	row    Row
	hidden bool
}

// Table owns the rows of one rendered table and its sort/filter state.
// It is not safe for concurrent use; callers drive it from a single loop.
type Table struct {
	id      string
	columns []Column
	rows    []entry
	state   State
	locale  string
	cmp     *comparator
}

// New builds a table in its initial state: nothing sorted, empty search
// term, every row visible and in the given order.
func New(id string, columns []Column, rows []Row, opts ...Option) *Table {
	t := &Table{
		id:      id,
		columns: slices.Clone(columns),
		rows:    make([]entry, len(rows)),
		state:   State{SortColumn: -1},
		locale:  "en",
	}
	for i, r := range rows {
		t.rows[i] = entry{row: r}
	}
	for _, opt := range opts {
		opt(t)
	}
	t.cmp = newComparator(t.locale)
	return t
}

// ID identifies the table, e.g. for associating a search box with it.
func (t *Table) ID() string { return t.id }

// Columns returns a copy of the header.
func (t *Table) Columns() []Column { return slices.Clone(t.columns) }

// State returns the current interaction state.
func (t *Table) State() State { return t.state }

// Len is the number of rows, shown or hidden.
func (t *Table) Len() int { return len(t.rows) }

// Marker returns the sort direction shown on header i. At most one header
// carries a direction other than Unsorted.
func (t *Table) Marker(i int) Direction {
	if i == t.state.SortColumn {
		return t.state.Direction
	}
	return Unsorted
}

// Rows returns every row in current order, hidden ones included.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, e := range t.rows {
		out[i] = e.row
	}
	return out
}

// Visible returns the shown rows in current order.
func (t *Table) Visible() []Row {
	out := make([]Row, 0, len(t.rows))
	for _, e := range t.rows {
		if !e.hidden {
			out = append(out, e.row)
		}
	}
	return out
}

// VisibleLen is the number of shown rows.
func (t *Table) VisibleLen() int {
	n := 0
	for _, e := range t.rows {
		if !e.hidden {
			n++
		}
	}
	return n
}

// Hidden reports whether the first row with the given id is filtered out.
func (t *Table) Hidden(id string) bool {
	for _, e := range t.rows {
		if e.row.ID == id {
			return e.hidden
		}
	}
	return false
}

// Dispatch applies a user action to the table.
func (t *Table) Dispatch(a Action) error {
	switch a := a.(type) {
	case SortRequested:
		return t.Sort(a.Column)
	case FilterRequested:
		t.Filter(a.Term)
		return nil
	default:
		return nil
	}
}

// Sort reorders the rows by column. A header already sorted ascending flips
// to descending; any other header state becomes ascending. Sorting never
// returns a header to Unsorted.
func (t *Table) Sort(column int) error {
	if column < 0 || column >= len(t.columns) {
		return ErrUnknownColumn
	}
	if !t.columns[column].Sortable {
		return ErrNotSortable
	}

	dir := Ascending
	if t.Marker(column) == Ascending {
		dir = Descending
	}

	slices.SortStableFunc(t.rows, func(a, b entry) int {
		c := t.cmp.compare(a.row.Cell(column), b.row.Cell(column))
		if dir == Descending {
			return -c
		}
		return c
	})

	t.state.SortColumn = column
	t.state.Direction = dir
	return nil
}

// Filter hides every row whose text does not contain term, ignoring case.
// An empty term shows all rows. Row order is left alone.
func (t *Table) Filter(term string) {
	t.state.Term = term
	if term == "" {
		for i := range t.rows {
			t.rows[i].hidden = false
		}
		return
	}

	fold := cases.Fold()
	needle := fold.String(term)
	for i := range t.rows {
		t.rows[i].hidden = !strings.Contains(fold.String(t.rows[i].row.Text()), needle)
	}
}
