package table

// Action is a user interaction routed to a Table through Dispatch.
type Action interface {
	isAction()
}

// SortRequested is sent when a sortable header is activated.
type SortRequested struct {
	Column int
}

// FilterRequested is sent when the table's search text changes.
type FilterRequested struct {
	Term string
}

func (SortRequested) isAction()   {}
func (FilterRequested) isAction() {}
