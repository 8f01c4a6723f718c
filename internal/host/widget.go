package host

// Position is a location in markup text. Line and Col are zero-based; Col
// counts runes.
type Position struct {
	Line int
	Col  int
}

// Less reports whether p comes before q.
func (p Position) Less(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Selection is an anchor/head pair of positions.
type Selection struct {
	Anchor Position
	Head   Position
}

// ChangeFunc receives the full text after every change.
type ChangeFunc func(text string)

// Widget is the host text-editing widget. It is the authoritative store of
// the markup text while the markup view is active.
type Widget interface {
	Text() string
	// SetText replaces the whole text and notifies change listeners.
	SetText(text string)

	Selection() Selection
	SetSelection(sel Selection)

	// Scroll returns the first visible line.
	Scroll() int
	SetScroll(line int)

	// OnChange registers fn for content changes and returns a function
	// that unregisters it.
	OnChange(fn ChangeFunc) (cancel func())

	// ApplyEdit replaces the text between start and end and returns the
	// caret position after the inserted text.
	ApplyEdit(start, end Position, text string) Position
}
