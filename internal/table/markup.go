package table

import (
	"regexp"
	"slices"
	"strings"

	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/richtree"
)

var separatorCellPattern = regexp.MustCompile(`^:?-{3,}:?$`)

// Cursor is a caret position in markup text. Line and Col are zero-based;
// Col counts runes.
type Cursor struct {
	Line int
	Col  int
}

// Span is a table located in markup text.
type Span struct {
	// Start and End delimit the table's lines, End exclusive.
	Start int
	End   int
	Grid  *Grid
	// Loc is the cell under the cursor.
	Loc Locator
}

// Result is the outcome of a markup table edit.
type Result struct {
	Text   string
	Cursor Cursor
}

// Locate finds the table containing the cursor. Lines that hold an
// unescaped pipe are scanned outward from the cursor's line; the block must
// contain a separator row below its first line.
func Locate(text string, cur Cursor) (*Span, error) {
	lines := strings.Split(text, "\n")
	if cur.Line < 0 || cur.Line >= len(lines) {
		return nil, ErrNotInTable
	}
	fenced := markup.FencedLines(lines)
	isRow := func(i int) bool { return !fenced[i] && hasPipe(lines[i]) }
	if !isRow(cur.Line) {
		return nil, ErrNotInTable
	}

	start, end := cur.Line, cur.Line+1
	for start > 0 && isRow(start-1) {
		start--
	}
	for end < len(lines) && isRow(end) {
		end++
	}

	sep := -1
	for i := start + 1; i < end; i++ {
		if isSeparator(lines[i]) {
			sep = i
			break
		}
	}
	if sep < 0 || cur.Line < sep-1 {
		return nil, ErrTableNotFound
	}
	start = sep - 1

	g := &Grid{Header: splitRow(lines[start])}
	for _, cell := range splitRow(lines[sep]) {
		g.Aligns = append(g.Aligns, parseAlign(cell))
	}
	for i := sep + 1; i < end; i++ {
		g.Rows = append(g.Rows, splitRow(lines[i]))
	}
	g.Pad()

	row := 0
	if d := cur.Line - start; d >= 2 {
		row = d - 1
	}
	col := pipesBefore(lines[cur.Line], cur.Col)
	if strings.HasPrefix(strings.TrimSpace(lines[cur.Line]), "|") {
		col--
	}
	return &Span{
		Start: start,
		End:   end,
		Grid:  g,
		Loc:   g.Clamp(Locator{Row: row, Col: col}),
	}, nil
}

// ApplyMarkup performs op on the table around cur. On failure the text and
// cursor are returned unchanged along with the Failure.
func ApplyMarkup(text string, cur Cursor, op Op) (Result, error) {
	unchanged := Result{Text: text, Cursor: cur}
	span, err := Locate(text, cur)
	if err != nil {
		return unchanged, err
	}
	lines := strings.Split(text, "\n")

	if op == DeleteTable {
		lines = slices.Delete(lines, span.Start, span.End)
		if len(lines) == 0 {
			lines = []string{""}
		}
		return Result{
			Text:   strings.Join(lines, "\n"),
			Cursor: Cursor{Line: min(span.Start, len(lines)-1)},
		}, nil
	}

	g := span.Grid.Clone()
	loc, err := g.Apply(op, span.Loc)
	if err != nil {
		return unchanged, err
	}
	lines = slices.Replace(lines, span.Start, span.End, FormatLines(g)...)

	line := span.Start
	cells := g.Header
	if loc.Row > 0 {
		line += loc.Row + 1
		cells = g.Rows[loc.Row-1]
	}
	return Result{
		Text:   strings.Join(lines, "\n"),
		Cursor: Cursor{Line: line, Col: cellOffset(cells, loc.Col)},
	}, nil
}

func hasPipe(line string) bool {
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			return true
		}
	}
	return false
}

// pipesBefore counts the unescaped pipes in the first col runes of line.
func pipesBefore(line string, col int) int {
	n := 0
	escaped := false
	for i, r := range []rune(line) {
		if i >= col {
			break
		}
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			n++
		}
	}
	return n
}

// splitRow splits a table line into unescaped, trimmed cells.
func splitRow(line string) []string {
	rs := []rune(strings.TrimSpace(line))
	if len(rs) > 0 && rs[0] == '|' {
		rs = rs[1:]
	}
	if n := len(rs); n > 0 && rs[n-1] == '|' && !escapedAt(rs, n-1) {
		rs = rs[:n-1]
	}

	var cells []string
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		switch r := rs[i]; {
		case r == '\\' && i+1 < len(rs):
			if rs[i+1] != '|' {
				b.WriteRune(r)
			}
			i++
			b.WriteRune(rs[i])
		case r == '|':
			cells = append(cells, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	return append(cells, strings.TrimSpace(b.String()))
}

func escapedAt(rs []rune, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && rs[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func isSeparator(line string) bool {
	if !hasPipe(line) {
		return false
	}
	for _, cell := range splitRow(line) {
		if !separatorCellPattern.MatchString(cell) {
			return false
		}
	}
	return true
}

func parseAlign(cell string) richtree.Align {
	left := strings.HasPrefix(cell, ":")
	right := strings.HasSuffix(cell, ":")
	switch {
	case left && right:
		return richtree.AlignCenter
	case left:
		return richtree.AlignLeft
	case right:
		return richtree.AlignRight
	}
	return richtree.AlignNone
}
