package table

import (
	"slices"
	"strings"

	"github.com/dshills/twinmark/internal/richtree"
)

// Grid is a table in markup form. Row 0 is the header; the separator row is
// implied by Aligns; Rows are the data rows. Cells hold unescaped inline
// markup.
type Grid struct {
	Header []string
	Aligns []richtree.Align
	Rows   [][]string
}

// Locator addresses a cell. Row 0 is the header row, row 1 the first data
// row.
type Locator struct {
	Row int
	Col int
}

// Width returns the widest row's cell count.
func (g *Grid) Width() int {
	w := max(len(g.Header), len(g.Aligns))
	for _, r := range g.Rows {
		w = max(w, len(r))
	}
	return w
}

// Height returns the number of rows including the header.
func (g *Grid) Height() int {
	return 1 + len(g.Rows)
}

// Pad extends every row, and the alignments, to Width.
func (g *Grid) Pad() {
	w := g.Width()
	g.Header = padCells(g.Header, w)
	for len(g.Aligns) < w {
		g.Aligns = append(g.Aligns, richtree.AlignNone)
	}
	for i := range g.Rows {
		g.Rows[i] = padCells(g.Rows[i], w)
	}
}

func padCells(cells []string, w int) []string {
	for len(cells) < w {
		cells = append(cells, "")
	}
	return cells
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Header: slices.Clone(g.Header),
		Aligns: slices.Clone(g.Aligns),
		Rows:   make([][]string, len(g.Rows)),
	}
	for i, r := range g.Rows {
		c.Rows[i] = slices.Clone(r)
	}
	return c
}

// Clamp returns loc moved inside g's bounds.
func (g *Grid) Clamp(loc Locator) Locator {
	return Locator{
		Row: clamp(loc.Row, 0, g.Height()-1),
		Col: clamp(loc.Col, 0, g.Width()-1),
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// AddColumn inserts an empty column after loc's column. The new column
// inherits the active column's alignment. It returns the locator of the new
// cell in loc's row.
func (g *Grid) AddColumn(loc Locator) Locator {
	g.Pad()
	loc = g.Clamp(loc)
	at := loc.Col + 1
	g.Header = slices.Insert(g.Header, at, "")
	g.Aligns = slices.Insert(g.Aligns, at, g.Aligns[loc.Col])
	for i := range g.Rows {
		g.Rows[i] = slices.Insert(g.Rows[i], at, "")
	}
	return Locator{Row: loc.Row, Col: at}
}

// RemoveColumn removes loc's column.
func (g *Grid) RemoveColumn(loc Locator) (Locator, error) {
	g.Pad()
	if g.Width() <= 1 {
		return loc, ErrMinColumns
	}
	loc = g.Clamp(loc)
	g.Header = slices.Delete(g.Header, loc.Col, loc.Col+1)
	g.Aligns = slices.Delete(g.Aligns, loc.Col, loc.Col+1)
	for i := range g.Rows {
		g.Rows[i] = slices.Delete(g.Rows[i], loc.Col, loc.Col+1)
	}
	return g.Clamp(loc), nil
}

// AddRow inserts an empty data row after loc's row and returns the locator
// of the new row's cell in loc's column.
func (g *Grid) AddRow(loc Locator) Locator {
	g.Pad()
	loc = g.Clamp(loc)
	g.Rows = slices.Insert(g.Rows, loc.Row, make([]string, g.Width()))
	return Locator{Row: loc.Row + 1, Col: loc.Col}
}

// RemoveRow removes loc's row. With the header active the first data row is
// removed and the header stays active.
func (g *Grid) RemoveRow(loc Locator) (Locator, error) {
	if len(g.Rows) == 0 {
		return loc, ErrNoDataRows
	}
	g.Pad()
	loc = g.Clamp(loc)
	idx := max(loc.Row-1, 0)
	g.Rows = slices.Delete(g.Rows, idx, idx+1)
	return g.Clamp(loc), nil
}

// Apply runs a row or column operation. DeleteTable is not a grid
// operation and is reported as ErrTableNotFound.
func (g *Grid) Apply(op Op, loc Locator) (Locator, error) {
	switch op {
	case AddColumn:
		return g.AddColumn(loc), nil
	case RemoveColumn:
		return g.RemoveColumn(loc)
	case AddRow:
		return g.AddRow(loc), nil
	case RemoveRow:
		return g.RemoveRow(loc)
	}
	return loc, ErrTableNotFound
}

// Format renders g as pipe-table lines joined by newlines, without a
// trailing newline. Short rows are padded.
func Format(g *Grid) string {
	return strings.Join(FormatLines(g), "\n")
}

// FormatLines renders g as pipe-table lines.
func FormatLines(g *Grid) []string {
	c := g.Clone()
	c.Pad()
	lines := make([]string, 0, c.Height()+1)
	lines = append(lines, formatRow(c.Header))
	seps := make([]string, len(c.Aligns))
	for i, a := range c.Aligns {
		seps[i] = separatorCell(a)
	}
	lines = append(lines, "| "+strings.Join(seps, " | ")+" |")
	for _, r := range c.Rows {
		lines = append(lines, formatRow(r))
	}
	return lines
}

func formatRow(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = EscapeCell(c)
	}
	return "| " + strings.Join(escaped, " | ") + " |"
}

func separatorCell(a richtree.Align) string {
	switch a {
	case richtree.AlignLeft:
		return ":---"
	case richtree.AlignCenter:
		return ":---:"
	case richtree.AlignRight:
		return "---:"
	default:
		return "---"
	}
}

// EscapeCell escapes pipes and flattens newlines so that s fits in one cell.
func EscapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

// cellOffset returns the rune offset of column col's content within a line
// produced by formatRow for cells.
func cellOffset(cells []string, col int) int {
	off := 2
	for i := 0; i < col && i < len(cells); i++ {
		off += len([]rune(EscapeCell(cells[i]))) + 3
	}
	return off
}
