package table

import (
	"strings"

	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/richtree"
)

// Address names a table cell in either representation: the table's index
// among the document's tables, in document order, and the cell within it.
type Address struct {
	Table int
	Loc   Locator
}

// AddressOf returns the address of the cell under cur in markup text.
func AddressOf(text string, cur Cursor) (Address, error) {
	span, err := Locate(text, cur)
	if err != nil {
		return Address{}, err
	}
	lines := strings.Split(text, "\n")
	fenced := markup.FencedLines(lines)

	n := 0
	for i := 0; i+1 < len(lines) && i < span.Start; {
		if fenced[i] || fenced[i+1] || !hasPipe(lines[i]) || !isSeparator(lines[i+1]) {
			i++
			continue
		}
		n++
		i += 2
		for i < len(lines) && !fenced[i] && hasPipe(lines[i]) {
			i++
		}
	}
	return Address{Table: n, Loc: span.Loc}, nil
}

// AddressIn returns the address of the cell at or above h.
func AddressIn(t *richtree.Tree, h richtree.Handle) (Address, error) {
	c, err := Resolve(t, h)
	if err != nil {
		return Address{}, err
	}
	for i, tbl := range tables(t) {
		if tbl == c.Table {
			return Address{Table: i, Loc: c.Loc}, nil
		}
	}
	return Address{}, ErrTableNotFound
}

// CellAt returns the cell at a in t. A locator past the table's edge is
// clamped to its last row or column.
func CellAt(t *richtree.Tree, a Address) (richtree.Handle, error) {
	all := tables(t)
	if a.Table < 0 || a.Table >= len(all) {
		return richtree.NoHandle, ErrTableNotFound
	}
	tbl := all[a.Table]
	rows := t.ChildCount(tbl)
	if rows == 0 {
		return richtree.NoHandle, ErrTableNotFound
	}
	row := t.Child(tbl, clamp(a.Loc.Row, 0, rows-1))
	cells := t.ChildCount(row)
	if cells == 0 {
		return richtree.NoHandle, ErrTableNotFound
	}
	return t.Child(row, clamp(a.Loc.Col, 0, cells-1)), nil
}

func tables(t *richtree.Tree) []richtree.Handle {
	var out []richtree.Handle
	t.Walk(t.Root(), func(h richtree.Handle, _ int) bool {
		if t.Kind(h) == richtree.KindTable {
			out = append(out, h)
			return false
		}
		return true
	})
	return out
}
