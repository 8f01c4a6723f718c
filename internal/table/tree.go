package table

import (
	"github.com/dshills/twinmark/internal/richtree"
)

// Cell is a resolved table position in a rich-content tree.
type Cell struct {
	Table richtree.Handle
	Row   richtree.Handle
	Cell  richtree.Handle
	Loc   Locator
}

// Resolve finds the table cell at or above h.
func Resolve(t *richtree.Tree, h richtree.Handle) (Cell, error) {
	if !t.Attached(h) {
		return Cell{}, ErrNotInTable
	}
	cell := t.Ancestor(h, richtree.KindTableCell)
	if cell == richtree.NoHandle {
		if t.Ancestor(h, richtree.KindTable) != richtree.NoHandle {
			return Cell{}, ErrTableNotFound
		}
		return Cell{}, ErrNotInTable
	}
	row := t.Parent(cell)
	tbl := t.Parent(row)
	if t.Kind(row) != richtree.KindTableRow || t.Kind(tbl) != richtree.KindTable {
		return Cell{}, ErrTableNotFound
	}
	return Cell{
		Table: tbl,
		Row:   row,
		Cell:  cell,
		Loc:   Locator{Row: t.IndexOf(row), Col: t.IndexOf(cell)},
	}, nil
}

// ApplyTree performs op on the table containing h and returns the new
// active cell. For DeleteTable it returns the block that followed the
// table, or richtree.NoHandle when the table was the last block. On failure
// the tree is unchanged.
func ApplyTree(t *richtree.Tree, h richtree.Handle, op Op) (richtree.Handle, error) {
	c, err := Resolve(t, h)
	if err != nil {
		return h, err
	}
	PadTree(t, c.Table)

	switch op {
	case AddColumn:
		return addColumnTree(t, c), nil
	case RemoveColumn:
		return removeColumnTree(t, c)
	case AddRow:
		return addRowTree(t, c), nil
	case RemoveRow:
		return removeRowTree(t, c)
	case DeleteTable:
		parent := t.Parent(c.Table)
		next := t.Child(parent, t.IndexOf(c.Table)+1)
		if err := t.Remove(c.Table); err != nil {
			return h, err
		}
		return next, nil
	}
	return h, ErrTableNotFound
}

func treeWidth(t *richtree.Tree, tbl richtree.Handle) int {
	w := 0
	for _, r := range t.Children(tbl) {
		w = max(w, t.ChildCount(r))
	}
	return w
}

func addColumnTree(t *richtree.Tree, c Cell) richtree.Handle {
	at := c.Loc.Col + 1
	active := richtree.NoHandle
	for _, row := range t.Children(c.Table) {
		src := t.Node(t.Child(row, c.Loc.Col))
		cell := t.NewNode(richtree.Node{
			Kind:   richtree.KindTableCell,
			Header: src.Header,
			Align:  src.Align,
		})
		_ = t.InsertAt(row, at, cell)
		if row == c.Row {
			active = cell
		}
	}
	return active
}

func removeColumnTree(t *richtree.Tree, c Cell) (richtree.Handle, error) {
	w := treeWidth(t, c.Table)
	if w <= 1 {
		return c.Cell, ErrMinColumns
	}
	for _, row := range t.Children(c.Table) {
		_ = t.Remove(t.Child(row, c.Loc.Col))
	}
	return t.Child(c.Row, clamp(c.Loc.Col, 0, w-2)), nil
}

func addRowTree(t *richtree.Tree, c Cell) richtree.Handle {
	header := t.Child(c.Table, 0)
	row := t.NewNode(richtree.Node{Kind: richtree.KindTableRow})
	for _, hc := range t.Children(header) {
		t.Append(row, richtree.Node{Kind: richtree.KindTableCell, Align: t.Node(hc).Align})
	}
	_ = t.InsertAt(c.Table, c.Loc.Row+1, row)
	return t.Child(row, c.Loc.Col)
}

func removeRowTree(t *richtree.Tree, c Cell) (richtree.Handle, error) {
	rows := t.Children(c.Table)
	if len(rows) <= 1 {
		return c.Cell, ErrNoDataRows
	}
	_ = t.Remove(rows[max(c.Loc.Row, 1)])
	row := t.Child(c.Table, clamp(c.Loc.Row, 0, len(rows)-2))
	return t.Child(row, c.Loc.Col), nil
}

// PadTree appends empty cells so that every row of tbl has as many cells as
// its widest row. Padded cells in the first row are header cells; padded
// cells take the first row's alignment for their column.
func PadTree(t *richtree.Tree, tbl richtree.Handle) {
	rows := t.Children(tbl)
	if len(rows) == 0 {
		return
	}
	w := treeWidth(t, tbl)
	var aligns []richtree.Align
	for _, cell := range t.Children(rows[0]) {
		aligns = append(aligns, t.Node(cell).Align)
	}
	for i, r := range rows {
		for col := t.ChildCount(r); col < w; col++ {
			align := richtree.AlignNone
			if col < len(aligns) {
				align = aligns[col]
			}
			t.Append(r, richtree.Node{Kind: richtree.KindTableCell, Header: i == 0, Align: align})
		}
	}
}
