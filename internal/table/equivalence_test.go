package table_test

import (
	"errors"
	"testing"

	"github.com/dshills/twinmark/internal/render"
	"github.com/dshills/twinmark/internal/richtree"
	"github.com/dshills/twinmark/internal/serialize"
	"github.com/dshills/twinmark/internal/table"
)

// cellHandle returns the tree cell at the table locator.
func cellHandle(t *richtree.Tree, loc table.Locator) richtree.Handle {
	tbl := t.Find(func(_ richtree.Handle, n *richtree.Node) bool { return n.Kind == richtree.KindTable })
	return t.Child(t.Child(tbl, loc.Row), loc.Col)
}

// markupCursor returns a cursor inside the markup cell at loc for tables
// written with single-character cells.
func markupCursor(loc table.Locator) table.Cursor {
	line := 0
	if loc.Row > 0 {
		line = loc.Row + 1
	}
	return table.Cursor{Line: line, Col: 2 + 4*loc.Col}
}

func TestMarkupAndTreePathsAgree(t *testing.T) {
	const src = "| a | b | c |\n| :--- | --- | ---: |\n| 1 | 2 | 3 |\n| 4 | 5 | 6 |"

	locs := []table.Locator{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}}
	ops := []table.Op{table.AddColumn, table.RemoveColumn, table.AddRow, table.RemoveRow}

	for _, op := range ops {
		for _, loc := range locs {
			res, mErr := table.ApplyMarkup(src, markupCursor(loc), op)

			tree, err := render.New().Render(src)
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			_, tErr := table.ApplyTree(tree, cellHandle(tree, loc), op)

			if !errors.Is(tErr, mErr) && !(mErr == nil && tErr == nil) {
				t.Errorf("%s at %+v: markup error %v, tree error %v", op, loc, mErr, tErr)
				continue
			}
			if got := serialize.Serialize(tree); got != res.Text {
				t.Errorf("%s at %+v:\ntree path:\n%s\nmarkup path:\n%s", op, loc, got, res.Text)
			}
		}
	}
}

func TestScenarioNoDataRows(t *testing.T) {
	const src = "| a | b |\n| --- | --- |"

	res, err := table.ApplyMarkup(src, table.Cursor{Line: 0, Col: 2}, table.RemoveRow)
	if !errors.Is(err, table.ErrNoDataRows) || res.Text != src {
		t.Errorf("markup: %v, %q", err, res.Text)
	}

	tree, rerr := render.New().Render(src)
	if rerr != nil {
		t.Fatalf("Render error: %v", rerr)
	}
	before := serialize.Serialize(tree)
	if _, err := table.ApplyTree(tree, cellHandle(tree, table.Locator{}), table.RemoveRow); !errors.Is(err, table.ErrNoDataRows) {
		t.Errorf("tree: error = %v, want ErrNoDataRows", err)
	}
	if after := serialize.Serialize(tree); after != before {
		t.Errorf("tree changed:\n%s\n->\n%s", before, after)
	}
}

func TestAddressMatchesAcrossRepresentations(t *testing.T) {
	const src = "| a | b |\n| --- | --- |\n| 1 | 2 |\n\n```\n| x | y |\n| --- | --- |\n```\n\n| c | d |\n| --- | --- |\n| 3 | 4 |\n| 5 | 6 |"

	tests := []struct {
		cur  table.Cursor
		want table.Address
	}{
		{table.Cursor{Line: 2, Col: 6}, table.Address{Table: 0, Loc: table.Locator{Row: 1, Col: 1}}},
		{table.Cursor{Line: 9, Col: 2}, table.Address{Table: 1, Loc: table.Locator{Row: 0, Col: 0}}},
		{table.Cursor{Line: 12, Col: 6}, table.Address{Table: 1, Loc: table.Locator{Row: 2, Col: 1}}},
	}

	tree, err := render.New().Render(src)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	for _, tt := range tests {
		got, err := table.AddressOf(src, tt.cur)
		if err != nil {
			t.Fatalf("AddressOf(%+v) error: %v", tt.cur, err)
		}
		if got != tt.want {
			t.Errorf("AddressOf(%+v) = %+v, want %+v", tt.cur, got, tt.want)
		}

		cell, err := table.CellAt(tree, got)
		if err != nil {
			t.Fatalf("CellAt(%+v) error: %v", got, err)
		}
		back, err := table.AddressIn(tree, cell)
		if err != nil || back != got {
			t.Errorf("AddressIn = %+v, %v; want %+v", back, err, got)
		}
	}

	if _, err := table.CellAt(tree, table.Address{Table: 2}); !errors.Is(err, table.ErrTableNotFound) {
		t.Errorf("CellAt past the last table = %v, want ErrTableNotFound", err)
	}
}
