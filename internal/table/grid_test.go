package table

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/twinmark/internal/richtree"
)

func sampleGrid() *Grid {
	return &Grid{
		Header: []string{"a", "b"},
		Aligns: []richtree.Align{richtree.AlignNone, richtree.AlignRight},
		Rows:   [][]string{{"1", "2"}, {"3", "4"}},
	}
}

func assertRectangular(t *testing.T, g *Grid) {
	t.Helper()
	w := len(g.Header)
	if len(g.Aligns) != w {
		t.Fatalf("aligns = %d, header = %d", len(g.Aligns), w)
	}
	for i, r := range g.Rows {
		if len(r) != w {
			t.Fatalf("row %d has %d cells, header has %d", i, len(r), w)
		}
	}
}

func TestGridAddColumn(t *testing.T) {
	g := sampleGrid()
	loc := g.AddColumn(Locator{Row: 1, Col: 1})

	if loc != (Locator{Row: 1, Col: 2}) {
		t.Errorf("locator = %+v", loc)
	}
	want := &Grid{
		Header: []string{"a", "b", ""},
		Aligns: []richtree.Align{richtree.AlignNone, richtree.AlignRight, richtree.AlignRight},
		Rows:   [][]string{{"1", "2", ""}, {"3", "4", ""}},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("grid mismatch (-want +got):\n%s", diff)
	}
}

func TestGridRemoveColumn(t *testing.T) {
	g := sampleGrid()
	loc, err := g.RemoveColumn(Locator{Row: 2, Col: 1})
	if err != nil {
		t.Fatalf("RemoveColumn error: %v", err)
	}
	if loc != (Locator{Row: 2, Col: 0}) {
		t.Errorf("locator = %+v, want clamped to column 0", loc)
	}

	_, err = g.RemoveColumn(loc)
	if !errors.Is(err, ErrMinColumns) {
		t.Fatalf("error = %v, want ErrMinColumns", err)
	}
	assertRectangular(t, g)
	if len(g.Header) != 1 {
		t.Errorf("failed remove changed the grid: %+v", g)
	}
}

func TestGridAddRow(t *testing.T) {
	tests := []struct {
		name    string
		loc     Locator
		wantLoc Locator
		wantAt  int
	}{
		{"from header", Locator{Row: 0, Col: 1}, Locator{Row: 1, Col: 1}, 0},
		{"from first row", Locator{Row: 1, Col: 0}, Locator{Row: 2, Col: 0}, 1},
		{"from last row", Locator{Row: 2, Col: 0}, Locator{Row: 3, Col: 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sampleGrid()
			loc := g.AddRow(tt.loc)
			if loc != tt.wantLoc {
				t.Errorf("locator = %+v, want %+v", loc, tt.wantLoc)
			}
			if len(g.Rows) != 3 {
				t.Fatalf("rows = %d, want 3", len(g.Rows))
			}
			if diff := cmp.Diff([]string{"", ""}, g.Rows[tt.wantAt]); diff != "" {
				t.Errorf("new row mismatch:\n%s", diff)
			}
			assertRectangular(t, g)
		})
	}
}

func TestGridRemoveRow(t *testing.T) {
	g := sampleGrid()
	loc, err := g.RemoveRow(Locator{Row: 0, Col: 1})
	if err != nil {
		t.Fatalf("RemoveRow error: %v", err)
	}
	if loc != (Locator{Row: 0, Col: 1}) {
		t.Errorf("locator = %+v, want header to stay active", loc)
	}
	if diff := cmp.Diff([][]string{{"3", "4"}}, g.Rows); diff != "" {
		t.Errorf("rows mismatch:\n%s", diff)
	}

	loc, err = g.RemoveRow(Locator{Row: 1, Col: 0})
	if err != nil {
		t.Fatalf("RemoveRow error: %v", err)
	}
	if loc != (Locator{Row: 0, Col: 0}) {
		t.Errorf("locator = %+v, want clamped to header", loc)
	}

	if _, err := g.RemoveRow(loc); !errors.Is(err, ErrNoDataRows) {
		t.Fatalf("error = %v, want ErrNoDataRows", err)
	}
}

func TestGridOperationsStayRectangular(t *testing.T) {
	g := &Grid{
		Header: []string{"a"},
		Rows:   [][]string{{"1", "2", "3"}, {}},
	}
	ops := []Op{AddColumn, AddRow, RemoveColumn, AddRow, RemoveRow, AddColumn, RemoveColumn, RemoveRow}
	loc := Locator{Row: 1, Col: 2}
	for _, op := range ops {
		var err error
		loc, err = g.Apply(op, loc)
		if err != nil {
			t.Fatalf("%s: %v", op, err)
		}
		assertRectangular(t, g)
		if c := g.Clamp(loc); c != loc {
			t.Fatalf("%s: locator %+v out of bounds", op, loc)
		}
	}
}

func TestFormat(t *testing.T) {
	g := &Grid{
		Header: []string{"a|b", "c"},
		Aligns: []richtree.Align{richtree.AlignLeft, richtree.AlignCenter},
		Rows:   [][]string{{"1"}},
	}
	want := "| a\\|b | c |\n| :--- | :---: |\n| 1 |  |"
	if got := Format(g); got != want {
		t.Errorf("Format =\n%s\nwant\n%s", got, want)
	}
	if len(g.Rows[0]) != 1 {
		t.Error("Format modified the grid")
	}
}

func TestParseOp(t *testing.T) {
	for _, op := range []Op{AddColumn, RemoveColumn, AddRow, RemoveRow, DeleteTable} {
		got, err := ParseOp(op.String())
		if err != nil || got != op {
			t.Errorf("ParseOp(%q) = %v, %v", op.String(), got, err)
		}
	}
	if _, err := ParseOp("flip"); err == nil {
		t.Error("ParseOp(flip) should fail")
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Error("nil error should have no message")
	}
	if Message(ErrNoDataRows) == "no_data_rows" {
		t.Error("failure should map to a readable message")
	}
}
