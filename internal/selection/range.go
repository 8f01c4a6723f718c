package selection

import (
	"fmt"

	"github.com/dshills/twinmark/internal/richtree"
)

// Point is a position in a rich-content tree. For text-bearing leaves
// Offset counts runes of the node's text; for other nodes it counts
// children.
type Point struct {
	Node   richtree.Handle
	Offset int
}

// Range is a selection in a rich-content tree. TreeID records the tree the
// handles belong to; handles from another tree never restore.
type Range struct {
	TreeID string
	Anchor Point
	Head   Point
}

// NewRange creates a range in t from anchor to head.
func NewRange(t *richtree.Tree, anchor, head Point) Range {
	return Range{TreeID: t.ID(), Anchor: anchor, Head: head}
}

// CaretAt creates an empty range at p.
func CaretAt(t *richtree.Tree, p Point) Range {
	return NewRange(t, p, p)
}

// EndOf returns an empty range at the end of t's content.
func EndOf(t *richtree.Tree) Range {
	h, off := t.End()
	return CaretAt(t, Point{Node: h, Offset: off})
}

// IsEmpty reports whether the range has no extent.
func (r Range) IsEmpty() bool {
	return r.Anchor == r.Head
}

// Collapse collapses the range to its head.
func (r Range) Collapse() Range {
	return Range{TreeID: r.TreeID, Anchor: r.Head, Head: r.Head}
}

// Restorable reports whether both points still exist in t.
func (r Range) Restorable(t *richtree.Tree) bool {
	return t != nil && r.TreeID == t.ID() && t.Attached(r.Anchor.Node) && t.Attached(r.Head.Node)
}

// Clamp returns the range with offsets inside their nodes. Text offsets
// are moved to grapheme cluster boundaries.
func (r Range) Clamp(t *richtree.Tree) Range {
	return Range{TreeID: r.TreeID, Anchor: clampPoint(t, r.Anchor), Head: clampPoint(t, r.Head)}
}

func (r Range) String() string {
	if r.IsEmpty() {
		return fmt.Sprintf("caret(%d:%d)", r.Head.Node, r.Head.Offset)
	}
	return fmt.Sprintf("range(%d:%d-%d:%d)", r.Anchor.Node, r.Anchor.Offset, r.Head.Node, r.Head.Offset)
}

func clampPoint(t *richtree.Tree, p Point) Point {
	n := t.Node(p.Node)
	if n == nil {
		return p
	}
	if n.Kind.IsLeaf() {
		return Point{Node: p.Node, Offset: snapRunes(n.Text, p.Offset)}
	}
	return Point{Node: p.Node, Offset: min(max(p.Offset, 0), t.ChildCount(p.Node))}
}
