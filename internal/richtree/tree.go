package richtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Handle addresses a node inside one Tree.
type Handle int32

// NoHandle is the zero value returned when no node applies.
const NoHandle Handle = -1

type slot struct {
	node     Node
	parent   Handle
	children []Handle
}

// Tree is an arena of nodes rooted at a KindRoot node.
type Tree struct {
	id    string
	slots []slot
	root  Handle
}

// New creates an empty tree with a fresh identity.
func New() *Tree {
	t := &Tree{id: uuid.NewString()}
	t.root = t.NewNode(Node{Kind: KindRoot})
	return t
}

// ID returns the tree's unique identity.
func (t *Tree) ID() string {
	return t.id
}

// Root returns the root handle.
func (t *Tree) Root() Handle {
	return t.root
}

// Len returns the number of nodes ever allocated, attached or not.
func (t *Tree) Len() int {
	return len(t.slots)
}

// Valid reports whether h was allocated by this tree.
func (t *Tree) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(t.slots)
}

// NewNode allocates a detached node.
func (t *Tree) NewNode(n Node) Handle {
	t.slots = append(t.slots, slot{node: n, parent: NoHandle})
	return Handle(len(t.slots) - 1)
}

// Append allocates n and appends it as the last child of parent.
// It panics if parent is not a valid handle.
func (t *Tree) Append(parent Handle, n Node) Handle {
	h := t.NewNode(n)
	if err := t.InsertAt(parent, t.ChildCount(parent), h); err != nil {
		panic(fmt.Sprintf("richtree: append to %d: %v", parent, err))
	}
	return h
}

// InsertAt attaches child at index among parent's children, detaching it
// from any previous parent first.
func (t *Tree) InsertAt(parent Handle, index int, child Handle) error {
	if !t.Valid(parent) || !t.Valid(child) {
		return ErrInvalidHandle
	}
	if child == t.root {
		return ErrCycle
	}
	for a := parent; a != NoHandle; a = t.slots[a].parent {
		if a == child {
			return ErrCycle
		}
	}
	if old := t.slots[child].parent; old != NoHandle {
		if old == parent {
			if i := t.IndexOf(child); i < index {
				index--
			}
		}
		t.detach(child)
	}
	kids := t.slots[parent].children
	if index < 0 || index > len(kids) {
		return ErrIndexOutOfRange
	}
	kids = append(kids, NoHandle)
	copy(kids[index+1:], kids[index:])
	kids[index] = child
	t.slots[parent].children = kids
	t.slots[child].parent = parent
	return nil
}

// Remove detaches h and its subtree from the tree. The handles stay valid
// but are no longer attached.
func (t *Tree) Remove(h Handle) error {
	if !t.Valid(h) {
		return ErrInvalidHandle
	}
	if h == t.root {
		return ErrRootRemoval
	}
	t.detach(h)
	return nil
}

func (t *Tree) detach(h Handle) {
	p := t.slots[h].parent
	if p == NoHandle {
		return
	}
	kids := t.slots[p].children
	for i, c := range kids {
		if c == h {
			t.slots[p].children = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	t.slots[h].parent = NoHandle
}

// Node returns a pointer to h's attributes for reading or in-place update,
// or nil for an invalid handle.
func (t *Tree) Node(h Handle) *Node {
	if !t.Valid(h) {
		return nil
	}
	return &t.slots[h].node
}

// Kind returns h's kind, or KindRoot for an invalid handle.
func (t *Tree) Kind(h Handle) Kind {
	if !t.Valid(h) {
		return KindRoot
	}
	return t.slots[h].node.Kind
}

// Parent returns h's parent, or NoHandle when detached or invalid.
func (t *Tree) Parent(h Handle) Handle {
	if !t.Valid(h) {
		return NoHandle
	}
	return t.slots[h].parent
}

// Children returns a copy of h's children.
func (t *Tree) Children(h Handle) []Handle {
	if !t.Valid(h) {
		return nil
	}
	return append([]Handle(nil), t.slots[h].children...)
}

// ChildCount returns the number of children of h.
func (t *Tree) ChildCount(h Handle) int {
	if !t.Valid(h) {
		return 0
	}
	return len(t.slots[h].children)
}

// Child returns the i-th child of h or NoHandle.
func (t *Tree) Child(h Handle, i int) Handle {
	if !t.Valid(h) || i < 0 || i >= len(t.slots[h].children) {
		return NoHandle
	}
	return t.slots[h].children[i]
}

// IndexOf returns h's position among its siblings, or -1 when detached.
func (t *Tree) IndexOf(h Handle) int {
	p := t.Parent(h)
	if p == NoHandle {
		return -1
	}
	for i, c := range t.slots[p].children {
		if c == h {
			return i
		}
	}
	return -1
}

// Attached reports whether h is reachable from the root.
func (t *Tree) Attached(h Handle) bool {
	if !t.Valid(h) {
		return false
	}
	for a := h; ; a = t.slots[a].parent {
		if a == t.root {
			return true
		}
		if t.slots[a].parent == NoHandle {
			return false
		}
	}
}

// Ancestor returns the closest node of kind k at or above h.
func (t *Tree) Ancestor(h Handle, k Kind) Handle {
	for a := h; t.Valid(a); a = t.slots[a].parent {
		if t.slots[a].node.Kind == k {
			return a
		}
	}
	return NoHandle
}

// Walk visits h and its descendants depth-first in document order. If fn
// returns false the node's children are skipped.
func (t *Tree) Walk(h Handle, fn func(h Handle, depth int) bool) {
	t.walk(h, 0, fn)
}

func (t *Tree) walk(h Handle, depth int, fn func(Handle, int) bool) {
	if !t.Valid(h) || !fn(h, depth) {
		return
	}
	for _, c := range t.slots[h].children {
		t.walk(c, depth+1, fn)
	}
}

// TextContent concatenates the text of h's descendants. Images contribute
// their alt text.
func (t *Tree) TextContent(h Handle) string {
	var b strings.Builder
	t.Walk(h, func(n Handle, _ int) bool {
		node := &t.slots[n].node
		switch node.Kind {
		case KindText, KindInlineCode, KindCodeBlock:
			b.WriteString(node.Text)
		case KindImage:
			b.WriteString(node.Alt)
		case KindLineBreak:
			b.WriteByte('\n')
		}
		return true
	})
	return b.String()
}

// End returns the deepest last position in the tree: the last text-bearing
// leaf and its length, or the root and its child count when the tree has no
// text.
func (t *Tree) End() (Handle, int) {
	h := t.root
	for {
		n := t.ChildCount(h)
		if n == 0 {
			break
		}
		h = t.slots[h].children[n-1]
	}
	if h != t.root && t.slots[h].node.Kind.IsLeaf() {
		return h, len([]rune(t.slots[h].node.Text))
	}
	return h, t.ChildCount(h)
}

// Blocks returns the root's children.
func (t *Tree) Blocks() []Handle {
	return t.Children(t.root)
}

// Find returns the first attached node, in document order, for which match
// reports true.
func (t *Tree) Find(match func(h Handle, n *Node) bool) Handle {
	found := NoHandle
	t.Walk(t.root, func(h Handle, _ int) bool {
		if found != NoHandle {
			return false
		}
		if match(h, &t.slots[h].node) {
			found = h
			return false
		}
		return true
	})
	return found
}

// Dump writes an indented outline of the tree for debugging.
func (t *Tree) Dump(w io.Writer) error {
	var err error
	t.Walk(t.root, func(h Handle, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), t.describe(h))
		return true
	})
	return err
}

func (t *Tree) describe(h Handle) string {
	n := &t.slots[h].node
	var b strings.Builder
	b.WriteString(n.Kind.String())
	attr := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, " %s=%q", k, v)
		}
	}
	switch n.Kind {
	case KindHeading:
		fmt.Fprintf(&b, " level=%d", n.Level)
		attr("anchor", n.Anchor)
	case KindList:
		if n.Ordered {
			fmt.Fprintf(&b, " ordered start=%d", n.Start)
		}
	case KindCodeBlock:
		attr("lang", n.Lang)
	case KindTableCell:
		if n.Header {
			b.WriteString(" header")
		}
		attr("align", n.Align.String())
	case KindLink:
		attr("href", n.Href)
		attr("target", n.Target)
	case KindImage:
		attr("src", n.Href)
		attr("alt", n.Alt)
	case KindNoteRef:
		attr("note", n.NoteID)
	}
	attr("id", n.BlockID)
	if n.Kind.IsLeaf() && n.Text != "" {
		fmt.Fprintf(&b, " %q", n.Text)
	}
	return b.String()
}
