package selection

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// TextRange is a selection in markup text. Anchor is where the selection
// started; Head is where typing occurs. TextRange is an immutable value.
type TextRange struct {
	Anchor int
	Head   int
}

// Caret returns an empty TextRange at offset.
func Caret(offset int) TextRange {
	return TextRange{Anchor: offset, Head: offset}
}

// IsEmpty reports whether the range has no extent.
func (r TextRange) IsEmpty() bool {
	return r.Anchor == r.Head
}

// Start returns the lower bound.
func (r TextRange) Start() int {
	return min(r.Anchor, r.Head)
}

// End returns the upper bound.
func (r TextRange) End() int {
	return max(r.Anchor, r.Head)
}

// Len returns the length in bytes.
func (r TextRange) Len() int {
	return r.End() - r.Start()
}

// IsForward reports whether head is at or after anchor.
func (r TextRange) IsForward() bool {
	return r.Head >= r.Anchor
}

// Collapse collapses the range to its head.
func (r TextRange) Collapse() TextRange {
	return Caret(r.Head)
}

// MoveBy shifts both ends by delta bytes.
func (r TextRange) MoveBy(delta int) TextRange {
	return TextRange{Anchor: r.Anchor + delta, Head: r.Head + delta}
}

// Clamp returns the range with both ends inside text and on grapheme
// cluster boundaries. Offsets inside a cluster move back to its start.
func (r TextRange) Clamp(text string) TextRange {
	return TextRange{Anchor: snapBytes(text, r.Anchor), Head: snapBytes(text, r.Head)}
}

// Rebase carries r from old to updated text. Ends before the first
// difference stay put, ends after the last difference move with the text
// that follows them, and ends inside the changed region move to its end.
func (r TextRange) Rebase(old, updated string) TextRange {
	if old == updated {
		return r.Clamp(updated)
	}
	prefix := commonPrefix(old, updated)
	suffix := commonSuffix(old[prefix:], updated[prefix:])
	delta := len(updated) - len(old)
	carry := func(off int) int {
		switch {
		case off <= prefix:
			return off
		case off >= len(old)-suffix:
			return Caret(off).MoveBy(delta).Head
		default:
			return len(updated) - suffix
		}
	}
	return TextRange{Anchor: carry(r.Anchor), Head: carry(r.Head)}.Clamp(updated)
}

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}

func (r TextRange) String() string {
	if r.IsEmpty() {
		return fmt.Sprintf("caret(%d)", r.Head)
	}
	return fmt.Sprintf("text[%d:%d]", r.Anchor, r.Head)
}

// snapBytes returns the largest grapheme boundary of s at or before off.
func snapBytes(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off >= len(s) {
		return len(s)
	}
	g := uniseg.NewGraphemes(s)
	last := 0
	for g.Next() {
		from, to := g.Positions()
		if to > off {
			return from
		}
		last = to
	}
	return last
}

// snapRunes is snapBytes for rune offsets.
func snapRunes(s string, off int) int {
	if off <= 0 {
		return 0
	}
	pos := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		n := len(g.Runes())
		if pos+n > off {
			return pos
		}
		pos += n
	}
	return pos
}
