package serialize

import (
	"fmt"
	"strings"

	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/richtree"
	"github.com/dshills/twinmark/internal/table"
)

// maxListNesting is the deepest list level written with indentation.
// Deeper lists are written flush with their parent item.
const maxListNesting = 1

// Serialize returns the canonical markup for t. Blocks are separated by a
// blank line and the result is normalized.
func Serialize(t *richtree.Tree) string {
	return markup.Normalize(joinBlocks(t, t.Blocks(), 0))
}

// Block returns the markup for a single block without normalization.
func Block(t *richtree.Tree, h richtree.Handle) string {
	return block(t, h, 0)
}

func joinBlocks(t *richtree.Tree, blocks []richtree.Handle, depth int) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := block(t, b, depth); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func block(t *richtree.Tree, h richtree.Handle, depth int) string {
	n := t.Node(h)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case richtree.KindHeading:
		return heading(t, h)
	case richtree.KindParagraph:
		return escapeLineStarts(inlines(t, h, context{}))
	case richtree.KindList:
		return list(t, h, depth)
	case richtree.KindListItem:
		return listItem(t, h, "- ", depth)
	case richtree.KindBlockquote:
		return blockquote(t, h, depth)
	case richtree.KindCodeBlock:
		return codeBlock(n)
	case richtree.KindTable:
		return tableBlock(t, h)
	case richtree.KindThematicBreak:
		return "---"
	}
	if n.Kind.IsInline() {
		return escapeLineStarts(inline(t, h, context{}))
	}
	return joinBlocks(t, t.Children(h), depth)
}

func heading(t *richtree.Tree, h richtree.Handle) string {
	n := t.Node(h)
	level := min(max(n.Level, 1), 6)
	text := inlines(t, h, context{heading: true})
	if strings.HasSuffix(text, "#") {
		text = text[:len(text)-1] + `\#`
	}
	prefix := strings.Repeat("#", level)
	if text == "" {
		return prefix
	}
	return prefix + " " + text
}

func list(t *richtree.Tree, h richtree.Handle, depth int) string {
	n := t.Node(h)
	sep := "\n"
	if n.Loose {
		sep = "\n\n"
	}
	items := make([]string, 0, t.ChildCount(h))
	num := 0
	for _, item := range t.Children(h) {
		marker := "- "
		if n.Ordered {
			num++
			marker = fmt.Sprintf("%d. ", num)
		}
		items = append(items, listItem(t, item, marker, depth))
	}
	return strings.Join(items, sep)
}

// listItem writes one item. Inline children form the item's first line;
// block children follow, indented under the marker.
func listItem(t *richtree.Tree, h richtree.Handle, marker string, depth int) string {
	loose := t.Node(t.Parent(h)) != nil && t.Node(t.Parent(h)).Loose

	var parts []string
	var run []richtree.Handle
	flush := func() {
		if len(run) > 0 {
			parts = append(parts, escapeLineStarts(inlineSeq(t, run, context{})))
			run = nil
		}
	}
	var flat []string
	for _, c := range t.Children(h) {
		if t.Kind(c).IsInline() {
			run = append(run, c)
			continue
		}
		flush()
		switch {
		case t.Kind(c) == richtree.KindList && depth >= maxListNesting:
			flat = append(flat, list(t, c, depth))
		case t.Kind(c) == richtree.KindList:
			parts = append(parts, list(t, c, depth+1))
		default:
			if s := block(t, c, depth+1); s != "" {
				parts = append(parts, s)
			}
		}
	}
	flush()

	sep := "\n"
	if loose {
		sep = "\n\n"
	}
	body := indent(strings.Join(parts, sep), strings.Repeat(" ", len(marker)))
	out := marker + body
	if body == "" {
		out = strings.TrimRight(marker, " ")
	}
	for _, f := range flat {
		out += "\n" + f
	}
	return out
}

// indent prefixes every line but the first with pad. Blank lines stay
// empty.
func indent(s, pad string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func blockquote(t *richtree.Tree, h richtree.Handle, depth int) string {
	body := joinBlocks(t, t.Children(h), depth)
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + l
		}
	}
	return strings.Join(lines, "\n")
}

func codeBlock(n *richtree.Node) string {
	text := strings.TrimRight(n.Text, "\n")
	fence := strings.Repeat("`", max(3, longestRun(text, '`')+1))
	if text == "" {
		return fence + n.Lang + "\n" + fence
	}
	return fence + n.Lang + "\n" + text + "\n" + fence
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}

// Grid converts a table node to its markup grid. Cells are serialized as
// inline markup.
func Grid(t *richtree.Tree, tbl richtree.Handle) *table.Grid {
	g := &table.Grid{}
	for i, row := range t.Children(tbl) {
		var cells []string
		for _, cell := range t.Children(row) {
			cells = append(cells, inlines(t, cell, context{cell: true}))
			if i == 0 {
				g.Aligns = append(g.Aligns, t.Node(cell).Align)
			}
		}
		if i == 0 {
			g.Header = cells
		} else {
			g.Rows = append(g.Rows, cells)
		}
	}
	g.Pad()
	return g
}

func tableBlock(t *richtree.Tree, h richtree.Handle) string {
	if t.ChildCount(h) == 0 {
		return ""
	}
	return table.Format(Grid(t, h))
}
