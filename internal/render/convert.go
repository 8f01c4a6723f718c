package render

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/twinmark/internal/richtree"
	"github.com/dshills/twinmark/internal/table"
)

// converter builds a richtree.Tree from a parsed HTML fragment.
type converter struct {
	t *richtree.Tree
}

func build(nodes []*html.Node) *richtree.Tree {
	c := &converter{t: richtree.New()}
	c.blocks(c.t.Root(), nodes)
	return c.t
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Pre, atom.Table,
		atom.Hr, atom.Div, atom.Section, atom.Article, atom.Details, atom.Dl:
		return true
	}
	return false
}

func isBlank(nodes []*html.Node) bool {
	for _, n := range nodes {
		if n.Type == html.ElementNode || (n.Type == html.TextNode && strings.TrimSpace(n.Data) != "") {
			return false
		}
	}
	return true
}

// blocks converts a sequence of sibling nodes into block children of
// parent. Runs of inline content outside any block become paragraphs.
func (c *converter) blocks(parent richtree.Handle, nodes []*html.Node) {
	var pending []*html.Node
	flush := func() {
		if !isBlank(pending) {
			p := c.t.Append(parent, richtree.Node{Kind: richtree.KindParagraph})
			c.inlineRun(p, pending)
		}
		pending = nil
	}
	for _, n := range nodes {
		if !isBlockElement(n) {
			pending = append(pending, n)
			continue
		}
		flush()
		c.block(parent, n)
	}
	flush()
}

func (c *converter) block(parent richtree.Handle, n *html.Node) {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		h := c.t.Append(parent, richtree.Node{
			Kind:   richtree.KindHeading,
			Level:  int(n.Data[1] - '0'),
			Anchor: getAttr(n, "id"),
		})
		c.inlineRun(h, children(n))
	case atom.P:
		p := c.t.Append(parent, richtree.Node{Kind: richtree.KindParagraph})
		c.inlineRun(p, children(n))
	case atom.Ul, atom.Ol:
		c.list(parent, n)
	case atom.Li:
		c.listItem(parent, n)
	case atom.Blockquote:
		q := c.t.Append(parent, richtree.Node{Kind: richtree.KindBlockquote})
		c.blocks(q, children(n))
	case atom.Pre:
		c.t.Append(parent, richtree.Node{
			Kind: richtree.KindCodeBlock,
			Text: htmlText(n),
			Lang: codeLang(n),
		})
	case atom.Table:
		c.tableBlock(parent, n)
	case atom.Hr:
		c.t.Append(parent, richtree.Node{Kind: richtree.KindThematicBreak})
	default:
		c.blocks(parent, children(n))
	}
}

func codeLang(pre *html.Node) string {
	for ch := pre.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.DataAtom == atom.Code {
			for _, class := range strings.Fields(getAttr(ch, "class")) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					return lang
				}
			}
		}
	}
	return ""
}

func (c *converter) list(parent richtree.Handle, n *html.Node) {
	node := richtree.Node{Kind: richtree.KindList, Ordered: n.DataAtom == atom.Ol, Start: 1}
	if node.Ordered {
		if s, err := strconv.Atoi(getAttr(n, "start")); err == nil {
			node.Start = s
		}
	}
	l := c.t.Append(parent, node)
	for _, ch := range children(n) {
		if ch.Type == html.ElementNode && ch.DataAtom == atom.Li {
			if c.listItem(l, ch) {
				c.t.Node(l).Loose = true
			}
		}
	}
}

// listItem converts an <li>. Tight items hold their inline content
// directly; block children follow it. It reports whether the item held a
// paragraph, which marks the list loose.
func (c *converter) listItem(parent richtree.Handle, n *html.Node) bool {
	item := c.t.Append(parent, richtree.Node{Kind: richtree.KindListItem})
	loose := false
	var pending []*html.Node
	flush := func() {
		if !isBlank(pending) {
			c.inlineRun(item, pending)
		}
		pending = nil
	}
	for _, ch := range children(n) {
		if !isBlockElement(ch) {
			pending = append(pending, ch)
			continue
		}
		flush()
		if ch.DataAtom == atom.P {
			loose = true
		}
		c.block(item, ch)
	}
	flush()
	return loose
}

func (c *converter) tableBlock(parent richtree.Handle, n *html.Node) {
	tbl := c.t.Append(parent, richtree.Node{Kind: richtree.KindTable})
	var rows []*html.Node
	var collect func(*html.Node)
	collect = func(x *html.Node) {
		for ch := x.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type != html.ElementNode {
				continue
			}
			switch ch.DataAtom {
			case atom.Tr:
				rows = append(rows, ch)
			case atom.Thead, atom.Tbody, atom.Tfoot:
				collect(ch)
			}
		}
	}
	collect(n)

	for _, tr := range rows {
		row := c.t.Append(tbl, richtree.Node{Kind: richtree.KindTableRow})
		for _, td := range children(tr) {
			if td.Type != html.ElementNode || (td.DataAtom != atom.Th && td.DataAtom != atom.Td) {
				continue
			}
			cell := c.t.Append(row, richtree.Node{
				Kind:   richtree.KindTableCell,
				Header: td.DataAtom == atom.Th,
				Align:  richtree.ParseAlign(getAttr(td, "align")),
			})
			c.inlineRun(cell, children(td))
		}
	}
	table.PadTree(c.t, tbl)
}

// inlineRun converts nodes into inline children of parent and trims the
// whitespace at the run's edges.
func (c *converter) inlineRun(parent richtree.Handle, nodes []*html.Node) {
	before := c.t.ChildCount(parent)
	for _, n := range nodes {
		c.inline(parent, n)
	}
	c.trimEdges(parent, before)
}

func (c *converter) trimEdges(parent richtree.Handle, from int) {
	if c.t.ChildCount(parent) <= from {
		return
	}
	first := c.t.Child(parent, from)
	if n := c.t.Node(first); n.Kind == richtree.KindText {
		n.Text = strings.TrimLeft(n.Text, " \t\n")
		if n.Text == "" {
			_ = c.t.Remove(first)
		}
	}
	if c.t.ChildCount(parent) <= from {
		return
	}
	last := c.t.Child(parent, c.t.ChildCount(parent)-1)
	if n := c.t.Node(last); n.Kind == richtree.KindText {
		n.Text = strings.TrimRight(n.Text, " \t\n")
		if n.Text == "" {
			_ = c.t.Remove(last)
		}
	}
}

func (c *converter) inline(parent richtree.Handle, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		c.text(parent, n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	wrap := func(k richtree.Kind) {
		h := c.t.Append(parent, richtree.Node{Kind: k})
		for _, ch := range children(n) {
			c.inline(h, ch)
		}
	}

	switch n.DataAtom {
	case atom.Em, atom.I:
		wrap(richtree.KindEmphasis)
	case atom.Strong, atom.B:
		wrap(richtree.KindStrong)
	case atom.Del, atom.S, atom.Strike:
		wrap(richtree.KindStrikethrough)
	case atom.Code:
		c.t.Append(parent, richtree.Node{Kind: richtree.KindInlineCode, Text: htmlText(n)})
	case atom.A:
		if !hasAttr(n, "href") {
			c.unwrap(parent, n)
			return
		}
		h := c.t.Append(parent, richtree.Node{
			Kind:   richtree.KindLink,
			Href:   getAttr(n, "href"),
			Title:  getAttr(n, "title"),
			Target: getAttr(n, "target"),
			Rel:    getAttr(n, "rel"),
		})
		for _, ch := range children(n) {
			c.inline(h, ch)
		}
	case atom.Img:
		c.t.Append(parent, richtree.Node{
			Kind:  richtree.KindImage,
			Href:  getAttr(n, "src"),
			Alt:   getAttr(n, "alt"),
			Title: getAttr(n, "title"),
		})
	case atom.Br:
		c.t.Append(parent, richtree.Node{Kind: richtree.KindLineBreak})
	case atom.Span:
		id := getAttr(n, "data-note-id")
		if id == "" {
			c.unwrap(parent, n)
			return
		}
		h := c.t.Append(parent, richtree.Node{Kind: richtree.KindNoteRef, NoteID: id})
		for _, ch := range children(n) {
			c.inline(h, ch)
		}
	default:
		c.unwrap(parent, n)
	}
}

func (c *converter) unwrap(parent richtree.Handle, n *html.Node) {
	for _, ch := range children(n) {
		c.inline(parent, ch)
	}
}

// text appends s, merging with a preceding text sibling. The newline the
// HTML renderer emits after <br> is dropped.
func (c *converter) text(parent richtree.Handle, s string) {
	if n := c.t.ChildCount(parent); n > 0 {
		prev := c.t.Node(c.t.Child(parent, n-1))
		switch prev.Kind {
		case richtree.KindText:
			prev.Text += s
			return
		case richtree.KindLineBreak:
			s = strings.TrimPrefix(s, "\n")
		}
	}
	if s == "" {
		return
	}
	c.t.Append(parent, richtree.Node{Kind: richtree.KindText, Text: s})
}
