package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/dshills/twinmark/internal/richtree"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level  int
	Anchor string
	Text   string
}

// Outline returns the headings of t in document order.
func Outline(t *richtree.Tree) []Heading {
	var out []Heading
	t.Walk(t.Root(), func(h richtree.Handle, _ int) bool {
		n := t.Node(h)
		if n.Kind != richtree.KindHeading {
			return true
		}
		out = append(out, Heading{Level: n.Level, Anchor: n.Anchor, Text: t.TextContent(h)})
		return false
	})
	return out
}

var headingParser = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)).Parser()

// HeadingLines returns the zero-based source line of every heading in src,
// in the order Outline reports them for the rendered tree.
func HeadingLines(src string) []int {
	source := []byte(src)
	doc := headingParser.Parse(text.NewReader(source))

	var lines []int
	last := 0
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		if segs := n.Lines(); segs.Len() > 0 {
			last = bytes.Count(source[:segs.At(0).Start], []byte("\n"))
		}
		lines = append(lines, last)
		return ast.WalkSkipChildren, nil
	})
	return lines
}
