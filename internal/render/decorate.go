package render

import (
	"strings"

	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/richtree"
)

var blockPrefix = map[richtree.Kind]string{
	richtree.KindParagraph:     "p",
	richtree.KindList:          "list",
	richtree.KindBlockquote:    "quote",
	richtree.KindCodeBlock:     "code",
	richtree.KindTable:         "table",
	richtree.KindThematicBreak: "hr",
}

const blockIDWords = 5

// decorate assigns block ids to top-level blocks, hints to links and
// tooltips to note references.
func (r *Renderer) decorate(t *richtree.Tree, j joined) {
	ids := markup.NewSlugger(r.placeholder)
	for anchor := range j.headings {
		ids.Reserve(anchor)
	}
	for _, b := range t.Blocks() {
		n := t.Node(b)
		if n.Kind == richtree.KindHeading {
			n.BlockID = n.Anchor
			continue
		}
		prefix, ok := blockPrefix[n.Kind]
		if !ok {
			prefix = n.Kind.String()
		}
		n.BlockID = ids.SlugWithPrefix(prefix, firstWords(t.TextContent(b), blockIDWords))
	}

	t.Walk(t.Root(), func(h richtree.Handle, _ int) bool {
		n := t.Node(h)
		switch n.Kind {
		case richtree.KindLink:
			n.Hint = n.Href
			if anchor, ok := strings.CutPrefix(n.Href, "#"); ok {
				if text, found := j.headings[anchor]; found {
					n.Hint = text
				}
			}
		case richtree.KindNoteRef:
			if e, ok := j.notes[n.NoteID]; ok {
				n.Tooltip = &richtree.Tooltip{Title: e.Title, Body: e.Body}
			}
		}
		return true
	})
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
