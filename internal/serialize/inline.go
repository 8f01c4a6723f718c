package serialize

import (
	"html"
	"strings"

	"github.com/dshills/twinmark/internal/richtree"
)

// context carries where an inline run is written.
type context struct {
	heading bool
	cell    bool
	label   bool
}

// Inline returns the markup for the inline children of h.
func Inline(t *richtree.Tree, h richtree.Handle) string {
	return inlines(t, h, context{})
}

func inlines(t *richtree.Tree, h richtree.Handle, ctx context) string {
	return inlineSeq(t, t.Children(h), ctx)
}

// delimiters maps the wrapper kinds to their markup delimiter.
var delimiters = map[richtree.Kind]string{
	richtree.KindEmphasis:      "*",
	richtree.KindStrong:        "**",
	richtree.KindStrikethrough: "~~",
}

// inlineSeq writes a run of siblings. Adjacent wrappers of the same kind
// share one pair of delimiters; written separately their delimiters would
// run together and parse differently.
func inlineSeq(t *richtree.Tree, hs []richtree.Handle, ctx context) string {
	for len(hs) > 0 && t.Kind(hs[len(hs)-1]) == richtree.KindLineBreak {
		hs = hs[:len(hs)-1]
	}
	var b strings.Builder
	for i := 0; i < len(hs); {
		kind := t.Kind(hs[i])
		delim, ok := delimiters[kind]
		if !ok {
			b.WriteString(inline(t, hs[i], ctx))
			i++
			continue
		}
		var inner strings.Builder
		for ; i < len(hs) && t.Kind(hs[i]) == kind; i++ {
			inner.WriteString(inlines(t, hs[i], ctx))
		}
		b.WriteString(wrap(inner.String(), delim))
	}
	return b.String()
}

func inline(t *richtree.Tree, h richtree.Handle, ctx context) string {
	n := t.Node(h)
	switch n.Kind {
	case richtree.KindText:
		return escapeText(n.Text, ctx)
	case richtree.KindEmphasis, richtree.KindStrong, richtree.KindStrikethrough:
		return wrap(inlines(t, h, ctx), delimiters[n.Kind])
	case richtree.KindInlineCode:
		return codeSpan(n.Text)
	case richtree.KindLink:
		return link(t, h, ctx)
	case richtree.KindImage:
		return "![" + escapeText(n.Alt, context{label: true}) + "](" + destination(n.Href, n.Title) + ")"
	case richtree.KindNoteRef:
		return `<span data-note-id="` + html.EscapeString(n.NoteID) + `">` + inlines(t, h, ctx) + "</span>"
	case richtree.KindLineBreak:
		if ctx.cell || ctx.heading {
			return "<br>"
		}
		return "\\\n"
	}
	if n.Kind.IsBlock() {
		return inlines(t, h, ctx)
	}
	return ""
}

// wrap surrounds inner with delim, keeping edge whitespace outside the
// delimiters. Empty content produces no delimiters.
func wrap(inner, delim string) string {
	core := strings.TrimSpace(inner)
	if core == "" {
		return inner
	}
	start := strings.Index(inner, core)
	return inner[:start] + delim + core + delim + inner[start+len(core):]
}

func codeSpan(text string) string {
	if text == "" {
		return ""
	}
	ticks := strings.Repeat("`", longestRun(text, '`')+1)
	pad := ""
	if strings.HasPrefix(text, "`") || strings.HasSuffix(text, "`") ||
		(strings.HasPrefix(text, " ") && strings.HasSuffix(text, " ") && strings.TrimSpace(text) != "") {
		pad = " "
	}
	return ticks + pad + text + pad + ticks
}

func link(t *richtree.Tree, h richtree.Handle, ctx context) string {
	n := t.Node(h)
	ctx.label = true
	label := inlines(t, h, ctx)
	if label == "" && n.Href == "" {
		return ""
	}
	return "[" + label + "](" + destination(n.Href, n.Title) + ")"
}

func destination(href, title string) string {
	if strings.ContainsAny(href, " ()<>") {
		href = "<" + strings.NewReplacer("<", `\<`, ">", `\>`).Replace(href) + ">"
	}
	if title == "" {
		return href
	}
	return href + ` "` + strings.ReplaceAll(title, `"`, `\"`) + `"`
}
