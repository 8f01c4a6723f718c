package render

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/twinmark/internal/archive"
	"github.com/dshills/twinmark/internal/markup"
)

var (
	noteIDPattern    = regexp.MustCompile(`^[\w.:-]+$`)
	cellAlignPattern = regexp.MustCompile(`^(left|center|right)$`)
	codeLangPattern  = regexp.MustCompile(`^language-[\w+#.-]+$`)
)

// NewPolicy returns the sanitization policy: user-generated-content rules
// plus note-reference spans, table alignment and code languages.
func NewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(true)
	p.AllowElements("del", "s", "span")
	p.AllowAttrs("data-note-id").Matching(noteIDPattern).OnElements("span")
	p.AllowAttrs("align").Matching(cellAlignPattern).OnElements("th", "td")
	p.AllowAttrs("class").Matching(codeLangPattern).OnElements("code")
	p.AllowAttrs("start").Matching(bluemonday.Integer).OnElements("ol")
	return p
}

// joined holds what the attribute-rewrite pass resolved.
type joined struct {
	headings map[string]string
	notes    map[string]archive.Entry
}

// rewrite is the attribute-rewrite hook run over the sanitized fragment.
// It assigns heading ids in document order, applies the link policy and
// titles note references from the archive.
func (r *Renderer) rewrite(nodes []*html.Node) joined {
	slugs := markup.NewSlugger(r.placeholder)
	j := joined{
		headings: make(map[string]string),
		notes:    make(map[string]archive.Entry),
	}
	for _, root := range nodes {
		walkHTML(root, func(n *html.Node) {
			if n.Type != html.ElementNode {
				return
			}
			switch n.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				text := strings.TrimSpace(htmlText(n))
				id := slugs.Slug(text)
				setAttr(n, "id", id)
				j.headings[id] = text
			case atom.A:
				r.applyLinkPolicy(n)
			case atom.Img:
				if r.unsafe[schemeOf(getAttr(n, "src"))] {
					removeAttr(n, "src")
				}
			case atom.Span:
				id := getAttr(n, "data-note-id")
				if id == "" {
					return
				}
				removeAttr(n, "title")
				e, ok := r.archive.Get(id)
				if !ok {
					return
				}
				j.notes[id] = e
				setAttr(n, "title", noteTitle(e))
			}
		})
	}
	return j
}

func (r *Renderer) applyLinkPolicy(n *html.Node) {
	removeAttr(n, "target")
	removeAttr(n, "rel")
	href := getAttr(n, "href")
	scheme := schemeOf(href)
	if r.unsafe[scheme] {
		removeAttr(n, "href")
		return
	}
	if r.newWindow[scheme] {
		setAttr(n, "target", "_blank")
		setAttr(n, "rel", "noopener noreferrer")
	}
}

func noteTitle(e archive.Entry) string {
	if e.Body == "" {
		return e.Title
	}
	return e.Title + "\n" + e.Body
}

// schemeOf returns the lowercased URL scheme of href, or "" for relative
// and same-document references.
func schemeOf(href string) string {
	href = strings.TrimLeftFunc(href, func(r rune) bool { return r <= ' ' })
	for i := 0; i < len(href); i++ {
		switch c := href[i]; {
		case c == ':':
			if i == 0 {
				return ""
			}
			return strings.ToLower(href[:i])
		case c == '/' || c == '?' || c == '#':
			return ""
		}
	}
	return ""
}

func schemeSet(schemes []string) map[string]bool {
	m := make(map[string]bool, len(schemes))
	for _, s := range schemes {
		m[strings.ToLower(strings.TrimSuffix(s, ":"))] = true
	}
	return m
}

func walkHTML(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, fn)
	}
}

func htmlText(n *html.Node) string {
	var b strings.Builder
	walkHTML(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
