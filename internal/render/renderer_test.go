package render

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"github.com/dshills/twinmark/internal/archive"
	"github.com/dshills/twinmark/internal/richtree"
)

func findAll(t *richtree.Tree, k richtree.Kind) []richtree.Handle {
	var out []richtree.Handle
	t.Walk(t.Root(), func(h richtree.Handle, _ int) bool {
		if t.Kind(h) == k {
			out = append(out, h)
		}
		return true
	})
	return out
}

func mustRender(t *testing.T, r *Renderer, text string) *richtree.Tree {
	t.Helper()
	tree, err := r.Render(text)
	if err != nil {
		t.Fatalf("Render(%q) error: %v", text, err)
	}
	return tree
}

func TestRenderStrong(t *testing.T) {
	tree := mustRender(t, New(), "**text**")

	strong := findAll(tree, richtree.KindStrong)
	if len(strong) != 1 {
		t.Fatalf("strong nodes = %d, want 1", len(strong))
	}
	if got := tree.TextContent(strong[0]); got != "text" {
		t.Errorf("strong text = %q, want %q", got, "text")
	}
	if p := tree.Parent(strong[0]); tree.Kind(p) != richtree.KindParagraph {
		t.Errorf("strong parent = %v, want paragraph", tree.Kind(p))
	}
}

func TestRenderDuplicateHeadings(t *testing.T) {
	tree := mustRender(t, New(), "# Intro\n\ntext\n\n# Intro")

	headings := findAll(tree, richtree.KindHeading)
	if len(headings) != 2 {
		t.Fatalf("headings = %d, want 2", len(headings))
	}
	want := []string{"intro", "intro-1"}
	for i, h := range headings {
		n := tree.Node(h)
		if n.Anchor != want[i] {
			t.Errorf("heading %d anchor = %q, want %q", i, n.Anchor, want[i])
		}
		if n.BlockID != n.Anchor {
			t.Errorf("heading %d block id = %q, want anchor", i, n.BlockID)
		}
		if n.Level != 1 {
			t.Errorf("heading %d level = %d, want 1", i, n.Level)
		}
	}
}

func TestRenderHeadingPlaceholder(t *testing.T) {
	tree := mustRender(t, New(WithPlaceholder("part")), "# !!!\n\n## ???")

	headings := findAll(tree, richtree.KindHeading)
	if len(headings) != 2 {
		t.Fatalf("headings = %d, want 2", len(headings))
	}
	if got := tree.Node(headings[0]).Anchor; got != "part" {
		t.Errorf("anchor = %q, want part", got)
	}
	if got := tree.Node(headings[1]).Anchor; got != "part-1" {
		t.Errorf("anchor = %q, want part-1", got)
	}
}

func TestRenderBlockIDs(t *testing.T) {
	tree := mustRender(t, New(), "# Intro\n\nHello there world\n\n---\n\nHello there world")

	var got []string
	for _, b := range tree.Blocks() {
		got = append(got, tree.Node(b).BlockID)
	}
	want := []string{"intro", "p-hello-there-world", "hr", "p-hello-there-world-1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("block ids = %v, want %v", got, want)
	}
}

func TestRenderStripsUnsafeLinks(t *testing.T) {
	tree := mustRender(t, New(), "[click](javascript:alert(1))")

	if links := findAll(tree, richtree.KindLink); len(links) != 0 {
		t.Fatalf("links = %d, want 0", len(links))
	}
	if got := tree.TextContent(tree.Root()); got != "click" {
		t.Errorf("text = %q, want %q", got, "click")
	}
}

func TestRenderLinkTargets(t *testing.T) {
	tree := mustRender(t, New(), "# Intro\n\n[site](https://example.com) and [back](#intro) and [doc](./a.md)")

	links := findAll(tree, richtree.KindLink)
	if len(links) != 3 {
		t.Fatalf("links = %d, want 3", len(links))
	}

	site := tree.Node(links[0])
	if site.Target != "_blank" || site.Rel != "noopener noreferrer" {
		t.Errorf("external link target/rel = %q/%q", site.Target, site.Rel)
	}
	if site.Hint != "https://example.com" {
		t.Errorf("external hint = %q", site.Hint)
	}

	back := tree.Node(links[1])
	if back.Target != "" || back.Rel != "" {
		t.Errorf("anchor link target/rel = %q/%q, want empty", back.Target, back.Rel)
	}
	if back.Hint != "Intro" {
		t.Errorf("anchor hint = %q, want Intro", back.Hint)
	}

	if doc := tree.Node(links[2]); doc.Target != "" {
		t.Errorf("relative link target = %q, want empty", doc.Target)
	}
}

func TestRenderNewWindowSchemesOption(t *testing.T) {
	tree := mustRender(t, New(WithNewWindowSchemes("mailto")), "[a](https://example.com) [b](mailto:x@example.com)")

	links := findAll(tree, richtree.KindLink)
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if got := tree.Node(links[0]).Target; got != "" {
		t.Errorf("https target = %q, want empty", got)
	}
	if got := tree.Node(links[1]).Target; got != "_blank" {
		t.Errorf("mailto target = %q, want _blank", got)
	}
}

func TestRenderNoteTooltip(t *testing.T) {
	notes := archive.NewMemory(archive.Entry{ID: "n1", Title: "Source", Body: "Page 4"})
	r := New(WithArchive(notes))

	tree := mustRender(t, r, `see <span data-note-id="n1">ref</span> and <span data-note-id="n2">gone</span>`)

	refs := findAll(tree, richtree.KindNoteRef)
	if len(refs) != 2 {
		t.Fatalf("note refs = %d, want 2", len(refs))
	}

	hit := tree.Node(refs[0])
	if hit.NoteID != "n1" {
		t.Errorf("note id = %q, want n1", hit.NoteID)
	}
	if hit.Tooltip == nil || hit.Tooltip.Title != "Source" || hit.Tooltip.Body != "Page 4" {
		t.Errorf("tooltip = %+v", hit.Tooltip)
	}
	if got := tree.TextContent(refs[0]); got != "ref" {
		t.Errorf("note label = %q, want ref", got)
	}

	miss := tree.Node(refs[1])
	if miss.NoteID != "n2" {
		t.Errorf("note id = %q, want n2", miss.NoteID)
	}
	if miss.Tooltip != nil {
		t.Errorf("missing note tooltip = %+v, want nil", miss.Tooltip)
	}
}

func TestRenderTablePadding(t *testing.T) {
	src := "<table><tr><th>a</th><th>b</th></tr><tr><td>1</td></tr></table>"
	tree := mustRender(t, New(), src)

	tables := findAll(tree, richtree.KindTable)
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	rows := tree.Children(tables[0])
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for i, row := range rows {
		if n := tree.ChildCount(row); n != 2 {
			t.Errorf("row %d cells = %d, want 2", i, n)
		}
	}
	if !tree.Node(tree.Child(rows[0], 0)).Header {
		t.Error("first row cell should be a header cell")
	}
	if tree.Node(tree.Child(rows[1], 1)).Header {
		t.Error("padded data cell should not be a header cell")
	}
}

func TestRenderTableAlignment(t *testing.T) {
	tree := mustRender(t, New(), "| a | b |\n| :-- | --: |\n| 1 | 2 |")

	cells := findAll(tree, richtree.KindTableCell)
	if len(cells) != 4 {
		t.Fatalf("cells = %d, want 4", len(cells))
	}
	if got := tree.Node(cells[0]).Align; got != richtree.AlignLeft {
		t.Errorf("align = %v, want left", got)
	}
	if got := tree.Node(cells[3]).Align; got != richtree.AlignRight {
		t.Errorf("align = %v, want right", got)
	}
}

func TestRenderCodeAndLists(t *testing.T) {
	tree := mustRender(t, New(), "```go\nx := 1\n```\n\n- a\n- b\n\ntext\n\n3. c")

	code := findAll(tree, richtree.KindCodeBlock)
	if len(code) != 1 {
		t.Fatalf("code blocks = %d, want 1", len(code))
	}
	if n := tree.Node(code[0]); n.Lang != "go" || n.Text != "x := 1\n" {
		t.Errorf("code block = %q/%q", n.Lang, n.Text)
	}

	lists := findAll(tree, richtree.KindList)
	if len(lists) != 2 {
		t.Fatalf("lists = %d, want 2", len(lists))
	}
	bullets := tree.Node(lists[0])
	if bullets.Ordered || bullets.Loose {
		t.Errorf("bullet list ordered=%v loose=%v", bullets.Ordered, bullets.Loose)
	}
	if n := tree.ChildCount(lists[0]); n != 2 {
		t.Errorf("items = %d, want 2", n)
	}
	if got := tree.TextContent(tree.Child(lists[0], 0)); got != "a" {
		t.Errorf("item text = %q, want a", got)
	}
	if ordered := tree.Node(lists[1]); !ordered.Ordered || ordered.Start != 3 {
		t.Errorf("ordered list = %v start %d", ordered.Ordered, ordered.Start)
	}
}

func TestRenderLineBreak(t *testing.T) {
	tree := mustRender(t, New(), "one\\\ntwo")

	p := tree.Blocks()[0]
	kinds := make([]richtree.Kind, 0, tree.ChildCount(p))
	for _, c := range tree.Children(p) {
		kinds = append(kinds, tree.Kind(c))
	}
	want := []richtree.Kind{richtree.KindText, richtree.KindLineBreak, richtree.KindText}
	if len(kinds) != len(want) {
		t.Fatalf("children = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("children = %v, want %v", kinds, want)
		}
	}
	if got := tree.Node(tree.Child(p, 2)).Text; got != "two" {
		t.Errorf("text after break = %q, want two", got)
	}
}

type flakyConverter struct {
	md    goldmark.Markdown
	fail  bool
	panic bool
}

func (f *flakyConverter) Convert(src []byte, w io.Writer, opts ...parser.ParseOption) error {
	if f.panic {
		panic("converter exploded")
	}
	if f.fail {
		return errors.New("converter failed")
	}
	return f.md.Convert(src, w, opts...)
}

func TestRenderKeepsPreviousTreeOnFailure(t *testing.T) {
	conv := &flakyConverter{md: goldmark.New()}
	r := New(WithConverter(conv))

	first := mustRender(t, r, "first")

	conv.fail = true
	got, err := r.Render("second")
	if !errors.Is(err, ErrStale) {
		t.Fatalf("error = %v, want ErrStale", err)
	}
	if got != first {
		t.Error("failed render should return the previous tree")
	}

	conv.fail = false
	conv.panic = true
	got, err = r.Render("third")
	if !errors.Is(err, ErrStale) {
		t.Fatalf("error = %v, want ErrStale", err)
	}
	if got != first {
		t.Error("panicking render should return the previous tree")
	}
	if r.Passes() != 3 {
		t.Errorf("passes = %d, want 3", r.Passes())
	}
}

func TestRenderFailureWithoutPreviousTree(t *testing.T) {
	r := New(WithConverter(&flakyConverter{fail: true}))

	got, err := r.Render("x")
	if !errors.Is(err, ErrStale) {
		t.Fatalf("error = %v, want ErrStale", err)
	}
	if got == nil || len(got.Blocks()) != 0 {
		t.Error("want an empty tree")
	}
}

func TestHTML(t *testing.T) {
	out, err := New().HTML("# Intro\n\n[x](https://example.com)")
	if err != nil {
		t.Fatalf("HTML error: %v", err)
	}
	for _, want := range []string{`id="intro"`, `target="_blank"`, `rel="noopener noreferrer"`} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML missing %s:\n%s", want, out)
		}
	}
}

func TestSchemeOf(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://x", "https"},
		{"JavaScript:alert(1)", "javascript"},
		{"./a:b", ""},
		{"#x", ""},
		{"a/b:c", ""},
		{"", ""},
		{":x", ""},
		{"mailto:a@b", "mailto"},
	}
	for _, tt := range tests {
		if got := schemeOf(tt.href); got != tt.want {
			t.Errorf("schemeOf(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
