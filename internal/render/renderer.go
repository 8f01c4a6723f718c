package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/twinmark/internal/archive"
	"github.com/dshills/twinmark/internal/logging"
	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/richtree"
)

// Converter is the markup-to-HTML stage. goldmark.Markdown satisfies it.
type Converter interface {
	Convert(source []byte, w io.Writer, opts ...parser.ParseOption) error
}

// Sanitizer is the HTML sanitization stage. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	SanitizeBytes(b []byte) []byte
}

// Renderer renders canonical markup into rich-content trees.
type Renderer struct {
	md          Converter
	sanitizer   Sanitizer
	archive     archive.Reader
	log         *logging.Logger
	placeholder string
	newWindow   map[string]bool
	unsafe      map[string]bool

	last   *richtree.Tree
	passes int
}

// New creates a Renderer with the default pipeline.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
			),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		sanitizer:   NewPolicy(),
		archive:     archive.Empty,
		log:         logging.Nop(),
		placeholder: markup.DefaultPlaceholder,
		newWindow:   schemeSet(DefaultNewWindowSchemes),
		unsafe:      schemeSet(DefaultUnsafeSchemes),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("render")
	return r
}

// Render renders text. On failure it returns the previous tree (an empty
// tree if there is none) and an error wrapping ErrStale.
func (r *Renderer) Render(text string) (t *richtree.Tree, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			t, err = r.stale(fmt.Errorf("panic: %v", rec))
		}
	}()

	r.passes++
	tree, _, err := r.run(text)
	if err != nil {
		return r.stale(err)
	}
	r.last = tree
	return tree, nil
}

// HTML renders text to the sanitized, decorated HTML fragment. It does not
// touch the retained tree.
func (r *Renderer) HTML(text string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", ErrStale, rec)
		}
	}()

	_, nodes, err := r.run(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStale, err)
	}
	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("rendering html: %w", err)
		}
	}
	return b.String(), nil
}

// Last returns the last successfully rendered tree, or nil.
func (r *Renderer) Last() *richtree.Tree {
	return r.last
}

// Passes returns how many times the pipeline was started by Render.
func (r *Renderer) Passes() int {
	return r.passes
}

func (r *Renderer) stale(cause error) (*richtree.Tree, error) {
	r.log.Warn("render failed, keeping previous tree", "error", cause)
	if r.last == nil {
		r.last = richtree.New()
	}
	return r.last, fmt.Errorf("%w: %w", ErrStale, cause)
}

func (r *Renderer) run(text string) (*richtree.Tree, []*html.Node, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return nil, nil, fmt.Errorf("converting markup: %w", err)
	}
	safe := r.sanitizer.SanitizeBytes(buf.Bytes())

	nodes, err := html.ParseFragment(bytes.NewReader(safe), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("parsing sanitized html: %w", err)
	}

	j := r.rewrite(nodes)
	t := build(nodes)
	r.decorate(t, j)
	return t, nodes, nil
}
