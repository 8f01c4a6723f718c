package render

import (
	"github.com/dshills/twinmark/internal/archive"
	"github.com/dshills/twinmark/internal/logging"
)

// Default scheme policy.
var (
	DefaultNewWindowSchemes = []string{"http", "https", "mailto", "tel"}
	DefaultUnsafeSchemes    = []string{"javascript", "vbscript", "data", "file"}
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithArchive sets the note archive joined onto note references.
func WithArchive(a archive.Reader) Option {
	return func(r *Renderer) {
		if a != nil {
			r.archive = a
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithPlaceholder sets the anchor used for headings without slug text.
func WithPlaceholder(p string) Option {
	return func(r *Renderer) {
		if p != "" {
			r.placeholder = p
		}
	}
}

// WithNewWindowSchemes sets the link schemes that open in a new window.
func WithNewWindowSchemes(schemes ...string) Option {
	return func(r *Renderer) {
		r.newWindow = schemeSet(schemes)
	}
}

// WithUnsafeSchemes sets the link and image schemes that are stripped.
func WithUnsafeSchemes(schemes ...string) Option {
	return func(r *Renderer) {
		r.unsafe = schemeSet(schemes)
	}
}

// WithConverter replaces the markup-to-HTML stage.
func WithConverter(c Converter) Option {
	return func(r *Renderer) {
		if c != nil {
			r.md = c
		}
	}
}

// WithSanitizer replaces the sanitization stage.
func WithSanitizer(s Sanitizer) Option {
	return func(r *Renderer) {
		if s != nil {
			r.sanitizer = s
		}
	}
}
