package markup

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultPlaceholder is the anchor used when a heading slugifies to nothing.
const DefaultPlaceholder = "section"

// Slugify lowercases s, strips diacritics, drops everything but letters,
// digits and separators, and joins words with single hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}
	return b.String()
}

// Slugger assigns unique slugs in the order they are requested.
// A Slugger is not safe for concurrent use.
type Slugger struct {
	placeholder string
	used        map[string]bool
	next        map[string]int
}

// NewSlugger creates a Slugger. An empty placeholder selects
// DefaultPlaceholder.
func NewSlugger(placeholder string) *Slugger {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Slugger{
		placeholder: placeholder,
		used:        make(map[string]bool),
		next:        make(map[string]int),
	}
}

// Slug returns the slug for text, suffixed with -1, -2, ... when the base
// slug was already handed out.
func (s *Slugger) Slug(text string) string {
	return s.claim(Slugify(text))
}

// SlugWithPrefix is like Slug but namespaces the base under prefix.
func (s *Slugger) SlugWithPrefix(prefix, text string) string {
	base := Slugify(text)
	if base == "" {
		return s.claim(prefix)
	}
	return s.claim(prefix + "-" + base)
}

func (s *Slugger) claim(base string) string {
	if base == "" {
		base = s.placeholder
	}
	if !s.used[base] {
		s.used[base] = true
		return base
	}
	for n := s.next[base] + 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !s.used[candidate] {
			s.next[base] = n
			s.used[candidate] = true
			return candidate
		}
	}
}

// Reserve marks slug as taken without handing it out.
func (s *Slugger) Reserve(slug string) {
	if slug != "" {
		s.used[slug] = true
	}
}

// Reset forgets every slug handed out so far.
func (s *Slugger) Reset() {
	clear(s.used)
	clear(s.next)
}
