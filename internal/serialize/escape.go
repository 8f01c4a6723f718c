package serialize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	entityPattern    = regexp.MustCompile(`^&(#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)
	orderedMarker    = regexp.MustCompile(`^(\s*[0-9]{1,9})([.)])(\s|$)`)
	setextUnderline  = regexp.MustCompile(`^\s*=+\s*$`)
	escapablePunct   = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	blockLeadMarkers = "#>"
)

// escapeText escapes literal text so it reads back as the same text.
// Asterisks, backticks, tildes and '<' always get a backslash; underscores
// only when they could open or close emphasis.
func escapeText(s string, ctx context) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		switch r {
		case '*', '`', '~', '<':
			b.WriteByte('\\')
		case '_':
			if !intraword(rs, i) {
				b.WriteByte('\\')
			}
		case '\\':
			if i+1 < len(rs) && strings.ContainsRune(escapablePunct, rs[i+1]) {
				b.WriteByte('\\')
			}
		case '&':
			if entityPattern.MatchString(string(rs[i:])) {
				b.WriteByte('\\')
			}
		case '[', ']':
			if ctx.label {
				b.WriteByte('\\')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func intraword(rs []rune, i int) bool {
	if i == 0 || i == len(rs)-1 {
		return false
	}
	return isWordRune(rs[i-1]) && isWordRune(rs[i+1])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// escapeLineStarts escapes characters at the start of each line that
// would otherwise begin a block construct.
func escapeLineStarts(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = escapeLineStart(l)
	}
	return strings.Join(lines, "\n")
}

func escapeLineStart(l string) string {
	trimmed := strings.TrimLeft(l, " ")
	lead := l[:len(l)-len(trimmed)]
	if trimmed == "" {
		return l
	}
	switch {
	case strings.ContainsRune(blockLeadMarkers, rune(trimmed[0])):
		return lead + `\` + trimmed
	case (trimmed[0] == '-' || trimmed[0] == '+') && (len(trimmed) == 1 || trimmed[1] == ' '):
		return lead + `\` + trimmed
	case setextUnderline.MatchString(trimmed):
		return lead + `\` + trimmed
	}
	if m := orderedMarker.FindStringSubmatchIndex(trimmed); m != nil {
		return lead + trimmed[:m[3]] + `\` + trimmed[m[3]:]
	}
	return l
}
