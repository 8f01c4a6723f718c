package markup

import (
	"regexp"
	"strings"
)

// artifactLines are trimmed line contents left behind when a caret sat
// between emphasis delimiters. Longer runs are thematic breaks or fences and
// are kept.
var artifactLines = map[string]bool{
	"**": true,
	"__": true,
	"~~": true,
	"`":  true,
	"``": true,
}

var reversedLink = regexp.MustCompile(`\(([^()\[\]\n]+)\)\[([^()\[\]\s]+)\]`)

// Normalize returns the canonical form of raw markup text.
//
// The rules run in order: line endings become "\n", emphasis-artifact lines
// are emptied, reversed "(label)[href]" links are rewritten to
// "[label](href)" when href looks like a URL, and runs of three or more
// newlines collapse to two.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := NormalizeLineEndings(raw)
	lines := strings.Split(text, "\n")
	code := FencedLines(lines)

	for i, line := range lines {
		if code[i] {
			continue
		}
		if artifactLines[strings.TrimSpace(line)] {
			lines[i] = ""
			continue
		}
		lines[i] = rewriteReversedLinks(line)
	}

	lines = collapseBlankLines(lines, code)
	return strings.Join(lines, "\n")
}

// NormalizeLineEndings converts CRLF and lone CR to LF.
func NormalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// FencedLines marks the lines that belong to fenced code blocks, fence
// delimiters included. Fences inside list items are indented relative to
// the item's content. An unterminated fence runs to the end of the text or
// of its list item.
func FencedLines(lines []string) []bool {
	code := make([]bool, len(lines))
	var open fence
	// items holds the content columns of the enclosing list items.
	var items []int
	for i, line := range lines {
		blank := strings.TrimSpace(line) == ""
		indent := leadingSpaces(line)
		if open.char != 0 {
			if blank || indent >= open.base {
				code[i] = true
				if f, ok := parseFence(line, open.base); ok && f.char == open.char && f.length >= open.length && f.info == "" {
					open = fence{}
				}
				continue
			}
			open = fence{}
		}
		if blank {
			continue
		}
		for len(items) > 0 && indent < items[len(items)-1] {
			items = items[:len(items)-1]
		}
		base := 0
		if len(items) > 0 {
			base = items[len(items)-1]
		}
		if f, ok := parseFence(line, base); ok {
			open = f
			code[i] = true
			continue
		}
		if col, ok := listItemContent(line, base); ok {
			items = append(items, col)
			if f, ok := parseFence(strings.Repeat(" ", col)+line[col:], col); ok {
				open = f
				code[i] = true
			}
		}
	}
	return code
}

type fence struct {
	char   byte
	length int
	info   string
	// base is the content column of the enclosing list item.
	base int
}

func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// listItemContent reports whether line opens a list item no more than three
// columns past base and returns the column its content starts at.
func listItemContent(line string, base int) (int, bool) {
	indent := leadingSpaces(line)
	if indent < base || indent-base > 3 {
		return 0, false
	}
	i := indent
	switch {
	case i < len(line) && strings.IndexByte("-*+", line[i]) >= 0:
		i++
	default:
		digits := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' && digits < 9 {
			i++
			digits++
		}
		if digits == 0 || i >= len(line) || (line[i] != '.' && line[i] != ')') {
			return 0, false
		}
		i++
	}
	spaces := leadingSpaces(line[i:])
	if spaces == 0 || i+spaces >= len(line) {
		return 0, false
	}
	if spaces > 4 {
		spaces = 1
	}
	return i + spaces, true
}

// parseFence recognizes a code fence line: up to three spaces of
// indentation past base, then three or more backticks or tildes.
func parseFence(line string, base int) (fence, bool) {
	indent := leadingSpaces(line)
	if indent < base || indent-base > 3 || indent >= len(line) {
		return fence{}, false
	}
	c := line[indent]
	if c != '`' && c != '~' {
		return fence{}, false
	}
	n := 0
	for indent+n < len(line) && line[indent+n] == c {
		n++
	}
	if n < 3 {
		return fence{}, false
	}
	info := strings.TrimSpace(line[indent+n:])
	if c == '`' && strings.ContainsRune(info, '`') {
		return fence{}, false
	}
	return fence{char: c, length: n, info: info, base: base}, true
}

// rewriteReversedLinks repeatedly rewrites "(label)[href]" into
// "[label](href)" until the line is stable. Each rewrite moves a bracket
// pair ahead of the parenthesis pair it followed, so the count of
// parentheses preceding brackets drops and the loop ends.
func rewriteReversedLinks(line string) string {
	if !strings.Contains(line, ")[") {
		return line
	}
	for {
		next, changed := rewriteReversedLinksOnce(line)
		if !changed {
			return line
		}
		line = next
	}
}

func rewriteReversedLinksOnce(line string) (string, bool) {
	matches := reversedLink.FindAllStringSubmatchIndex(line, -1)
	if matches == nil {
		return line, false
	}
	var b strings.Builder
	last := 0
	changed := false
	for _, m := range matches {
		start, end := m[0], m[1]
		label := line[m[2]:m[3]]
		href := line[m[4]:m[5]]
		if !looksLikeURL(href) || !rewritable(line, start) {
			continue
		}
		b.WriteString(line[last:start])
		b.WriteString("[" + label + "](" + href + ")")
		last = end
		changed = true
	}
	if !changed {
		return line, false
	}
	b.WriteString(line[last:])
	return b.String(), true
}

// rewritable reports whether the parenthesis at pos starts a reversed link
// rather than the destination of an existing link, an escaped parenthesis or
// text inside an inline code span.
func rewritable(line string, pos int) bool {
	if pos > 0 {
		switch line[pos-1] {
		case ']', '\\', '!':
			return false
		}
	}
	return strings.Count(line[:pos], "`")%2 == 0
}

func looksLikeURL(href string) bool {
	return strings.ContainsAny(href, "/.#:")
}

// collapseBlankLines limits runs of empty lines outside code so that no
// more than two consecutive newlines remain.
func collapseBlankLines(lines []string, code []bool) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		if code[i] || lines[i] != "" {
			out = append(out, lines[i])
			i++
			continue
		}
		j := i
		for j < len(lines) && !code[j] && lines[j] == "" {
			j++
		}
		// n empty lines between two lines are n+1 newlines; at either edge
		// of the text they are n newlines.
		limit := 1
		atStart, atEnd := i == 0, j == len(lines)
		switch {
		case atStart && atEnd:
			limit = 3
		case atStart || atEnd:
			limit = 2
		}
		n := j - i
		if n > limit {
			n = limit
		}
		for k := 0; k < n; k++ {
			out = append(out, "")
		}
		i = j
	}
	return out
}
