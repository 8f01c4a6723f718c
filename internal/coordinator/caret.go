package coordinator

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/twinmark/internal/host"
	"github.com/dshills/twinmark/internal/selection"
)

// textRange converts a host selection in text to byte offsets.
func textRange(text string, sel host.Selection) selection.TextRange {
	return selection.TextRange{Anchor: offsetOf(text, sel.Anchor), Head: offsetOf(text, sel.Head)}
}

// hostSelection converts byte offsets in text to a host selection.
func hostSelection(text string, r selection.TextRange) host.Selection {
	return host.Selection{Anchor: positionOf(text, r.Anchor), Head: positionOf(text, r.Head)}
}

func offsetOf(text string, p host.Position) int {
	off := 0
	for line := 0; line < p.Line; line++ {
		i := strings.IndexByte(text[off:], '\n')
		if i < 0 {
			return len(text)
		}
		off += i + 1
	}
	for col := 0; col < p.Col && off < len(text) && text[off] != '\n'; col++ {
		_, size := utf8.DecodeRuneInString(text[off:])
		off += size
	}
	return off
}

func positionOf(text string, off int) host.Position {
	off = min(max(off, 0), len(text))
	before := text[:off]
	line := strings.Count(before, "\n")
	start := strings.LastIndexByte(before, '\n') + 1
	return host.Position{Line: line, Col: utf8.RuneCountInString(before[start:])}
}
