package host

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// Buffer is an in-memory Widget.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []int
	sel        Selection
	scroll     int

	listenMu  sync.Mutex
	listeners map[int]ChangeFunc
	nextID    int
}

var _ Widget = (*Buffer)(nil)

// NewBuffer creates a Buffer holding text.
func NewBuffer(text string) *Buffer {
	b := &Buffer{listeners: make(map[int]ChangeFunc)}
	b.setLocked(text)
	return b
}

// Text returns the full text.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// SetText replaces the text, clamps the selection and scroll position and
// notifies listeners.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	b.setLocked(text)
	b.sel = Selection{Anchor: b.clampLocked(b.sel.Anchor), Head: b.clampLocked(b.sel.Head)}
	b.scroll = min(b.scroll, len(b.lineStarts)-1)
	b.mu.Unlock()
	b.notify(text)
}

func (b *Buffer) setLocked(text string) {
	b.text = text
	b.lineStarts = b.lineStarts[:0]
	b.lineStarts = append(b.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
}

// LineCount returns the number of lines. Empty text has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lineStarts)
}

// Line returns line i without its newline.
func (b *Buffer) Line(i int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.lineStarts) {
		return ""
	}
	return b.lineLocked(i)
}

func (b *Buffer) lineLocked(i int) string {
	start := b.lineStarts[i]
	end := len(b.text)
	if i+1 < len(b.lineStarts) {
		end = b.lineStarts[i+1] - 1
	}
	return b.text[start:end]
}

// Offset returns the byte offset of p, clamped to the text.
func (b *Buffer) Offset(p Position) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offsetLocked(p)
}

func (b *Buffer) offsetLocked(p Position) int {
	p = b.clampLocked(p)
	line := b.lineLocked(p.Line)
	off := b.lineStarts[p.Line]
	for i := 0; i < p.Col; i++ {
		_, size := utf8.DecodeRuneInString(line)
		line = line[size:]
		off += size
	}
	return off
}

// PositionOf returns the position of byte offset off, clamped to the text.
func (b *Buffer) PositionOf(off int) Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.positionLocked(off)
}

func (b *Buffer) positionLocked(off int) Position {
	off = min(max(off, 0), len(b.text))
	line := 0
	for line+1 < len(b.lineStarts) && b.lineStarts[line+1] <= off {
		line++
	}
	return Position{Line: line, Col: utf8.RuneCountInString(b.text[b.lineStarts[line]:off])}
}

func (b *Buffer) clampLocked(p Position) Position {
	p.Line = min(max(p.Line, 0), len(b.lineStarts)-1)
	p.Col = min(max(p.Col, 0), utf8.RuneCountInString(b.lineLocked(p.Line)))
	return p
}

// Selection returns the current selection.
func (b *Buffer) Selection() Selection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sel
}

// SetSelection sets the selection, clamped to the text.
func (b *Buffer) SetSelection(sel Selection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sel = Selection{Anchor: b.clampLocked(sel.Anchor), Head: b.clampLocked(sel.Head)}
}

// Scroll returns the first visible line.
func (b *Buffer) Scroll() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.scroll
}

// SetScroll sets the first visible line, clamped to the text.
func (b *Buffer) SetScroll(line int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scroll = min(max(line, 0), len(b.lineStarts)-1)
}

// OnChange registers fn for content changes.
func (b *Buffer) OnChange(fn ChangeFunc) func() {
	b.listenMu.Lock()
	defer b.listenMu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.listenMu.Lock()
		defer b.listenMu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *Buffer) notify(text string) {
	b.listenMu.Lock()
	fns := make([]ChangeFunc, 0, len(b.listeners))
	for id := 0; id < b.nextID; id++ {
		if fn, ok := b.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.listenMu.Unlock()
	for _, fn := range fns {
		fn(text)
	}
}

// ApplyEdit replaces the text between start and end, places the caret
// after the inserted text and notifies listeners.
func (b *Buffer) ApplyEdit(start, end Position, text string) Position {
	b.mu.Lock()
	if end.Less(start) {
		start, end = end, start
	}
	from, to := b.offsetLocked(start), b.offsetLocked(end)
	var sb strings.Builder
	sb.Grow(len(b.text) - (to - from) + len(text))
	sb.WriteString(b.text[:from])
	sb.WriteString(text)
	sb.WriteString(b.text[to:])
	b.setLocked(sb.String())
	caret := b.positionLocked(from + len(text))
	b.sel = Selection{Anchor: caret, Head: caret}
	b.scroll = min(b.scroll, len(b.lineStarts)-1)
	updated := b.text
	b.mu.Unlock()
	b.notify(updated)
	return caret
}
