package coordinator

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/twinmark/internal/host"
	"github.com/dshills/twinmark/internal/logging"
	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/render"
	"github.com/dshills/twinmark/internal/richtree"
	"github.com/dshills/twinmark/internal/selection"
	"github.com/dshills/twinmark/internal/serialize"
	"github.com/dshills/twinmark/internal/table"
)

// Direction is the sync direction currently being applied.
type Direction uint8

const (
	Idle Direction = iota
	ApplyingFromMarkup
	ApplyingFromRich
)

func (d Direction) String() string {
	switch d {
	case ApplyingFromMarkup:
		return "applying-from-markup"
	case ApplyingFromRich:
		return "applying-from-rich"
	default:
		return "idle"
	}
}

// Mode selects the representation the user is editing.
type Mode uint8

const (
	ModeMarkup Mode = iota
	ModeRich
)

func (m Mode) String() string {
	if m == ModeRich {
		return "rich"
	}
	return "markup"
}

// ParseMode parses "markup" or "rich".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "markup", "":
		return ModeMarkup, nil
	case "rich":
		return ModeRich, nil
	}
	return ModeMarkup, fmt.Errorf("unknown mode %q", s)
}

// Stats counts coordinator activity.
type Stats struct {
	Renders    int
	Skipped    int
	Stale      int
	Suppressed int
	Serialized int
}

// Coordinator owns one document's markup text and rich-content tree.
type Coordinator struct {
	id       string
	host     host.Widget
	renderer *render.Renderer
	sched    Scheduler
	tracker  *selection.Tracker
	log      *logging.Logger

	mu           sync.Mutex
	mode         Mode
	dir          Direction
	pending      string
	hasPending   bool
	lastRendered string
	rendered     bool
	tree         *richtree.Tree
	sel          selection.Range
	// placed is set while sel was put on the current tree explicitly;
	// otherwise rich table edits act on the cell under the markup caret.
	placed bool
	stats        Stats
	closed       bool

	onRender  []func(*richtree.Tree)
	onMessage []func(string)

	cancelChange func()
}

// New creates a Coordinator for the host widget, subscribes to its change
// notifications and schedules the first render.
func New(w host.Widget, opts ...Option) *Coordinator {
	c := &Coordinator{
		id:   uuid.NewString(),
		host: w,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("coordinator").WithField("doc", c.id)
	if c.renderer == nil {
		c.renderer = render.New(render.WithLogger(c.log))
	}
	if c.sched == nil {
		c.sched = NewManualScheduler()
	}
	c.tracker = selection.NewTracker(selection.WithLogger(c.log))

	c.sched.Start(c.frame)
	c.cancelChange = w.OnChange(c.MarkupChanged)
	c.MarkupChanged(w.Text())
	return c
}

// ID returns the coordinator's unique identifier.
func (c *Coordinator) ID() string {
	return c.id
}

// OnRender registers fn to receive every newly rendered tree.
func (c *Coordinator) OnRender(fn func(*richtree.Tree)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRender = append(c.onRender, fn)
}

// OnMessage registers fn to receive user-facing messages.
func (c *Coordinator) OnMessage(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = append(c.onMessage, fn)
}

// Mode returns the authoritative representation.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the authoritative representation.
func (c *Coordinator) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// Direction returns the direction currently being applied.
func (c *Coordinator) Direction() Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dir
}

// Stats returns a snapshot of the activity counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Tree returns the current rich-content tree, or nil before the first
// render.
func (c *Coordinator) Tree() *richtree.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// Text returns the markup text held by the host widget.
func (c *Coordinator) Text() string {
	return c.host.Text()
}

// SetText replaces the markup text held by the host widget. The change
// reaches the coordinator through the widget's change notification.
func (c *Coordinator) SetText(text string) {
	c.host.SetText(text)
}

// Cursor returns the markup caret.
func (c *Coordinator) Cursor() host.Position {
	return c.host.Selection().Head
}

// MarkupChanged records text as the latest markup and requests a frame.
// Notifications caused by the coordinator's own rich-to-markup update are
// dropped.
func (c *Coordinator) MarkupChanged(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.dir == ApplyingFromRich {
		c.stats.Suppressed++
		c.mu.Unlock()
		c.log.Debug("suppressed markup echo")
		return
	}
	c.pending = text
	c.hasPending = true
	c.mu.Unlock()
	c.sched.Request()
}

// Flush renders any pending markup immediately.
func (c *Coordinator) Flush() {
	c.frame()
}

// frame renders the pending markup, if any. Identical text is not rendered
// twice in a row.
func (c *Coordinator) frame() {
	c.mu.Lock()
	if c.closed || !c.hasPending {
		c.mu.Unlock()
		return
	}
	text := c.pending
	c.hasPending = false
	if c.rendered && text == c.lastRendered {
		c.stats.Skipped++
		c.mu.Unlock()
		c.log.Debug("render skipped, text unchanged")
		return
	}

	c.dir = ApplyingFromMarkup
	prev := c.tree
	if prev != nil {
		c.tracker.Capture(c.sel)
	}
	tree, err := c.renderer.Render(markup.Normalize(text))
	if err != nil {
		c.stats.Stale++
	} else {
		c.lastRendered = text
		c.rendered = true
		c.stats.Renders++
	}
	c.tree = tree
	c.sel = c.tracker.Restore(tree)
	c.placed = c.placed && tree == prev
	listeners := slices.Clone(c.onRender)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(tree)
	}

	c.mu.Lock()
	c.dir = Idle
	c.mu.Unlock()
}

// RichEdited propagates an in-place edit of the rich-content tree to the
// markup text. It returns ErrBusy when called while a render is being
// delivered; that edit is an echo of the render and is ignored. It also
// returns ErrBusy while a markup edit is waiting to be rendered, since the
// tree no longer reflects the text; the markup edit wins.
//
// The markup selection is carried across the replacement.
func (c *Coordinator) RichEdited() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.tree == nil {
		c.mu.Unlock()
		return ErrNoTree
	}
	if c.dir != Idle {
		c.stats.Suppressed++
		c.mu.Unlock()
		c.log.Debug("suppressed rich-content echo")
		return ErrBusy
	}
	if c.hasPending {
		c.mu.Unlock()
		c.log.Debug("rich edit refused, markup edit pending")
		return ErrBusy
	}
	c.dir = ApplyingFromRich
	text := serialize.Serialize(c.tree)
	c.lastRendered = text
	c.rendered = true
	c.stats.Serialized++
	c.mu.Unlock()

	old := c.host.Text()
	sel := textRange(old, c.host.Selection()).Rebase(old, text)
	c.host.SetText(text)
	c.host.SetSelection(hostSelection(text, sel))

	c.mu.Lock()
	c.dir = Idle
	c.mu.Unlock()
	return nil
}

// RichSelection returns the selection in the rich-content tree.
func (c *Coordinator) RichSelection() selection.Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// SetRichSelection sets the selection in the rich-content tree. Rich table
// edits act on it until the next render or SetCursor.
func (c *Coordinator) SetRichSelection(r selection.Range) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = r
	c.placed = true
}

// SetCursor places the markup caret at line and col. Rich table edits
// then act on the cell under the caret.
func (c *Coordinator) SetCursor(line, col int) {
	p := host.Position{Line: line, Col: col}
	c.host.SetSelection(host.Selection{Anchor: p, Head: p})
	c.mu.Lock()
	c.placed = false
	c.mu.Unlock()
}

// Table applies a structural table operation at the cursor of the
// authoritative representation. A refused operation leaves the document
// unchanged, is reported to message listeners and returned as a
// table.Failure.
func (c *Coordinator) Table(op table.Op) error {
	var err error
	if c.Mode() == ModeRich {
		err = c.tableRich(op)
	} else {
		err = c.tableMarkup(op)
	}
	if err != nil {
		c.log.Info("table edit refused", "op", op.String(), "reason", err.Error())
		c.message(table.Message(err))
	}
	return err
}

func (c *Coordinator) tableMarkup(op table.Op) error {
	head := c.host.Selection().Head
	res, err := table.ApplyMarkup(c.host.Text(), table.Cursor{Line: head.Line, Col: head.Col}, op)
	if err != nil {
		return err
	}
	c.host.SetText(res.Text)
	c.SetCursor(res.Cursor.Line, res.Cursor.Col)
	return nil
}

func (c *Coordinator) tableRich(op table.Op) error {
	tree, target, err := c.richTarget()
	if err != nil {
		return err
	}

	active, err := table.ApplyTree(tree, target, op)
	if err != nil {
		return err
	}

	next := selection.EndOf(tree)
	if active != richtree.NoHandle {
		next = selection.CaretAt(tree, selection.Point{Node: active})
	}
	c.mu.Lock()
	c.tracker.Capture(next)
	c.sel = c.tracker.Restore(tree)
	c.placed = true
	c.mu.Unlock()
	return c.RichEdited()
}

// richTarget returns the tree and node a rich table edit acts on: the
// explicit rich selection when there is one, otherwise the cell under the
// markup caret. Pending markup is rendered first so the edit applies to the
// latest text.
func (c *Coordinator) richTarget() (*richtree.Tree, richtree.Handle, error) {
	c.mu.Lock()
	tree, sel, pending := c.tree, c.sel, c.hasPending
	placed := c.placed && sel.Restorable(tree)
	c.mu.Unlock()

	if placed && !pending {
		return tree, sel.Head.Node, nil
	}

	var addr table.Address
	var err error
	if placed {
		addr, err = table.AddressIn(tree, sel.Head.Node)
	} else {
		head := c.host.Selection().Head
		addr, err = table.AddressOf(c.host.Text(), table.Cursor{Line: head.Line, Col: head.Col})
	}
	if err != nil {
		return nil, richtree.NoHandle, err
	}

	if pending {
		c.frame()
	}
	tree = c.Tree()
	if tree == nil {
		return nil, richtree.NoHandle, table.ErrTableNotFound
	}
	h, err := table.CellAt(tree, addr)
	if err != nil {
		return nil, richtree.NoHandle, err
	}
	return tree, h, nil
}

func (c *Coordinator) message(msg string) {
	c.mu.Lock()
	listeners := slices.Clone(c.onMessage)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(msg)
	}
}

// Outline returns the headings of the current tree.
func (c *Coordinator) Outline() []render.Heading {
	t := c.Tree()
	if t == nil {
		return nil
	}
	return render.Outline(t)
}

// AnchorForLine returns the anchor of the last heading at or above the
// given markup line, or "" when there is none.
func (c *Coordinator) AnchorForLine(line int) string {
	outline := c.Outline()
	lines := render.HeadingLines(c.host.Text())
	n := min(len(outline), len(lines))
	i := sort.Search(n, func(i int) bool { return lines[i] > line })
	if i == 0 {
		return ""
	}
	return outline[i-1].Anchor
}

// Close stops the scheduler and unsubscribes from the host widget.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	c.sched.Stop()
	if c.cancelChange != nil {
		c.cancelChange()
	}
	return nil
}
