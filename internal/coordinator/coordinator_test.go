package coordinator

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/yuin/goldmark/parser"

	"github.com/dshills/twinmark/internal/host"
	"github.com/dshills/twinmark/internal/render"
	"github.com/dshills/twinmark/internal/richtree"
	"github.com/dshills/twinmark/internal/selection"
	"github.com/dshills/twinmark/internal/table"
)

const sampleTable = "| a | b |\n| --- | --- |\n| 1 | 2 |"

func newManual(t *testing.T, text string, opts ...Option) (*Coordinator, *host.Buffer, *ManualScheduler) {
	t.Helper()
	buf := host.NewBuffer(text)
	sched := NewManualScheduler()
	c := New(buf, append([]Option{WithScheduler(sched)}, opts...)...)
	t.Cleanup(func() { _ = c.Close() })
	return c, buf, sched
}

func firstOfKind(tree *richtree.Tree, k richtree.Kind) richtree.Handle {
	return tree.Find(func(_ richtree.Handle, n *richtree.Node) bool { return n.Kind == k })
}

func TestRenderIsCoalescedAndMemoized(t *testing.T) {
	c, buf, sched := newManual(t, "# A")
	if c.Tree() != nil {
		t.Fatal("render should wait for a frame")
	}
	if !sched.Tick() {
		t.Fatal("first frame should run")
	}
	if got := c.Stats().Renders; got != 1 {
		t.Fatalf("renders = %d, want 1", got)
	}

	buf.SetText("# B")
	buf.SetText("# C")
	sched.Tick()
	if got := c.Stats().Renders; got != 2 {
		t.Errorf("renders = %d, want 2 after coalesced edits", got)
	}
	if outline := c.Outline(); len(outline) != 1 || outline[0].Text != "C" {
		t.Errorf("outline = %+v, want latest text", outline)
	}

	buf.SetText("# C")
	sched.Tick()
	stats := c.Stats()
	if stats.Renders != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want unchanged text skipped", stats)
	}

	if sched.Tick() {
		t.Error("no frame should run without a request")
	}
}

func TestRenderListenerEchoIsSuppressed(t *testing.T) {
	c, _, sched := newManual(t, "text")
	var echoErr error
	var dir Direction
	c.OnRender(func(*richtree.Tree) {
		dir = c.Direction()
		echoErr = c.RichEdited()
	})
	sched.Tick()

	if dir != ApplyingFromMarkup {
		t.Errorf("direction during render = %v", dir)
	}
	if !errors.Is(echoErr, ErrBusy) {
		t.Errorf("echo error = %v, want ErrBusy", echoErr)
	}
	if got := c.Stats().Suppressed; got != 1 {
		t.Errorf("suppressed = %d, want 1", got)
	}
	if c.Direction() != Idle {
		t.Errorf("direction after render = %v, want idle", c.Direction())
	}
}

func TestRichEditUpdatesMarkupWithoutRerender(t *testing.T) {
	c, buf, sched := newManual(t, sampleTable, WithMode(ModeRich))
	sched.Tick()

	tree := c.Tree()
	cell := firstOfKind(tree, richtree.KindTableCell)
	c.SetRichSelection(selection.CaretAt(tree, selection.Point{Node: cell}))

	if err := c.Table(table.RemoveColumn); err != nil {
		t.Fatalf("Table error: %v", err)
	}
	if got, want := buf.Text(), "| b |\n| --- |\n| 2 |"; got != want {
		t.Errorf("markup = %q, want %q", got, want)
	}
	stats := c.Stats()
	if stats.Suppressed != 1 || stats.Serialized != 1 {
		t.Errorf("stats = %+v, want one serialization and one suppressed echo", stats)
	}
	if sched.Tick() {
		t.Error("the rich edit must not schedule a render")
	}
	if c.Tree() != tree {
		t.Error("tree should be edited in place")
	}
	sel := c.RichSelection()
	if !sel.Restorable(tree) || tree.Ancestor(sel.Head.Node, richtree.KindTableCell) == richtree.NoHandle {
		t.Errorf("selection = %v, want a cell of the edited table", sel)
	}
}

func TestRichDeleteTableMovesSelection(t *testing.T) {
	c, buf, sched := newManual(t, "para\n\n"+sampleTable+"\n\nafter", WithMode(ModeRich))
	sched.Tick()

	tree := c.Tree()
	cell := firstOfKind(tree, richtree.KindTableCell)
	c.SetRichSelection(selection.CaretAt(tree, selection.Point{Node: cell}))

	if err := c.Table(table.DeleteTable); err != nil {
		t.Fatalf("Table error: %v", err)
	}
	if got := buf.Text(); got != "para\n\nafter" {
		t.Errorf("markup = %q", got)
	}
	head := c.RichSelection().Head.Node
	if tree.TextContent(head) != "after" {
		t.Errorf("selection on %q, want following paragraph", tree.TextContent(head))
	}
}

func TestRichTableOutsideTable(t *testing.T) {
	c, buf, sched := newManual(t, "just text", WithMode(ModeRich))
	sched.Tick()

	var msgs []string
	c.OnMessage(func(m string) { msgs = append(msgs, m) })

	err := c.Table(table.AddRow)
	if !errors.Is(err, table.ErrNotInTable) {
		t.Fatalf("error = %v, want ErrNotInTable", err)
	}
	if len(msgs) != 1 {
		t.Errorf("messages = %q, want one", msgs)
	}
	if buf.Text() != "just text" {
		t.Errorf("markup changed to %q", buf.Text())
	}
}

func TestMarkupTableEdit(t *testing.T) {
	c, buf, sched := newManual(t, sampleTable)
	sched.Tick()

	c.SetCursor(2, 2)
	if err := c.Table(table.AddRow); err != nil {
		t.Fatalf("Table error: %v", err)
	}
	want := sampleTable + "\n|  |  |"
	if got := buf.Text(); got != want {
		t.Errorf("markup = %q, want %q", got, want)
	}
	if head := buf.Selection().Head; head != (host.Position{Line: 3, Col: 2}) {
		t.Errorf("caret = %+v", head)
	}

	if !sched.Tick() {
		t.Fatal("markup edit should schedule a render")
	}
	tbl := firstOfKind(c.Tree(), richtree.KindTable)
	if n := c.Tree().ChildCount(tbl); n != 3 {
		t.Errorf("rendered rows = %d, want 3", n)
	}
}

func TestMarkupTableFailure(t *testing.T) {
	text := "| a | b |\n| --- | --- |"
	c, buf, _ := newManual(t, text)
	var msgs []string
	c.OnMessage(func(m string) { msgs = append(msgs, m) })

	err := c.Table(table.RemoveRow)
	if !errors.Is(err, table.ErrNoDataRows) {
		t.Fatalf("error = %v, want ErrNoDataRows", err)
	}
	if buf.Text() != text {
		t.Errorf("markup changed to %q", buf.Text())
	}
	if len(msgs) != 1 || msgs[0] != table.Message(table.ErrNoDataRows) {
		t.Errorf("messages = %q", msgs)
	}
}

type failingConverter struct{}

func (failingConverter) Convert([]byte, io.Writer, ...parser.ParseOption) error {
	return errors.New("boom")
}

func TestStaleRender(t *testing.T) {
	r := render.New(render.WithConverter(failingConverter{}))
	c, buf, sched := newManual(t, "text", WithRenderer(r))
	sched.Tick()

	if c.Tree() == nil {
		t.Fatal("a failed render should still leave a tree")
	}
	if got := c.Stats().Stale; got != 1 {
		t.Errorf("stale = %d, want 1", got)
	}

	buf.SetText("text")
	sched.Tick()
	if got := c.Stats().Stale; got != 2 {
		t.Errorf("stale = %d, want the retry to render again", got)
	}
}

func TestAnchorForLine(t *testing.T) {
	c, _, sched := newManual(t, "intro\n\n# One\n\ntext\n\n## Two\n\nmore")
	sched.Tick()

	tests := []struct {
		line int
		want string
	}{
		{0, ""},
		{2, "one"},
		{4, "one"},
		{6, "two"},
		{99, "two"},
	}
	for _, tt := range tests {
		if got := c.AnchorForLine(tt.line); got != tt.want {
			t.Errorf("AnchorForLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestCoordinatorsAreIndependent(t *testing.T) {
	a, _, schedA := newManual(t, "a")
	b, bufB, schedB := newManual(t, sampleTable, WithMode(ModeRich))
	schedA.Tick()
	schedB.Tick()

	tree := b.Tree()
	b.SetRichSelection(selection.CaretAt(tree, selection.Point{Node: firstOfKind(tree, richtree.KindTableCell)}))
	if err := b.Table(table.AddColumn); err != nil {
		t.Fatalf("Table error: %v", err)
	}
	if a.Stats().Suppressed != 0 {
		t.Error("edits in one document must not affect another")
	}
	if bufB.Text() == sampleTable {
		t.Error("rich edit should update the second document")
	}
	if a.ID() == b.ID() {
		t.Error("coordinators should have distinct ids")
	}
}

func TestTickerScheduler(t *testing.T) {
	buf := host.NewBuffer("# Tick")
	c := New(buf, WithScheduler(NewTickerScheduler(time.Millisecond)))
	defer c.Close()

	rendered := make(chan *richtree.Tree, 4)
	c.OnRender(func(tree *richtree.Tree) {
		select {
		case rendered <- tree:
		default:
		}
	})
	buf.SetText("# Tock")

	select {
	case tree := <-rendered:
		if firstOfKind(tree, richtree.KindHeading) == richtree.NoHandle {
			t.Error("rendered tree has no heading")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestClose(t *testing.T) {
	c, buf, sched := newManual(t, "x")
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	buf.SetText("y")
	sched.Tick()
	c.Flush()
	if c.Tree() != nil {
		t.Error("closed coordinator should not render")
	}
	if err := c.RichEdited(); !errors.Is(err, ErrClosed) {
		t.Errorf("RichEdited error = %v, want ErrClosed", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("rich"); err != nil || m != ModeRich {
		t.Errorf("ParseMode(rich) = %v, %v", m, err)
	}
	if _, err := ParseMode("wysiwyg"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}

func TestSetTextAndCursor(t *testing.T) {
	c, buf, sched := newManual(t, "a")
	sched.Tick()

	c.SetText("# Title\n\nbody")
	if buf.Text() != "# Title\n\nbody" {
		t.Fatalf("host text = %q", buf.Text())
	}
	c.SetCursor(2, 3)
	if got := c.Cursor(); got != (host.Position{Line: 2, Col: 3}) {
		t.Errorf("cursor = %+v, want 2:3", got)
	}
	sched.Tick()
	if outline := c.Outline(); len(outline) != 1 || outline[0].Anchor != "title" {
		t.Errorf("outline = %+v", outline)
	}
}

func TestRichTableEditRendersPendingMarkupFirst(t *testing.T) {
	c, buf, sched := newManual(t, sampleTable, WithMode(ModeRich))
	sched.Tick()

	tree := c.Tree()
	c.SetRichSelection(selection.CaretAt(tree, selection.Point{Node: firstOfKind(tree, richtree.KindTableCell)}))

	buf.SetText(sampleTable + "\n\ntyped later")
	if err := c.Table(table.AddColumn); err != nil {
		t.Fatalf("Table error: %v", err)
	}

	want, err := table.ApplyMarkup(sampleTable+"\n\ntyped later", table.Cursor{Line: 0, Col: 2}, table.AddColumn)
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Text(); got != want.Text {
		t.Errorf("markup = %q, want %q", got, want.Text)
	}
	if c.Tree() == tree {
		t.Error("pending markup should have been rendered before the edit")
	}
	sched.Tick()
	if got := c.Stats().Renders; got != 2 {
		t.Errorf("renders = %d, want 2", got)
	}
	if got := buf.Text(); got != want.Text {
		t.Errorf("markup after next frame = %q", got)
	}
}

func TestRichEditedWaitsForPendingMarkup(t *testing.T) {
	c, buf, sched := newManual(t, "first", WithMode(ModeRich))
	sched.Tick()

	buf.SetText("second")
	if err := c.RichEdited(); !errors.Is(err, ErrBusy) {
		t.Fatalf("RichEdited error = %v, want ErrBusy", err)
	}
	if buf.Text() != "second" {
		t.Errorf("markup = %q, pending edit must be kept", buf.Text())
	}
	sched.Tick()
	if err := c.RichEdited(); err != nil {
		t.Fatalf("RichEdited after render: %v", err)
	}
	if buf.Text() != "second" {
		t.Errorf("markup = %q", buf.Text())
	}
}

func TestRichTableEditUsesMarkupCaret(t *testing.T) {
	const src = "para\n\n" + sampleTable + "\n\n| x | y |\n| --- | --- |\n| 3 | 4 |"
	c, buf, sched := newManual(t, src, WithMode(ModeRich))
	sched.Tick()

	c.SetCursor(8, 6)
	if err := c.Table(table.RemoveColumn); err != nil {
		t.Fatalf("Table error: %v", err)
	}
	want, err := table.ApplyMarkup(src, table.Cursor{Line: 8, Col: 6}, table.RemoveColumn)
	if err != nil {
		t.Fatal(err)
	}
	if got := buf.Text(); got != want.Text {
		t.Errorf("markup = %q, want %q", got, want.Text)
	}

	c.SetCursor(0, 1)
	if err := c.Table(table.AddRow); !errors.Is(err, table.ErrNotInTable) {
		t.Errorf("error = %v, want ErrNotInTable for a caret outside tables", err)
	}
}

func TestRichEditCarriesMarkupCaret(t *testing.T) {
	const src = "intro\n\n" + sampleTable + "\n\ntail"
	c, buf, sched := newManual(t, src, WithMode(ModeRich))
	sched.Tick()

	buf.SetSelection(host.Selection{
		Anchor: host.Position{Line: 6, Col: 2},
		Head:   host.Position{Line: 6, Col: 2},
	})
	tree := c.Tree()
	c.SetRichSelection(selection.CaretAt(tree, selection.Point{Node: firstOfKind(tree, richtree.KindTableCell)}))
	if err := c.Table(table.AddRow); err != nil {
		t.Fatalf("Table error: %v", err)
	}

	head := c.Cursor()
	lines := strings.Split(buf.Text(), "\n")
	if head.Line != 7 || lines[head.Line] != "tail" || head.Col != 2 {
		t.Errorf("caret = %+v in %q, want column 2 of the moved tail line", head, buf.Text())
	}
}

func TestCaretOffsets(t *testing.T) {
	const text = "ab\ncéd\n"
	tests := []struct {
		pos host.Position
		off int
	}{
		{host.Position{Line: 0, Col: 0}, 0},
		{host.Position{Line: 0, Col: 2}, 2},
		{host.Position{Line: 1, Col: 2}, 6},
		{host.Position{Line: 2, Col: 0}, 8},
	}
	for _, tt := range tests {
		if got := offsetOf(text, tt.pos); got != tt.off {
			t.Errorf("offsetOf(%+v) = %d, want %d", tt.pos, got, tt.off)
		}
		if got := positionOf(text, tt.off); got != tt.pos {
			t.Errorf("positionOf(%d) = %+v, want %+v", tt.off, got, tt.pos)
		}
	}
	if got := offsetOf(text, host.Position{Line: 0, Col: 9}); got != 2 {
		t.Errorf("column past the line end = %d, want 2", got)
	}
}
