package selection

import (
	"github.com/dshills/twinmark/internal/logging"
	"github.com/dshills/twinmark/internal/richtree"
)

// State is the tracker's position in its capture/restore cycle.
type State uint8

const (
	// StateNone means nothing has been captured.
	StateNone State = iota
	// StateHeld means a range was captured and awaits restore.
	StateHeld
	// StateRestored means the captured range was restored verbatim.
	StateRestored
	// StateCollapsed means the captured range was stale and the selection
	// collapsed to the end of the content.
	StateCollapsed
)

func (s State) String() string {
	switch s {
	case StateHeld:
		return "held"
	case StateRestored:
		return "restored"
	case StateCollapsed:
		return "collapsed"
	default:
		return "none"
	}
}

// Tracker preserves a selection across mutations of a rich-content tree.
// It is re-armed by every Capture and never reaches a terminal state.
type Tracker struct {
	state State
	held  Range
	log   *logging.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(tr *Tracker) {
		if l != nil {
			tr.log = l
		}
	}
}

// NewTracker creates a Tracker in StateNone.
func NewTracker(opts ...Option) *Tracker {
	tr := &Tracker{log: logging.Nop()}
	for _, opt := range opts {
		opt(tr)
	}
	tr.log = tr.log.WithComponent("selection")
	return tr
}

// Capture records r as the selection to restore.
func (tr *Tracker) Capture(r Range) {
	tr.held = r
	tr.state = StateHeld
}

// Restore returns the selection to apply to t after a mutation. A captured
// range whose nodes are still attached to t is returned unchanged apart
// from clamping; otherwise the selection collapses to the end of t and
// that becomes the new baseline. With nothing captured it returns the end
// of t and stays in StateNone.
func (tr *Tracker) Restore(t *richtree.Tree) Range {
	if tr.state == StateNone {
		return EndOf(t)
	}
	if tr.held.Restorable(t) {
		tr.held = tr.held.Clamp(t)
		tr.state = StateRestored
		return tr.held
	}
	tr.log.Debug("selection not restorable, collapsing to end", "range", tr.held.String())
	tr.held = EndOf(t)
	tr.state = StateCollapsed
	return tr.held
}

// Current returns the held range and whether one exists.
func (tr *Tracker) Current() (Range, bool) {
	return tr.held, tr.state != StateNone
}

// State returns the tracker's state.
func (tr *Tracker) State() State {
	return tr.state
}

// Reset forgets the held range.
func (tr *Tracker) Reset() {
	tr.held = Range{}
	tr.state = StateNone
}
