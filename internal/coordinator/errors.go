package coordinator

import "errors"

var (
	// ErrNoTree is returned by rich-content operations before the first
	// render.
	ErrNoTree = errors.New("no rendered tree")

	// ErrBusy is returned when an edit arrives while the other direction
	// is being applied.
	ErrBusy = errors.New("sync in progress")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("coordinator closed")
)
