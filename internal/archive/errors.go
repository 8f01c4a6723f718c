package archive

import "errors"

// Errors returned by archive operations.
var (
	// ErrNotFound indicates no entry exists for the id.
	ErrNotFound = errors.New("note not found")

	// ErrEmptyID indicates an entry without an id.
	ErrEmptyID = errors.New("note id is empty")

	// ErrClosed indicates the store was already closed.
	ErrClosed = errors.New("archive store is closed")
)
