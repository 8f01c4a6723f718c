package richtree

import "errors"

// Errors returned by structural edits.
var (
	// ErrInvalidHandle indicates a handle outside the tree's arena.
	ErrInvalidHandle = errors.New("invalid node handle")

	// ErrIndexOutOfRange indicates a child index outside [0, len].
	ErrIndexOutOfRange = errors.New("child index out of range")

	// ErrCycle indicates an insert that would make a node its own ancestor.
	ErrCycle = errors.New("insert would create a cycle")

	// ErrRootRemoval indicates an attempt to detach the root.
	ErrRootRemoval = errors.New("cannot remove the root node")
)
