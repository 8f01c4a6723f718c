// Package selection keeps the caret and selection stable across
// re-renders and structural edits.
//
// Selections are explicit values rather than ambient view state:
//
//   - TextRange addresses markup text by byte offset.
//   - Range addresses a rich-content tree by (node, offset) points and
//     remembers which tree it belongs to.
//
// A Tracker holds the selection captured before a mutation and restores
// it afterwards, collapsing to the end of the document when the captured
// position no longer exists.
package selection
