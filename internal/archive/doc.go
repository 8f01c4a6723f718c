// Package archive provides the note archive that note-reference spans point
// into.
//
// The renderer only ever reads through the Reader interface, and reads are
// live: an entry added after a document was written still decorates the
// next render. Three implementations are provided:
//
//   - Memory: an in-process map, the default and the test double
//   - LoadYAML: a Memory filled from a YAML notes file
//   - Store: a SQLite-backed archive (pure Go driver)
//
// Read failures never surface as errors through Reader. A failed lookup is
// logged and reported as a miss, and the renderer simply omits the
// decoration.
package archive
