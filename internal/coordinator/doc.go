// Package coordinator keeps the markup text and the rich-content tree in
// sync.
//
// Edits flow in one direction at a time. A markup edit schedules a render
// of the normalized text; at most one render runs per frame and the latest
// pending text wins. A rich-content edit serializes the tree and pushes
// the result into the host widget. The coordinator records which direction
// is being applied so that the change notification caused by its own
// update is not fed back in the other direction.
//
// Each Coordinator carries its own direction state; independent documents
// never share it.
package coordinator
