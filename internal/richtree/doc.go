// Package richtree provides the rich-content tree: an owned, arena-style
// tree of block and inline nodes addressed by stable handles.
//
// The tree is the structure the renderer produces, the serializer consumes
// and the table editor mutates in place. View layers project it; they never
// own it.
//
// # Handles
//
// A Handle indexes the tree's arena. Handles are never reused within one
// tree, so a handle whose node was removed stays valid but detached:
//
//	t := richtree.New()
//	p := t.Append(t.Root(), richtree.Node{Kind: richtree.KindParagraph})
//	txt := t.Append(p, richtree.Node{Kind: richtree.KindText, Text: "hi"})
//	_ = t.Remove(p)
//	t.Attached(txt) // false
//
// Every tree carries a unique ID. Handles from one tree mean nothing in
// another, so callers holding handles across re-renders compare IDs first.
//
// # Thread Safety
//
// A Tree is not safe for concurrent use. The sync coordinator owns the
// current tree exclusively.
package richtree
