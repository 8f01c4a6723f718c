// Package render turns canonical markup text into a rich-content tree.
//
// The pipeline has four stages:
//
//  1. goldmark converts markup (CommonMark plus GFM tables and
//     strikethrough) to HTML. Raw inline HTML is passed through so that
//     note-reference spans survive.
//  2. bluemonday sanitizes the HTML: script, style and embedding elements
//     are dropped and only http, https, mailto and tel links survive next
//     to relative ones.
//  3. golang.org/x/net/html parses the fragment and an attribute-rewrite
//     pass assigns heading anchors, applies the new-window link policy and
//     titles note references.
//  4. The node list is converted into a richtree.Tree and decorated with
//     block IDs, link hints and note tooltips joined from the archive.
//
// A failed pass never reaches the caller as a crash. Render returns the last
// good tree together with an error wrapping ErrStale:
//
//	tree, err := r.Render(text)
//	if errors.Is(err, render.ErrStale) {
//		// tree is the previous render; keep showing it
//	}
//
// A Renderer is not safe for concurrent use.
package render
