// Package markup canonicalizes markup text and derives anchor slugs.
//
// Normalize is total, pure and idempotent. It is applied to every text that
// flows toward the renderer and to every text the serializer produces, so
// both directions agree on one canonical form:
//
//	text := markup.Normalize("(hello)[./world.md]")
//	// text == "[hello](./world.md)"
//
// Lines inside fenced code blocks are never rewritten.
//
// A Slugger hands out collision-resolved anchors in document order. A fresh
// Slugger is used for every render pass, so the same document always yields
// the same anchors regardless of history:
//
//	s := markup.NewSlugger("")
//	s.Slug("Intro") // "intro"
//	s.Slug("Intro") // "intro-1"
package markup
