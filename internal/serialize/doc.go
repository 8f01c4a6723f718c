// Package serialize converts rich-content trees back into canonical markup.
//
// Serialize is the inverse of render.Renderer.Render for every construct
// the renderer produces. Note references are the exception: they are
// written as literal <span data-note-id="..."> tags, which the renderer
// accepts back as raw inline HTML.
package serialize
