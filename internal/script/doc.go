// Package script runs Lua scripts against a twinmark document.
//
// Scripts run in a sandboxed gopher-lua state with only the base, table,
// string and math libraries. The global doc table is the bridge to the
// document:
//
//	doc.text()                 -- markup text
//	doc.set_text(s)            -- replace the markup text
//	doc.normalize(s)           -- normalized copy of s
//	doc.cursor()               -- line, col of the caret (1-based)
//	doc.cursor(line, col)      -- move the caret
//	doc.add_column()           -- ok, reason
//	doc.remove_column()        -- ok, reason
//	doc.add_row()              -- ok, reason
//	doc.remove_row()           -- ok, reason
//	doc.delete_table()         -- ok, reason
//	doc.outline()              -- { {level=, anchor=, text=}, ... }
//	doc.mode([m])              -- current mode, optionally switching to m
//	doc.flush()                -- render pending markup now
//
// Each call into doc counts against the instruction limit. Pure Lua loops
// are bounded by the context passed to Run.
package script
