// Package config loads twinmark settings.
//
// Settings come from three layers, each overriding the one before:
//
//  1. Built-in defaults (Default)
//  2. A TOML file, which may include other files
//  3. TWINMARK_* environment variables
//
// A missing file is not an error; the remaining layers still apply.
//
//	[log]
//	level = "info"            # debug | info | warn | error
//	format = "text"           # text | json
//
//	[render]
//	placeholder_slug = "section"
//	new_window_schemes = ["http", "https", "mailto", "tel"]
//	unsafe_schemes = ["javascript", "vbscript", "data", "file"]
//
//	[sync]
//	frame_interval = "16ms"
//	start_mode = "markup"     # markup | rich
//
//	[archive]
//	driver = "memory"         # memory | yaml | sqlite
//	path = ""
//
//	[script]
//	instruction_limit = 1000000
package config
