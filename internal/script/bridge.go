package script

import (
	"errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/twinmark/internal/coordinator"
	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/table"
)

func (e *Engine) registerDoc() {
	L := e.L
	mod := L.NewTable()

	fns := map[string]lua.LGFunction{
		"text":      e.text,
		"set_text":  e.setText,
		"normalize": e.normalize,
		"cursor":    e.cursor,
		"outline":   e.outline,
		"mode":      e.mode,
		"flush":     e.flush,
	}
	for _, op := range table.Ops() {
		fns[luaName(op)] = e.tableOp(op)
	}
	for name, fn := range fns {
		L.SetField(mod, name, L.NewFunction(e.counted(fn)))
	}

	L.SetGlobal("doc", mod)
}

func (e *Engine) counted(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		e.charge(L)
		return fn(L)
	}
}

// luaName turns "add-column" into "add_column".
func luaName(op table.Op) string {
	b := []byte(op.String())
	for i, c := range b {
		if c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}

// text() -> string
func (e *Engine) text(L *lua.LState) int {
	L.Push(lua.LString(e.doc.Text()))
	return 1
}

// set_text(s)
func (e *Engine) setText(L *lua.LState) int {
	e.doc.SetText(L.CheckString(1))
	return 0
}

// normalize(s) -> string
func (e *Engine) normalize(L *lua.LState) int {
	L.Push(lua.LString(markup.Normalize(L.CheckString(1))))
	return 1
}

// cursor() -> line, col
// cursor(line, col)
// Positions are 1-based on the Lua side.
func (e *Engine) cursor(L *lua.LState) int {
	if L.GetTop() == 0 {
		p := e.doc.Cursor()
		L.Push(lua.LNumber(p.Line + 1))
		L.Push(lua.LNumber(p.Col + 1))
		return 2
	}
	line := L.CheckInt(1)
	col := L.OptInt(2, 1)
	if line < 1 {
		L.ArgError(1, "line must be positive")
		return 0
	}
	if col < 1 {
		L.ArgError(2, "col must be positive")
		return 0
	}
	e.doc.SetCursor(line-1, col-1)
	return 0
}

// add_column() etc. -> ok, reason
// reason is the failure code, such as "no_data_rows".
func (e *Engine) tableOp(op table.Op) lua.LGFunction {
	return func(L *lua.LState) int {
		err := e.doc.Table(op)
		if err == nil {
			L.Push(lua.LTrue)
			return 1
		}
		var f table.Failure
		reason := err.Error()
		if errors.As(err, &f) {
			reason = string(f)
		}
		L.Push(lua.LFalse)
		L.Push(lua.LString(reason))
		return 2
	}
}

// outline() -> { {level=, anchor=, text=}, ... }
func (e *Engine) outline(L *lua.LState) int {
	list := L.NewTable()
	for _, h := range e.doc.Outline() {
		row := L.NewTable()
		L.SetField(row, "level", lua.LNumber(h.Level))
		L.SetField(row, "anchor", lua.LString(h.Anchor))
		L.SetField(row, "text", lua.LString(h.Text))
		list.Append(row)
	}
	L.Push(list)
	return 1
}

// mode([m]) -> string
func (e *Engine) mode(L *lua.LState) int {
	if L.GetTop() > 0 {
		m, err := coordinator.ParseMode(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		e.doc.SetMode(m)
	}
	L.Push(lua.LString(e.doc.Mode().String()))
	return 1
}

// flush()
func (e *Engine) flush(L *lua.LState) int {
	e.doc.Flush()
	return 0
}
