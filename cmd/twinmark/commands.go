package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/dshills/twinmark/internal/coordinator"
	"github.com/dshills/twinmark/internal/host"
	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/render"
	"github.com/dshills/twinmark/internal/richtree"
	"github.com/dshills/twinmark/internal/script"
	"github.com/dshills/twinmark/internal/serialize"
	"github.com/dshills/twinmark/internal/table"
	"github.com/dshills/twinmark/internal/watcher"
)

// NormalizeCmd prints or rewrites the normalized form of a file.
type NormalizeCmd struct {
	File  string `arg:"" help:"Markup file" type:"existingfile"`
	Write bool   `short:"w" help:"Rewrite the file in place"`
}

func (c *NormalizeCmd) Run(app *App) error {
	text, err := readFile(c.File)
	if err != nil {
		return err
	}
	out := markup.Normalize(text)
	if c.Write {
		return writeFile(c.File, out)
	}
	fmt.Fprintln(app.out, out)
	return nil
}

// RenderCmd renders a file.
type RenderCmd struct {
	File   string `arg:"" help:"Markup file" type:"existingfile"`
	Format string `short:"f" help:"Output format" enum:"html,tree,outline" default:"html"`
}

func (c *RenderCmd) Run(app *App) error {
	text, err := readFile(c.File)
	if err != nil {
		return err
	}
	r, closeArchive, err := app.renderer()
	if err != nil {
		return err
	}
	defer closeArchive()

	text = markup.Normalize(text)
	if c.Format == "html" {
		out, err := r.HTML(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.out, out)
		return nil
	}

	tree, err := r.Render(text)
	if err != nil {
		return err
	}
	if c.Format == "tree" {
		return tree.Dump(app.out)
	}
	printOutline(app, render.Outline(tree))
	return nil
}

func printOutline(app *App, outline []render.Heading) {
	anchor := app.paint(color.FgCyan)
	for _, h := range outline {
		fmt.Fprintf(app.out, "%s- %s %s\n", strings.Repeat("  ", h.Level-1), h.Text, anchor.Sprint("#"+h.Anchor))
	}
}

// RoundtripCmd checks normalize(x) against serialize(render(normalize(x))).
type RoundtripCmd struct {
	File string `arg:"" help:"Markup file" type:"existingfile"`
}

func (c *RoundtripCmd) Run(app *App) error {
	text, err := readFile(c.File)
	if err != nil {
		return err
	}
	r, closeArchive, err := app.renderer()
	if err != nil {
		return err
	}
	defer closeArchive()

	want := markup.Normalize(text)
	tree, err := r.Render(want)
	if err != nil {
		return err
	}
	got := serialize.Serialize(tree)

	if got == want {
		ok := app.paint(color.FgGreen)
		fmt.Fprintln(app.out, ok.Sprint("ok"), c.File)
		return nil
	}
	fmt.Fprint(app.out, lineDiff(want, got, app.color))
	return exitCode(1)
}

// TableCmd applies a table operation through a coordinator over the file.
type TableCmd struct {
	Op    string `arg:"" help:"Operation" enum:"add-column,remove-column,add-row,remove-row,delete-table"`
	File  string `arg:"" help:"Markup file" type:"existingfile"`
	Line  int    `short:"l" required:"" help:"Cursor line (1-based)"`
	Col   int    `short:"C" default:"1" help:"Cursor column in characters (1-based)"`
	Write bool   `short:"w" help:"Rewrite the file in place"`
}

func (c *TableCmd) Run(app *App) error {
	op, err := table.ParseOp(c.Op)
	if err != nil {
		return err
	}
	if c.Line < 1 || c.Col < 1 {
		return errors.New("line and column are 1-based")
	}
	text, err := readFile(c.File)
	if err != nil {
		return err
	}

	buf := host.NewBuffer(text)
	doc := coordinator.New(buf, coordinator.WithLogger(app.log))
	defer doc.Close()
	doc.OnMessage(func(msg string) { fmt.Fprintln(app.err, msg) })

	doc.SetCursor(c.Line-1, c.Col-1)
	if err := doc.Table(op); err != nil {
		return exitCode(1)
	}

	if c.Write {
		return writeFile(c.File, buf.Text())
	}
	fmt.Fprintln(app.out, buf.Text())
	cur := doc.Cursor()
	app.log.Info("table edited", "op", op.String(), "line", cur.Line+1, "col", cur.Col+1)
	return nil
}

// WatchCmd re-renders a file on every change and prints its outline.
type WatchCmd struct {
	File string `arg:"" help:"Markup file" type:"path"`
	HTML bool   `help:"Print the rendered HTML instead of the outline"`
}

func (c *WatchCmd) Run(app *App) error {
	text, err := readFile(c.File)
	if err != nil {
		return err
	}
	r, closeArchive, err := app.renderer()
	if err != nil {
		return err
	}
	defer closeArchive()

	w, err := watcher.New(c.File, watcher.WithLogger(app.log))
	if err != nil {
		return err
	}
	defer w.Close()

	buf := host.NewBuffer(text)
	sched := coordinator.NewTickerScheduler(time.Duration(app.cfg.Sync.FrameInterval))
	doc := coordinator.New(buf,
		coordinator.WithRenderer(r),
		coordinator.WithScheduler(sched),
		coordinator.WithLogger(app.log),
		coordinator.WithMode(app.cfg.Mode()),
	)
	defer doc.Close()

	rendered := make(chan *richtree.Tree, 1)
	doc.OnRender(func(t *richtree.Tree) {
		select {
		case rendered <- t:
		default:
		}
	})
	doc.Flush()
	select {
	case <-rendered:
	default:
	}
	if t := doc.Tree(); t != nil {
		c.print(app, r, buf.Text(), t)
	}

	for {
		select {
		case <-app.ctx.Done():
			return nil
		case t := <-rendered:
			c.print(app, r, buf.Text(), t)
		case change, ok := <-w.Changes():
			if !ok {
				return nil
			}
			if change.Removed {
				fmt.Fprintf(app.err, "%s removed\n", change.Path)
				continue
			}
			buf.SetText(change.Text)
		case err := <-w.Errors():
			app.log.Warn("watch error", "err", err)
		}
	}
}

func (c *WatchCmd) print(app *App, r *render.Renderer, text string, t *richtree.Tree) {
	fmt.Fprintf(app.out, "-- %s rendered %s\n", c.File, time.Now().Format(time.TimeOnly))
	if c.HTML {
		out, err := r.HTML(markup.Normalize(text))
		if err != nil {
			app.log.Warn("html projection failed", "err", err)
			return
		}
		fmt.Fprintln(app.out, out)
		return
	}
	printOutline(app, render.Outline(t))
}

// ScriptCmd runs a Lua script against a file.
type ScriptCmd struct {
	File   string        `arg:"" help:"Markup file" type:"existingfile"`
	Script string        `arg:"" help:"Lua script" type:"existingfile"`
	Write  bool          `short:"w" help:"Rewrite the file with the script's result"`
	Mode   string        `help:"Table edit mode (markup or rich); defaults to the configured start mode"`
	Limit  time.Duration `help:"Wall-clock limit for the script" default:"5s"`
}

func (c *ScriptCmd) Run(app *App) error {
	text, err := readFile(c.File)
	if err != nil {
		return err
	}
	r, closeArchive, err := app.renderer()
	if err != nil {
		return err
	}
	defer closeArchive()

	mode := app.cfg.Mode()
	if c.Mode != "" {
		if mode, err = coordinator.ParseMode(c.Mode); err != nil {
			return err
		}
	}

	buf := host.NewBuffer(text)
	doc := coordinator.New(buf,
		coordinator.WithRenderer(r),
		coordinator.WithLogger(app.log),
		coordinator.WithMode(mode),
	)
	defer doc.Close()
	doc.OnMessage(func(msg string) { app.log.Info("table edit refused", "message", msg) })

	e := script.New(doc,
		script.WithLogger(app.log),
		script.WithOutput(app.out),
		script.WithInstructionLimit(int64(app.cfg.Script.InstructionLimit)),
		script.WithTimeout(c.Limit),
	)
	defer e.Close()

	if err := e.RunFile(app.ctx, c.Script); err != nil {
		return err
	}
	if c.Write {
		return writeFile(c.File, buf.Text())
	}
	fmt.Fprintln(app.out, buf.Text())
	return nil
}
