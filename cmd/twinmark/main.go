// Command twinmark works with documents that have a markup form and a
// rich-content form kept in sync.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/dshills/twinmark/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI defines the command-line interface.
type CLI struct {
	Config   string `short:"c" help:"Path to configuration file" type:"path" env:"TWINMARK_CONFIG"`
	LogLevel string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)"`
	NoColor  bool   `name:"no-color" help:"Disable colored output"`

	Normalize NormalizeCmd `cmd:"" help:"Print the normalized markup of a file"`
	Render    RenderCmd    `cmd:"" help:"Render a file to HTML, a node tree or an outline"`
	Roundtrip RoundtripCmd `cmd:"" help:"Check that a file survives render and serialize unchanged"`
	Table     TableCmd     `cmd:"" help:"Apply a table operation at a line and column"`
	Watch     WatchCmd     `cmd:"" help:"Re-render a file whenever it changes"`
	Script    ScriptCmd    `cmd:"" help:"Run a Lua script against a file"`
	Notes     NotesGroup   `cmd:"" help:"Manage the note archive"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

// exitCode is returned by commands that fail without an error message.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("twinmark"),
		kong.Description("Dual-representation document editor core"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: loading config: %v\n", err)
		return 1
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}

	app := newApp(ctx, cfg, stdout, stderr)
	app.color = !cli.NoColor && !color.NoColor

	err = kctx.Run(app)
	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

// VersionCmd prints build information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	fmt.Fprintf(app.out, "twinmark %s\n", version)
	fmt.Fprintf(app.out, "Commit: %s\n", commit)
	fmt.Fprintf(app.out, "Built: %s\n", date)
	return nil
}
