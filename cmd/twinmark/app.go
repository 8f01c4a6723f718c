package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dshills/twinmark/internal/archive"
	"github.com/dshills/twinmark/internal/config"
	"github.com/dshills/twinmark/internal/logging"
	"github.com/dshills/twinmark/internal/render"
)

// App carries what every command needs.
type App struct {
	ctx   context.Context
	cfg   *config.Config
	log   *logging.Logger
	out   io.Writer
	err   io.Writer
	color bool
}

func newApp(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) *App {
	return &App{
		ctx: ctx,
		cfg: cfg,
		log: cfg.Logger(stderr),
		out: stdout,
		err: stderr,
	}
}

// openArchive opens the configured note archive. The returned close
// function is never nil.
func (a *App) openArchive() (archive.Reader, func() error, error) {
	noop := func() error { return nil }
	switch a.cfg.Archive.Driver {
	case config.DriverYAML:
		m, err := archive.LoadYAML(a.cfg.Archive.Path)
		if err != nil {
			return nil, noop, err
		}
		return m, noop, nil
	case config.DriverSQLite:
		s, err := archive.Open(a.cfg.Archive.Path, archive.WithLogger(a.log))
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	}
	return archive.Empty, noop, nil
}

// renderer builds a renderer from the configuration, joined onto notes.
func (a *App) renderer() (*render.Renderer, func() error, error) {
	notes, closeFn, err := a.openArchive()
	if err != nil {
		return nil, closeFn, fmt.Errorf("opening archive: %w", err)
	}
	opts := append(a.cfg.RenderOptions(), render.WithArchive(notes), render.WithLogger(a.log))
	return render.New(opts...), closeFn, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeFile(path, text string) error {
	info, err := os.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(text), mode)
}
