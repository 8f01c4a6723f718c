package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dshills/twinmark/internal/archive"
	"github.com/dshills/twinmark/internal/config"
)

// NotesGroup manages the SQLite note archive.
type NotesGroup struct {
	Import NotesImportCmd `cmd:"" help:"Import notes from a YAML file"`
	Export NotesExportCmd `cmd:"" help:"Write all notes as YAML"`
	Get    NotesGetCmd    `cmd:"" help:"Print one note"`
	List   NotesListCmd   `cmd:"" help:"List note ids and titles"`
	Delete NotesDeleteCmd `cmd:"" help:"Delete a note"`
}

// DBFlag selects the archive database.
type DBFlag struct {
	DB string `help:"SQLite archive path; defaults to archive.path when the driver is sqlite" type:"path"`
}

func (f DBFlag) open(app *App) (*archive.Store, error) {
	path := f.DB
	if path == "" && app.cfg.Archive.Driver == config.DriverSQLite {
		path = app.cfg.Archive.Path
	}
	if path == "" {
		return nil, errors.New("no archive database: pass --db or configure archive.driver = \"sqlite\"")
	}
	return archive.Open(path, archive.WithLogger(app.log))
}

// NotesImportCmd loads a YAML notes file into the database.
type NotesImportCmd struct {
	DBFlag `embed:""`

	File string `arg:"" help:"YAML notes file" type:"existingfile"`
}

func (c *NotesImportCmd) Run(app *App) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	entries, err := archive.ParseYAML(data)
	if err != nil {
		return err
	}
	store, err := c.open(app)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Import(app.ctx, entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "imported %d notes\n", n)
	return nil
}

// NotesExportCmd prints the database as a YAML notes file.
type NotesExportCmd struct {
	DBFlag `embed:""`
}

func (c *NotesExportCmd) Run(app *App) error {
	store, err := c.open(app)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(app.ctx)
	if err != nil {
		return err
	}
	data, err := archive.MarshalYAML(entries)
	if err != nil {
		return err
	}
	_, err = app.out.Write(data)
	return err
}

// NotesGetCmd prints a note's title and body.
type NotesGetCmd struct {
	DBFlag `embed:""`

	ID string `arg:"" help:"Note id"`
}

func (c *NotesGetCmd) Run(app *App) error {
	store, err := c.open(app)
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := store.Lookup(app.ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.out, e.Title)
	if e.Body != "" {
		fmt.Fprintln(app.out, e.Body)
	}
	return nil
}

// NotesListCmd lists the archive.
type NotesListCmd struct {
	DBFlag `embed:""`
}

func (c *NotesListCmd) Run(app *App) error {
	store, err := c.open(app)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(app.ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(app.out, "%s\t%s\n", e.ID, e.Title)
	}
	return nil
}

// NotesDeleteCmd removes a note.
type NotesDeleteCmd struct {
	DBFlag `embed:""`

	ID string `arg:"" help:"Note id"`
}

func (c *NotesDeleteCmd) Run(app *App) error {
	store, err := c.open(app)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Delete(app.ctx, c.ID)
}
