// Package watcher reports changes to a single file on disk.
//
// The file's directory is watched so that editors which save by renaming
// a temporary file over the original are still seen. Bursts of events are
// debounced and the file is read once the burst settles.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/twinmark/internal/logging"
)

// DefaultDebounce is the quiet period before a change is delivered.
const DefaultDebounce = 100 * time.Millisecond

// Change is a settled modification of the watched file.
type Change struct {
	Path string
	// Text is the file's content after the change. Empty when Removed.
	Text    string
	Removed bool
	Time    time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero delivers on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher watches one file.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *logging.Logger

	fsw     *fsnotify.Watcher
	changes chan Change
	errs    chan error

	last    string
	hasLast bool

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts watching path. The file need not exist yet, but its
// directory must.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		log:      logging.Nop(),
		changes:  make(chan Change, 1),
		errs:     make(chan error, 8),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("watcher").WithField("path", abs)

	if data, err := os.ReadFile(abs); err == nil {
		w.last, w.hasLast = string(data), true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Changes delivers settled changes. It is closed by Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Errors delivers watch and read errors. Errors are dropped when the
// channel is full.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
		close(w.changes)
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("file event", "op", ev.Op.String())
			if w.debounce == 0 {
				w.emit()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.sendError(err)

		case <-fire:
			fire = nil
			w.emit()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}

// emit reads the file and delivers a Change unless the content is the
// same as the last one delivered.
func (w *Watcher) emit() {
	c := Change{Path: w.path, Time: time.Now()}

	data, err := os.ReadFile(w.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !w.hasLast {
			return
		}
		c.Removed = true
		w.last, w.hasLast = "", false
	case err != nil:
		w.sendError(fmt.Errorf("reading %s: %w", w.path, err))
		return
	default:
		text := string(data)
		if w.hasLast && text == w.last {
			return
		}
		c.Text = text
		w.last, w.hasLast = text, true
	}

	select {
	case w.changes <- c:
	case <-w.done:
	}
}

func (w *Watcher) sendError(err error) {
	w.log.Warn("watch error", "err", err)
	select {
	case w.errs <- err:
	default:
	}
}
