package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const wait = 3 * time.Second

func next(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c, ok := <-w.Changes():
		if !ok {
			t.Fatal("changes channel closed")
		}
		return c
	case err := <-w.Errors():
		t.Fatalf("watch error: %v", err)
	case <-time.After(wait):
		t.Fatal("no change delivered")
	}
	return Change{}
}

func write(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DeliversWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	write(t, path, "# One")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	write(t, path, "# Two")
	c := next(t, w)
	if c.Text != "# Two" || c.Removed || c.Path != w.Path() {
		t.Errorf("change = %+v", c)
	}
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")

	w, err := New(path, WithDebounce(150*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	for _, s := range []string{"a", "ab", "abc"} {
		write(t, path, s)
	}
	if c := next(t, w); c.Text != "abc" {
		t.Errorf("text = %q, want final content", c.Text)
	}
}

func TestWatcher_Created(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.md")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	write(t, path, "hello")
	if c := next(t, w); c.Text != "hello" {
		t.Errorf("text = %q", c.Text)
	}
}

func TestWatcher_Removed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	write(t, path, "x")

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if c := next(t, w); !c.Removed {
		t.Errorf("change = %+v, want removal", c)
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	write(t, path, "x")

	w, err := New(path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	write(t, filepath.Join(dir, "other.md"), "y")
	select {
	case c := <-w.Changes():
		t.Errorf("unexpected change %+v", c)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "doc.md"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcher_Close(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "doc.md"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, ok := <-w.Changes(); ok {
		t.Error("changes should be closed")
	}
}
