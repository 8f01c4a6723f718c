package archive

import (
	"sort"
	"sync"
)

// Entry is one archived note.
type Entry struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Reader is the read-only view of the archive used while rendering.
type Reader interface {
	// Get returns the entry for id and whether it exists.
	Get(id string) (Entry, bool)
}

// Memory is an in-memory archive safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemory creates a Memory archive holding entries.
func NewMemory(entries ...Entry) *Memory {
	m := &Memory{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.ID != "" {
			m.entries[e.ID] = e
		}
	}
	return m
}

// Get implements Reader.
func (m *Memory) Get(id string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok
}

// Put adds or replaces an entry.
func (m *Memory) Put(e Entry) error {
	if e.ID == "" {
		return ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

// Delete removes the entry for id.
func (m *Memory) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
}

// List returns all entries sorted by id.
func (m *Memory) List() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Empty is a Reader with no entries.
var Empty Reader = emptyReader{}

type emptyReader struct{}

func (emptyReader) Get(string) (Entry, bool) { return Entry{}, false }
