package archive

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// notesFile is the on-disk YAML layout:
//
//	notes:
//	  - id: grace
//	    title: Grace
//	    body: Unmerited favor.
type notesFile struct {
	Notes []Entry `yaml:"notes"`
}

// ParseYAML decodes a notes document.
func ParseYAML(data []byte) ([]Entry, error) {
	var f notesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing notes: %w", err)
	}
	for i, e := range f.Notes {
		if e.ID == "" {
			return nil, fmt.Errorf("note %d: %w", i, ErrEmptyID)
		}
	}
	return f.Notes, nil
}

// LoadYAML reads a notes file into a Memory archive.
func LoadYAML(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading notes file %s: %w", path, err)
	}
	entries, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemory(entries...), nil
}

// MarshalYAML encodes entries in the notes file layout.
func MarshalYAML(entries []Entry) ([]byte, error) {
	return yaml.Marshal(notesFile{Notes: entries})
}
