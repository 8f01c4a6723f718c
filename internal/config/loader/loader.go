// Package loader reads twinmark configuration sources into generic maps.
//
// Each source yields a map[string]any keyed by section. Maps from several
// sources are combined with DeepMerge, later sources winning.
package loader

import (
	"io/fs"
	"os"
)

// Loader reads configuration from one source.
type Loader interface {
	// Load returns the source's settings, or nil, nil when the source
	// does not exist.
	Load() (map[string]any, error)
}

// FileSystem is the subset of file operations the file loaders need.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FS adapts an fs.FS (for example fstest.MapFS) to FileSystem.
func FS(fsys fs.FS) FileSystem {
	return fsAdapter{fsys}
}

type fsAdapter struct{ fsys fs.FS }

func (a fsAdapter) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(a.fsys, path)
}
