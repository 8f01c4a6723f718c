package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// IncludeKey names the top-level key listing files merged beneath a config file.
const IncludeKey = "include"

// MaxIncludeDepth bounds nested includes.
const MaxIncludeDepth = 4

// ErrIncludeDepth is returned when includes nest deeper than MaxIncludeDepth.
var ErrIncludeDepth = errors.New("include depth exceeded")

// TOMLLoader loads settings from a TOML file.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a loader for path on the OS file system.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(OSFS{}, path)
}

// NewTOMLLoaderWithFS creates a loader reading through fsys.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fsys, path: path}
}

// Load reads the configured file and any files it includes.
func (l *TOMLLoader) Load() (map[string]any, error) {
	if l.path == "" {
		return nil, nil
	}
	return l.load(l.path, MaxIncludeDepth)
}

func (l *TOMLLoader) load(path string, depth int) (map[string]any, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrIncludeDepth)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	settings, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	includes, err := includeList(settings[IncludeKey])
	if err != nil {
		return nil, &ParseError{Path: path, Message: err.Error()}
	}
	delete(settings, IncludeKey)

	merged := map[string]any{}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		sub, err := l.load(inc, depth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		merged = DeepMerge(merged, sub)
	}
	return DeepMerge(merged, settings), nil
}

func includeList(v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a string or array of strings", IncludeKey)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings, got %T", IncludeKey, v)
	}
}

// Parse decodes TOML data. source names the data in errors.
func Parse(source string, data []byte) (map[string]any, error) {
	settings := map[string]any{}
	if err := toml.Unmarshal(data, &settings); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	return settings, nil
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge merges src into dst and returns dst. Nested maps merge
// recursively; any other value in src replaces the one in dst.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, sv := range src {
		sm, srcIsMap := sv.(map[string]any)
		dm, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dm, sm)
			continue
		}
		if srcIsMap {
			sv = DeepMerge(nil, sm)
		}
		dst[key] = sv
	}
	return dst
}
