package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
)

// EnvLoader reads settings from prefixed environment variables.
//
// TWINMARK_RENDER_PLACEHOLDER_SLUG becomes render.placeholder_slug: the
// first word after the prefix names the section and the rest, lowercased
// and joined by underscores, names the key.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix.
// The prefix includes its trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: map[string]string{},
		environ: os.Environ,
	}
}

// AddMapping routes an exact variable name to a dotted config path,
// bypassing the prefix rule.
func (l *EnvLoader) AddMapping(env, path string) {
	l.mapping[env] = path
}

// Load implements Loader.
func (l *EnvLoader) Load() (map[string]any, error) {
	settings := map[string]any{}
	for _, kv := range l.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			if !strings.HasPrefix(name, l.prefix) {
				continue
			}
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		setByPath(settings, path, parseValue(value))
	}
	return settings, nil
}

func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok {
		return section
	}
	return section + "." + key
}

// parseValue infers a scalar type from an environment string. JSON
// arrays and objects decode into []any and map[string]any.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

func setByPath(m map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}
