package config

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/twinmark/internal/config/loader"
	"github.com/dshills/twinmark/internal/coordinator"
	"github.com/dshills/twinmark/internal/logging"
	"github.com/dshills/twinmark/internal/markup"
	"github.com/dshills/twinmark/internal/render"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TWINMARK_"

// DefaultInstructionLimit bounds a script run.
const DefaultInstructionLimit = 1_000_000

// Archive drivers.
const (
	DriverMemory = "memory"
	DriverYAML   = "yaml"
	DriverSQLite = "sqlite"
)

// Config is the complete twinmark configuration.
type Config struct {
	Log     Log     `toml:"log"`
	Render  Render  `toml:"render"`
	Sync    Sync    `toml:"sync"`
	Archive Archive `toml:"archive"`
	Script  Script  `toml:"script"`
}

// Log configures the process logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Render configures the markup-to-tree pipeline.
type Render struct {
	PlaceholderSlug  string   `toml:"placeholder_slug"`
	NewWindowSchemes []string `toml:"new_window_schemes"`
	UnsafeSchemes    []string `toml:"unsafe_schemes"`
}

// Sync configures the coordinator.
type Sync struct {
	FrameInterval Duration `toml:"frame_interval"`
	StartMode     string   `toml:"start_mode"`
}

// Archive selects where note tooltips are read from.
type Archive struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// Script configures the Lua sandbox.
type Script struct {
	InstructionLimit int `toml:"instruction_limit"`
}

// Duration is a time.Duration written as a string such as "16ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns a configuration that works without any file.
func Default() *Config {
	return &Config{
		Log: Log{Level: "info", Format: string(logging.FormatText)},
		Render: Render{
			PlaceholderSlug:  markup.DefaultPlaceholder,
			NewWindowSchemes: slices.Clone(render.DefaultNewWindowSchemes),
			UnsafeSchemes:    slices.Clone(render.DefaultUnsafeSchemes),
		},
		Sync: Sync{
			FrameInterval: Duration(coordinator.DefaultFrameInterval),
			StartMode:     "markup",
		},
		Archive: Archive{Driver: DriverMemory},
		Script:  Script{InstructionLimit: DefaultInstructionLimit},
	}
}

// Load reads path (which may be empty or absent) and applies environment
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	return LoadFrom(loader.NewTOMLLoader(path), loader.NewEnvLoader(EnvPrefix))
}

// LoadFrom merges the given sources over the defaults, in order, and
// validates the result.
func LoadFrom(sources ...loader.Loader) (*Config, error) {
	base, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		layer, err := src.Load()
		if err != nil {
			return nil, err
		}
		base = loader.DeepMerge(base, layer)
	}

	data, err := toml.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("encoding merged config: %w", err)
	}
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toMap(c *Config) (map[string]any, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding defaults: %w", err)
	}
	return loader.Parse("<defaults>", data)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		bad("log.level %q", c.Log.Level)
	}
	switch logging.Format(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		bad("log.format %q", c.Log.Format)
	}
	if c.Sync.FrameInterval <= 0 {
		bad("sync.frame_interval must be positive")
	}
	if _, err := coordinator.ParseMode(c.Sync.StartMode); err != nil {
		bad("sync.start_mode: %v", err)
	}
	switch c.Archive.Driver {
	case DriverMemory:
	case DriverYAML, DriverSQLite:
		if c.Archive.Path == "" {
			bad("archive.path is required for driver %q", c.Archive.Driver)
		}
	default:
		bad("archive.driver %q", c.Archive.Driver)
	}
	if c.Script.InstructionLimit < 0 {
		bad("script.instruction_limit must not be negative")
	}
	return errors.Join(errs...)
}

// Logger builds the process logger writing to out.
func (c *Config) Logger(out io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(c.Log.Level),
		Format: logging.Format(c.Log.Format),
		Output: out,
	})
}

// RenderOptions converts the render section to renderer options.
func (c *Config) RenderOptions() []render.Option {
	return []render.Option{
		render.WithPlaceholder(c.Render.PlaceholderSlug),
		render.WithNewWindowSchemes(c.Render.NewWindowSchemes...),
		render.WithUnsafeSchemes(c.Render.UnsafeSchemes...),
	}
}

// Mode returns the configured starting mode.
func (c *Config) Mode() coordinator.Mode {
	m, _ := coordinator.ParseMode(c.Sync.StartMode)
	return m
}
