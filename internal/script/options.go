package script

import (
	"io"
	"time"

	"github.com/dshills/twinmark/internal/logging"
)

// Default limits.
const (
	DefaultInstructionLimit = 1_000_000
	DefaultTimeout          = 5 * time.Second
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithInstructionLimit caps calls into doc per run. Zero disables the cap.
func WithInstructionLimit(n int64) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.limit = n
		}
	}
}

// WithTimeout bounds each run. Zero leaves only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.timeout = d
		}
	}
}

// WithOutput receives print output. Defaults to io.Discard.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.out = w
		}
	}
}
