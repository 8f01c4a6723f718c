package coordinator

import (
	"github.com/dshills/twinmark/internal/logging"
	"github.com/dshills/twinmark/internal/render"
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRenderer sets the renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithScheduler sets the frame scheduler. The default is a ManualScheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.sched = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMode sets the initial authoritative representation.
func WithMode(m Mode) Option {
	return func(c *Coordinator) {
		c.mode = m
	}
}
