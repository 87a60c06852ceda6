package history

import (
	"github.com/dshills/undoredo/internal/logging"
)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used to trace container operations.
// Contained record failures are logged at warn level.
func WithLogger(l *logging.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l.WithComponent("history")
		}
	}
}

// WithEnabled sets the initial state of the enabled gate.
func WithEnabled(enabled bool) Option {
	return func(c *Container) {
		c.enabled = enabled
	}
}
