package scoring

import (
	"time"

	"github.com/okian/prhealth/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithVelocityGrouping selects the calendar-date key used to group publications.
func WithVelocityGrouping(g VelocityGrouping) Option {
	return func(e *Engine) {
		e.grouping = g
	}
}

// WithRelevance replaces the flat relevance factor applied to earned audience.
func WithRelevance(fn RelevanceFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.relevance = fn
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
