package template

import "github.com/ardnew/ruiner/log"

// DefaultMaxDepth is the default bound on nested references.
const DefaultMaxDepth = 100

// config holds the render configuration.
type config struct {
	maxDepth int
	logger   log.Logger
}

// Option applies a configuration option to config.
type Option func(config) config

func makeConfig(opts ...Option) config {
	return apply(config{maxDepth: DefaultMaxDepth}, opts...)
}

// apply applies multiple options to a config.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithMaxDepth returns a functional option that bounds the number of nested
// references a render may follow. A value less than 1 restores
// [DefaultMaxDepth].
func WithMaxDepth(n int) Option {
	return func(c config) config {
		if n < 1 {
			n = DefaultMaxDepth
		}

		c.maxDepth = n

		return c
	}
}

// WithLogger returns a functional option that sets the logger receiving
// render traces. The zero [log.Logger] discards everything.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}
