package lang

import "github.com/ardnew/dopa/log"

// DefaultMaxDepth is the default limit on nested user function calls.
const DefaultMaxDepth = 4096

// Option configures an [Interpreter] or [Compile].
type Option func(options) options

type options struct {
	logger   log.Logger
	maxDepth int
}

func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		o = opt(o)
	}

	return o
}

// WithLogger sets the logger receiving trace events. The zero Logger
// discards them.
func WithLogger(logger log.Logger) Option {
	return func(o options) options {
		o.logger = logger

		return o
	}
}

// WithMaxDepth limits how deeply user functions may recurse. Values below 1
// keep the default.
func WithMaxDepth(depth int) Option {
	return func(o options) options {
		if depth > 0 {
			o.maxDepth = depth
		}

		return o
	}
}
