package retry

import (
	"math/rand"

	"github.com/vvka-141/retrier/internal/clock"
	"github.com/vvka-141/retrier/internal/logging"
	"github.com/vvka-141/retrier/pkg/retrier"
)

type options struct {
	clock      retrier.Clock
	logger     retrier.Logger
	random     func() float64
	classifier retrier.ErrorClassifier
}

// Option is a functional option for configuring a Retrier.
type Option func(*options)

// WithClock sets the clock used to schedule attempts. Useful for testing.
func WithClock(c retrier.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger sets the logger. Lines are prefixed with the run ID when the
// logger supports prefixes.
func WithLogger(l retrier.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRandom sets the source of values in [0, 1) used for jitter.
func WithRandom(f func() float64) Option {
	return func(o *options) {
		o.random = f
	}
}

// WithClassifier makes Failed settle immediately on errors the classifier
// does not consider transient.
func WithClassifier(c retrier.ErrorClassifier) Option {
	return func(o *options) {
		o.classifier = c
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:  clock.New(),
		logger: logging.NewNullLogger(),
		random: rand.Float64,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
