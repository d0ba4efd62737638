package runtime

import (
	"time"

	"github.com/voocel/recon/observer"
)

// BackoffFunc computes the delay before the (n+1)th replan attempt, n being
// the number of failed attempts so far in this run.
type BackoffFunc func(n int) time.Duration

// Options controls Runtime behavior.
type Options struct {
	Follow         bool
	MaxRetries     int
	MaxWaitMs      int
	MinWaitMs      int
	Backoff        BackoffFunc
	Sink           observer.Sink
	MaxSearchDepth int
}

// Option configures Options at construction.
type Option func(*Options)

// WithFollow re-plans on every sensor update when enabled.
func WithFollow(follow bool) Option { return func(o *Options) { o.Follow = follow } }

// WithMaxRetries bounds failed attempts (planning failures and failed
// action runs); 0 means unlimited.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MaxRetries = n
		}
	}
}

// WithMaxWaitMs bounds the inter-attempt delay from above.
func WithMaxWaitMs(ms int) Option {
	return func(o *Options) {
		if ms > 0 {
			o.MaxWaitMs = ms
		}
	}
}

// WithMinWaitMs bounds the inter-attempt delay from below and is the
// default backoff base.
func WithMinWaitMs(ms int) Option {
	return func(o *Options) {
		if ms > 0 {
			o.MinWaitMs = ms
		}
	}
}

// WithBackoff installs a custom backoff function, overriding the default
// min(2^n * minWaitMs, maxWaitMs).
func WithBackoff(fn BackoffFunc) Option { return func(o *Options) { o.Backoff = fn } }

// WithSink installs the structured-event sink (see the observer package).
func WithSink(sink observer.Sink) Option {
	return func(o *Options) {
		if sink != nil {
			o.Sink = sink
		}
	}
}

// WithMaxSearchDepth sets the search depth bound that recon.New passes to
// the default Planner it builds. Runtime itself does not read it: a
// Planner handed to New keeps its own bound.
func WithMaxSearchDepth(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxSearchDepth = n
		}
	}
}

func defaultOptions() Options {
	return Options{
		MaxRetries:     0,
		MaxWaitMs:      30_000,
		MinWaitMs:      200,
		Sink:           observer.NoopSink{},
		MaxSearchDepth: 64,
	}
}

// ResolveOptions applies opts over the defaults and returns the result,
// letting a caller (e.g. the root package, building a default Planner)
// read back settings like MaxSearchDepth/Sink that the Planner itself
// needs before a Runtime exists to hold them.
func ResolveOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) backoff(tries int) time.Duration {
	fn := o.Backoff
	if fn == nil {
		fn = func(n int) time.Duration {
			d := time.Duration(o.MinWaitMs) * time.Millisecond
			for i := 0; i < n; i++ {
				d *= 2
				if int(d.Milliseconds()) >= o.MaxWaitMs {
					return time.Duration(o.MaxWaitMs) * time.Millisecond
				}
			}
			return d
		}
	}
	d := fn(tries)
	min := time.Duration(o.MinWaitMs) * time.Millisecond
	max := time.Duration(o.MaxWaitMs) * time.Millisecond
	if d < min {
		d = min
	}
	if d > max {
		d = max
	}
	return d
}
