package seojob

import "time"

// Options configures the service and its batch worker.
type Options struct {
	// Concurrency bounds how many jobs of one batch run at once.
	Concurrency int

	// GenerateTimeout bounds every generator call.
	GenerateTimeout time.Duration

	// Throttle, when set, is awaited before each generator call. Time spent
	// waiting does not count against GenerateTimeout.
	Throttle Throttle

	// StaleAfter is the default age after which a processing job is
	// considered abandoned.
	StaleAfter time.Duration

	// Now is the clock, overridable in tests.
	Now func() time.Time
}

func defaultOptions() Options {
	return Options{
		Concurrency:     3,
		GenerateTimeout: 30 * time.Second,
		StaleAfter:      15 * time.Minute,
		Now:             func() time.Time { return time.Now().UTC() },
	}
}

// Option is a functional option for configuring the service.
type Option func(*Options)

// WithConcurrency sets the per-batch worker count.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithGenerateTimeout sets the deadline for each generator call.
func WithGenerateTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.GenerateTimeout = d
		}
	}
}

// WithStaleAfter sets the default stale-processing threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.StaleAfter = d
		}
	}
}

// WithThrottle paces generator calls, e.g. with a shared rate limit.
func WithThrottle(t Throttle) Option {
	return func(o *Options) {
		o.Throttle = t
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
	}
}
