package facade

type (
	options struct {
		concurrency int
	}

	// Option represents facade option
	Option func(o *options)
)

// WithConcurrency sets max number of concurrent warm-up constructions
func WithConcurrency(concurrency int) Option {
	return func(o *options) {
		if concurrency > 0 {
			o.concurrency = concurrency
		}
	}
}
