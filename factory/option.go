package factory

import (
	"github.com/go-logr/logr"
	"github.com/viant/gmetric"
	"github.com/viant/lifecycle/key"
)

type (
	// Options control registry behavior.
	Options struct {
		// Normalizer canonicalizes keys on Register/Lookup/Create.
		// If nil, keys are used as-is.
		Normalizer key.Normalizer

		// AllowReplace, when true, permits replacing an existing constructor for the
		// same key on Register(). Disabled by default, duplicates are rejected.
		AllowReplace bool

		shardCount int
		metrics    *gmetric.Service
		logger     logr.Logger
		name       string
	}

	// Option modifies Options.
	Option func(o *Options)

	// RegOption modifies per-entry registration parameters.
	RegOption func(o *regOptions)

	regOptions struct {
		doc string
	}
)

// NewOptions creates options
func NewOptions(options ...Option) *Options {
	ret := &Options{logger: logr.Discard()}
	ret.Apply(options...)
	return ret
}

// Apply applies options
func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithNormalizer sets a custom key normalizer.
func WithNormalizer(fn key.Normalizer) Option {
	return func(o *Options) { o.Normalizer = fn }
}

// WithCaseFoldLower enables lowercase normalization for kind and name.
func WithCaseFoldLower() Option {
	return WithNormalizer(key.CaseFoldLower)
}

// WithAllowReplace allows re-registering an existing key.
func WithAllowReplace() Option {
	return func(o *Options) { o.AllowReplace = true }
}

// WithShardCount sets number of entry shards
func WithShardCount(count int) Option {
	return func(o *Options) { o.shardCount = count }
}

// WithMetrics enables create operation counters
func WithMetrics(metrics *gmetric.Service) Option {
	return func(o *Options) { o.metrics = metrics }
}

// WithLogger sets a logger
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

// WithName sets registry name, used by metrics and logs
func WithName(name string) Option {
	return func(o *Options) { o.name = name }
}

// WithDoc attaches a human-readable note to the entry.
func WithDoc(doc string) RegOption {
	return func(o *regOptions) { o.doc = doc }
}
