package singleton

import (
	"github.com/go-logr/logr"
	"github.com/viant/gmetric"
)

type (
	// Options represents manager options
	Options struct {
		shardCount int
		shardSize  int
		metrics    *gmetric.Service
		logger     logr.Logger
		observers  []Observer
		name       string
	}

	// Option represents manager option
	Option func(o *Options)
)

// NewOptions creates options
func NewOptions(options ...Option) *Options {
	ret := &Options{logger: logr.Discard(), name: "singleton"}
	ret.Apply(options...)
	return ret
}

// Apply applies options
func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithShardCount sets number of slot shards
func WithShardCount(count int) Option {
	return func(o *Options) { o.shardCount = count }
}

// WithShardSize sets initial shard capacity
func WithShardSize(size int) Option {
	return func(o *Options) { o.shardSize = size }
}

// WithMetrics enables get operation counters
func WithMetrics(metrics *gmetric.Service) Option {
	return func(o *Options) { o.metrics = metrics }
}

// WithLogger sets a logger
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

// WithObserver adds slot transition observer
func WithObserver(observer Observer) Option {
	return func(o *Options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithName sets manager name, used by metrics and logs
func WithName(name string) Option {
	return func(o *Options) { o.name = name }
}
