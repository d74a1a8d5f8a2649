package catalog

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/viant/gmetric"
	"github.com/viant/lifecycle/singleton"
)

type (
	// Options represents catalog options
	Options struct {
		metrics   *gmetric.Service
		logger    logr.Logger
		observers []singleton.Observer
		writer    io.Writer
	}

	// Option represents catalog option
	Option func(o *Options)
)

// NewOptions creates options
func NewOptions(opts ...Option) *Options {
	ret := &Options{logger: logr.Discard(), writer: os.Stdout}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// WithMetrics sets metrics service shared by registries and the manager
func WithMetrics(metrics *gmetric.Service) Option {
	return func(o *Options) { o.metrics = metrics }
}

// WithLogger sets a logger
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

// WithObserver adds singleton transition observer
func WithObserver(observer singleton.Observer) Option {
	return func(o *Options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithWriter sets stdout sink and demo output
func WithWriter(writer io.Writer) Option {
	return func(o *Options) {
		if writer != nil {
			o.writer = writer
		}
	}
}
