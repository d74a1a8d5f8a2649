package catalog

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/lifecycle/catalog/cache"
	"github.com/viant/lifecycle/catalog/codec"
	"github.com/viant/lifecycle/catalog/notify"
	"github.com/viant/lifecycle/catalog/product"
	"github.com/viant/lifecycle/catalog/settings"
	"github.com/viant/lifecycle/catalog/sink"
	"github.com/viant/lifecycle/config"
	"github.com/viant/lifecycle/facade"
	"github.com/viant/lifecycle/factory"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
	"github.com/viant/lifecycle/singleton"
)

// Catalog holds every built-in registry sharing one singleton manager
type Catalog struct {
	config      *config.Config
	options     *Options
	Manager     *singleton.Manager
	Products    *facade.Facade[product.Product]
	Notifiers   *facade.Facade[notify.Notifier]
	Serializers *facade.Facade[codec.Serializer]
	Sinks       *facade.Facade[sink.Sink]
}

// Cache returns the shared in-memory cache
func (c *Catalog) Cache(ctx context.Context) (*cache.Store, error) {
	return singleton.Get(ctx, c.Manager, cache.Key, func(ctx context.Context) (*cache.Store, error) {
		return cache.New(c.config.Cache), nil
	})
}

// Settings returns the shared application settings
func (c *Catalog) Settings(ctx context.Context) (*settings.Settings, error) {
	return singleton.Get(ctx, c.Manager, settings.Key, func(ctx context.Context) (*settings.Settings, error) {
		return settings.New(ctx, c.config.Settings)
	})
}

// Get returns the shared instance for any catalog selector
func (c *Catalog) Get(ctx context.Context, k key.Key) (interface{}, error) {
	if c.config.Registry.CaseFold {
		k = key.CaseFoldLower(k)
	}
	switch {
	case k == cache.Key:
		return c.Cache(ctx)
	case k == settings.Key:
		return c.Settings(ctx)
	}
	switch k.Kind {
	case product.Kind:
		return c.Products.Get(ctx, k)
	case notify.Kind:
		return c.Notifiers.Get(ctx, k)
	case codec.Kind:
		return c.Serializers.Get(ctx, k)
	case sink.Kind:
		return c.Sinks.Get(ctx, k)
	}
	return nil, errors.Wrapf(shared.ErrUnknownSelector, "%v", k)
}

// WarmUp materializes configured singletons, returns the first error.
// Factory selectors warm up through their facades, kinds run concurrently.
func (c *Catalog) WarmUp(ctx context.Context) error {
	keys, err := c.config.WarmUpKeys()
	if err != nil {
		return err
	}
	byKind := map[string][]key.Key{}
	for _, k := range keys {
		if c.config.Registry.CaseFold {
			k = key.CaseFoldLower(k)
		}
		byKind[k.Kind] = append(byKind[k.Kind], k)
	}
	errs := shared.Errors{}
	wg := sync.WaitGroup{}
	for kind, kindKeys := range byKind {
		warmUp := c.warmUpFunc(kind)
		wg.Add(1)
		go func(kindKeys []key.Key) {
			defer wg.Done()
			errs.Add(warmUp(ctx, kindKeys...))
		}(kindKeys)
	}
	wg.Wait()
	return errs.First()
}

func (c *Catalog) warmUpFunc(kind string) func(ctx context.Context, keys ...key.Key) error {
	switch kind {
	case product.Kind:
		return c.Products.WarmUp
	case notify.Kind:
		return c.Notifiers.WarmUp
	case codec.Kind:
		return c.Serializers.WarmUp
	case sink.Kind:
		return c.Sinks.WarmUp
	}
	return func(ctx context.Context, keys ...key.Key) error {
		for _, k := range keys {
			if _, err := c.Get(ctx, k); err != nil {
				return err
			}
		}
		return nil
	}
}

// Close closes every constructed sink
func (c *Catalog) Close() error {
	errs := shared.Errors{}
	for _, k := range c.Sinks.Registry().Keys() {
		if aSink, ok, _ := singleton.Lookup[sink.Sink](c.Manager, k); ok {
			errs.Add(aSink.Close())
		}
	}
	return errs.First()
}

func registryOptions(cfg *config.Config, options *Options, name string) []factory.Option {
	result := []factory.Option{factory.WithName(name), factory.WithLogger(options.logger)}
	if options.metrics != nil {
		result = append(result, factory.WithMetrics(options.metrics))
	}
	if cfg.Registry.AllowReplace {
		result = append(result, factory.WithAllowReplace())
	}
	if cfg.Registry.CaseFold {
		result = append(result, factory.WithCaseFoldLower())
	}
	return result
}

// New creates a catalog with built-in registrations
func New(cfg *config.Config, opts ...Option) (*Catalog, error) {
	if cfg == nil {
		cfg = &config.Config{}
		cfg.Init()
	}
	options := NewOptions(opts...)
	managerOptions := []singleton.Option{
		singleton.WithShardCount(cfg.Singleton.ShardCount),
		singleton.WithLogger(options.logger),
	}
	if options.metrics != nil {
		managerOptions = append(managerOptions, singleton.WithMetrics(options.metrics))
	}
	for _, observer := range options.observers {
		managerOptions = append(managerOptions, singleton.WithObserver(observer))
	}
	manager := singleton.New(managerOptions...)

	products := factory.New[product.Product](registryOptions(cfg, options, product.Kind)...)
	notifiers := factory.New[notify.Notifier](registryOptions(cfg, options, notify.Kind)...)
	serializers := factory.New[codec.Serializer](registryOptions(cfg, options, codec.Kind)...)
	sinks := factory.New[sink.Sink](registryOptions(cfg, options, sink.Kind)...)
	errs := shared.Errors{}
	errs.Add(product.Register(products))
	errs.Add(notify.Register(notifiers, cfg.Push))
	errs.Add(codec.Register(serializers))
	errs.Add(sink.Register(sinks, cfg.Sink, options.writer))
	if err := errs.First(); err != nil {
		return nil, err
	}
	if cfg.Registry.Seal {
		products.Seal()
		notifiers.Seal()
		serializers.Seal()
		sinks.Seal()
	}
	return &Catalog{
		config:      cfg,
		options:     options,
		Manager:     manager,
		Products:    facade.New(products, manager),
		Notifiers:   facade.New(notifiers, manager),
		Serializers: facade.New(serializers, manager),
		Sinks:       facade.New(sinks, manager),
	}, nil
}
