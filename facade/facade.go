package facade

import (
	"context"
	"sync"

	"github.com/viant/lifecycle/factory"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
	"github.com/viant/lifecycle/singleton"
)

// Facade resolves shared instances of T: the first Get of a key creates it with the
// registry, later calls return the same instance.
type Facade[T any] struct {
	registry    *factory.Registry[T]
	manager     *singleton.Manager
	concurrency int
}

// Registry returns underlying factory registry
func (f *Facade[T]) Registry() *factory.Registry[T] {
	return f.registry
}

// Manager returns underlying singleton manager
func (f *Facade[T]) Manager() *singleton.Manager {
	return f.manager
}

// Get returns the shared instance for the key.
// Factory failures, unknown selector included, are reported as construction errors.
func (f *Facade[T]) Get(ctx context.Context, k key.Key) (T, error) {
	k = f.registry.Normalize(k)
	return singleton.Get[T](ctx, f.manager, k, func(ctx context.Context) (T, error) {
		return f.registry.Create(ctx, k)
	})
}

// Create returns a fresh, unshared instance
func (f *Facade[T]) Create(ctx context.Context, k key.Key, args ...interface{}) (T, error) {
	return f.registry.Create(ctx, k, args...)
}

// WarmUp materializes shared instances for the keys, returns the first error
func (f *Facade[T]) WarmUp(ctx context.Context, keys ...key.Key) error {
	if len(keys) == 0 {
		return nil
	}
	errors := shared.Errors{}
	wg := sync.WaitGroup{}
	wg.Add(len(keys))
	rateLimiter := make(chan bool, f.concurrency)
	for _, k := range keys {
		go func(k key.Key) {
			defer wg.Done()
			rateLimiter <- true
			if _, err := f.Get(ctx, k); err != nil {
				errors.Add(err)
			}
			<-rateLimiter
		}(k)
	}
	wg.Wait()
	return errors.First()
}

// Reset discards the shared instance for the key, intended for tests
func (f *Facade[T]) Reset(k key.Key) {
	f.manager.Reset(f.registry.Normalize(k))
}

// New creates a facade
func New[T any](registry *factory.Registry[T], manager *singleton.Manager, opts ...Option) *Facade[T] {
	o := &options{concurrency: shared.DefaultConcurrency}
	for _, opt := range opts {
		opt(o)
	}
	return &Facade[T]{registry: registry, manager: manager, concurrency: o.concurrency}
}
