package factory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dolthub/maphash"
	csmap "github.com/mhmtszr/concurrent-swiss-map"
	"github.com/pkg/errors"
	"github.com/viant/gmetric"
	"github.com/viant/gmetric/provider"
	"github.com/viant/gmetric/stat"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
)

const createOperation = "create"

// Constructor builds a new T instance. Implementations must be safe to call concurrently.
type Constructor[T any] func(ctx context.Context, args ...interface{}) (T, error)

// Entry holds a registered constructor with its key and optional documentation.
type Entry[T any] struct {
	Key         key.Key
	Constructor Constructor[T]
	Doc         string
}

// Registry maps selectors to constructors of a capability T.
// It is safe for concurrent use, lookups are sharded by key.
type Registry[T any] struct {
	options *Options
	entries *csmap.CsMap[key.Key, *Entry[T]]
	regMux  sync.Mutex // serializes Register/Unregister
	sealed  atomic.Bool
	counter *gmetric.Operation
}

// New creates an empty registry with the provided options.
func New[T any](opts ...Option) *Registry[T] {
	options := NewOptions(opts...)
	if options.shardCount <= 0 {
		options.shardCount = shared.DefaultShardCount
	}
	hasher := maphash.NewHasher[key.Key]()
	ret := &Registry[T]{
		options: options,
		entries: csmap.Create[key.Key, *Entry[T]](
			csmap.WithShardCount[key.Key, *Entry[T]](uint64(options.shardCount)),
			csmap.WithCustomHasher[key.Key, *Entry[T]](hasher.Hash),
		),
	}
	ret.ensureCounter()
	return ret
}

func (r *Registry[T]) ensureCounter() {
	if r.options.metrics == nil {
		return
	}
	name := r.Name()
	r.counter = r.options.metrics.MultiOperationCounter(reflect.TypeOf(r).Elem().PkgPath(), name+"_"+createOperation, name+" "+createOperation+" operation", time.Microsecond, time.Minute, 2, provider.NewBasic())
}

// Name returns registry name, defaults to capability type name
func (r *Registry[T]) Name() string {
	if r.options.name != "" {
		return r.options.name
	}
	var t T
	rType := reflect.TypeOf(&t).Elem()
	return rType.Name()
}

// Normalize returns the canonical form of the key used for storage
func (r *Registry[T]) Normalize(k key.Key) key.Key {
	if r.options.Normalizer != nil {
		return r.options.Normalizer(k)
	}
	return k
}

// Sealed reports whether the registry is sealed (no further registrations allowed).
func (r *Registry[T]) Sealed() bool { return r.sealed.Load() }

// Seal prevents further registrations. It is idempotent and safe for concurrent use.
// Returns true if this call changed the state from unsealed to sealed.
// Once Seal returns, no in-flight Register can store an entry.
func (r *Registry[T]) Seal() bool {
	r.regMux.Lock()
	defer r.regMux.Unlock()
	return !r.sealed.Swap(true)
}

// Register adds a constructor for the given key. It returns an error if the key already
// exists (unless WithAllowReplace was set), is incomplete or the registry is sealed.
func (r *Registry[T]) Register(k key.Key, constructor Constructor[T], options ...RegOption) error {
	if r.Sealed() {
		return errors.Wrapf(shared.ErrSealed, "failed to register %v", k)
	}
	if k.IsZero() || constructor == nil {
		return errors.Wrapf(shared.ErrInvalidEntry, "failed to register %v", k)
	}
	k = r.Normalize(k)
	regOpts := &regOptions{}
	for _, opt := range options {
		opt(regOpts)
	}

	r.regMux.Lock()
	defer r.regMux.Unlock()
	if r.Sealed() {
		return errors.Wrapf(shared.ErrSealed, "failed to register %v", k)
	}
	if r.entries.Has(k) && !r.options.AllowReplace {
		return errors.Wrapf(shared.ErrDuplicateSelector, "%v", k)
	}
	r.entries.Store(k, &Entry[T]{Key: k, Constructor: constructor, Doc: regOpts.doc})
	r.options.logger.V(1).Info("registered", "registry", r.Name(), "key", k.String())
	return nil
}

// MustRegister panics on registration error. Useful from init() blocks.
func MustRegister[T any](r *Registry[T], k key.Key, constructor Constructor[T], options ...RegOption) {
	if err := r.Register(k, constructor, options...); err != nil {
		panic(err)
	}
}

// Unregister removes constructor for the key, missing key is a no-op
func (r *Registry[T]) Unregister(k key.Key) {
	k = r.Normalize(k)
	r.regMux.Lock()
	defer r.regMux.Unlock()
	r.entries.Delete(k)
}

// Lookup returns the constructor for key k, if present.
func (r *Registry[T]) Lookup(k key.Key) (Constructor[T], bool) {
	entry, ok := r.entries.Load(r.Normalize(k))
	if !ok {
		return nil, false
	}
	return entry.Constructor, true
}

// Has returns true if the key is registered
func (r *Registry[T]) Has(k key.Key) bool {
	return r.entries.Has(r.Normalize(k))
}

// Create locates the constructor for key k and invokes it with args.
// Each call returns a new instance.
func (r *Registry[T]) Create(ctx context.Context, k key.Key, args ...interface{}) (result T, err error) {
	var stats *stat.Values
	if r.counter != nil {
		stats = stat.New()
		onDone := r.counter.Begin(time.Now())
		defer func() {
			if err != nil {
				stats.Append(err)
			}
			onDone(time.Now(), stats)
		}()
	}
	k = r.Normalize(k)
	entry, ok := r.entries.Load(k)
	if !ok {
		return result, errors.Wrapf(shared.ErrUnknownSelector, "%v", k)
	}
	result, err = invoke(ctx, entry.Constructor, args)
	if err != nil {
		var zero T
		r.options.logger.Error(err, "failed to create", "registry", r.Name(), "key", k.String())
		return zero, shared.NewConstructionError(k, err)
	}
	return result, nil
}

func invoke[T any](ctx context.Context, constructor Constructor[T], args []interface{}) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("constructor panic: %v", r)
		}
	}()
	return constructor(ctx, args...)
}

// Len returns number of registered entries
func (r *Registry[T]) Len() int {
	return r.entries.Count()
}

// Keys returns all registered keys in deterministic (lexicographic) order.
func (r *Registry[T]) Keys() []key.Key {
	entries := r.Entries()
	keys := make([]key.Key, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Entries returns a snapshot of all registered entries in deterministic order.
func (r *Registry[T]) Entries() []Entry[T] {
	items := make([]Entry[T], 0, r.entries.Count())
	r.entries.Range(func(k key.Key, entry *Entry[T]) bool {
		items = append(items, *entry)
		return false
	})
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key.Less(items[j].Key)
	})
	return items
}
