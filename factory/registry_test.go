package factory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gmetric"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
)

type product interface {
	Operation() string
}

type concreteProduct struct {
	marker string
}

func (p *concreteProduct) Operation() string {
	return "Result of Concrete " + p.marker
}

func newProduct(marker string) Constructor[product] {
	return func(ctx context.Context, args ...interface{}) (product, error) {
		return &concreteProduct{marker: marker}, nil
	}
}

func TestRegistry_Create(t *testing.T) {
	var testCases = []struct {
		description string
		register    map[key.Key]Constructor[product]
		key         key.Key
		expect      string
		expectErr   error
	}{
		{
			description: "registered selector",
			register:    map[key.Key]Constructor[product]{key.Named("product", "A"): newProduct("Product A")},
			key:         key.Named("product", "A"),
			expect:      "Result of Concrete Product A",
		},
		{
			description: "unknown selector",
			register:    map[key.Key]Constructor[product]{key.Named("product", "A"): newProduct("Product A")},
			key:         key.Named("product", "C"),
			expectErr:   shared.ErrUnknownSelector,
		},
		{
			description: "constructor failure",
			register: map[key.Key]Constructor[product]{key.Named("product", "A"): func(ctx context.Context, args ...interface{}) (product, error) {
				return nil, fmt.Errorf("channel closed")
			}},
			key:       key.Named("product", "A"),
			expectErr: shared.ErrConstructionFailed,
		},
		{
			description: "constructor panic",
			register: map[key.Key]Constructor[product]{key.Named("product", "A"): func(ctx context.Context, args ...interface{}) (product, error) {
				panic("boom")
			}},
			key:       key.Named("product", "A"),
			expectErr: shared.ErrConstructionFailed,
		},
	}

	for _, testCase := range testCases {
		registry := New[product]()
		for k, constructor := range testCase.register {
			require.Nil(t, registry.Register(k, constructor), testCase.description)
		}
		actual, err := registry.Create(context.Background(), testCase.key)
		if testCase.expectErr != nil {
			assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
			assert.Nil(t, actual, testCase.description)
			continue
		}
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, actual.Operation(), testCase.description)
	}
}

func TestRegistry_Create_IndependentInstances(t *testing.T) {
	registry := New[product]()
	k := key.Named("product", "A")
	MustRegister(registry, k, newProduct("Product A"))

	first, err := registry.Create(context.Background(), k)
	require.Nil(t, err)
	second, err := registry.Create(context.Background(), k)
	require.Nil(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "Result of Concrete Product A", first.Operation())
	assert.Equal(t, first.Operation(), second.Operation())
}

func TestRegistry_Create_Args(t *testing.T) {
	registry := New[product]()
	k := key.Named("product", "dynamic")
	MustRegister(registry, k, func(ctx context.Context, args ...interface{}) (product, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 arg, but had %v", len(args))
		}
		return &concreteProduct{marker: fmt.Sprint(args[0])}, nil
	})
	actual, err := registry.Create(context.Background(), k, "Product Z")
	require.Nil(t, err)
	assert.Equal(t, "Result of Concrete Product Z", actual.Operation())

	_, err = registry.Create(context.Background(), k)
	assert.ErrorIs(t, err, shared.ErrConstructionFailed)
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	registry := New[product]()
	k := key.Named("serializer", "json")
	require.Nil(t, registry.Register(k, newProduct("json")))

	err := registry.Register(k, newProduct("other"))
	assert.ErrorIs(t, err, shared.ErrDuplicateSelector)

	actual, err := registry.Create(context.Background(), k)
	require.Nil(t, err)
	assert.Equal(t, "Result of Concrete json", actual.Operation(), "original mapping remains in effect")
}

func TestRegistry_AllowReplace(t *testing.T) {
	registry := New[product](WithAllowReplace())
	k := key.Named("serializer", "json")
	require.Nil(t, registry.Register(k, newProduct("json")))
	require.Nil(t, registry.Register(k, newProduct("other")))
	actual, err := registry.Create(context.Background(), k)
	require.Nil(t, err)
	assert.Equal(t, "Result of Concrete other", actual.Operation())
}

func TestRegistry_Register_Invalid(t *testing.T) {
	registry := New[product]()
	assert.ErrorIs(t, registry.Register(key.Key{}, newProduct("x")), shared.ErrInvalidEntry)
	var nilConstructor Constructor[product]
	assert.ErrorIs(t, registry.Register(key.Named("product", "x"), nilConstructor), shared.ErrInvalidEntry)
}

func TestRegistry_Seal(t *testing.T) {
	registry := New[product]()
	k := key.Named("notifier", "email")
	require.Nil(t, registry.Register(k, newProduct("email")))

	assert.True(t, registry.Seal())
	assert.True(t, registry.Sealed())
	assert.False(t, registry.Seal(), "second seal is idempotent")
	assert.ErrorIs(t, registry.Register(key.Named("notifier", "sms"), newProduct("sms")), shared.ErrSealed)

	_, err := registry.Create(context.Background(), k)
	assert.Nil(t, err, "existing entry still creates")
}

func TestRegistry_SealConcurrentRegister(t *testing.T) {
	for round := 0; round < 20; round++ {
		registry := New[product]()
		const N = 50
		start := make(chan struct{})
		wg := sync.WaitGroup{}
		wg.Add(N)
		var accepted sync.Map
		for i := 0; i < N; i++ {
			go func(i int) {
				defer wg.Done()
				<-start
				k := key.Named("notifier", fmt.Sprintf("n%d", i))
				if err := registry.Register(k, newProduct(k.Name)); err == nil {
					accepted.Store(k, true)
				} else {
					assert.ErrorIs(t, err, shared.ErrSealed)
				}
			}(i)
		}
		close(start)
		registry.Seal()
		sealedLen := registry.Len()
		wg.Wait()
		assert.Equal(t, sealedLen, registry.Len(), "no entry is stored after Seal returned")
		count := 0
		accepted.Range(func(k, v interface{}) bool {
			count++
			return true
		})
		assert.Equal(t, count, registry.Len())
	}
}

func TestRegistry_Unregister(t *testing.T) {
	registry := New[product]()
	k := key.Named("notifier", "push")
	MustRegister(registry, k, newProduct("push"))
	assert.True(t, registry.Has(k))

	registry.Unregister(k)
	registry.Unregister(k)
	assert.False(t, registry.Has(k))
	_, err := registry.Create(context.Background(), k)
	assert.ErrorIs(t, err, shared.ErrUnknownSelector)
}

func TestRegistry_CaseFoldLower(t *testing.T) {
	registry := New[product](WithCaseFoldLower())
	require.Nil(t, registry.Register(key.Named("Notifier", "SMS"), newProduct("sms")))
	_, ok := registry.Lookup(key.Named("notifier", "sms"))
	assert.True(t, ok)
	actual, err := registry.Create(context.Background(), key.Named("NOTIFIER", "sms"))
	require.Nil(t, err)
	assert.Equal(t, "Result of Concrete sms", actual.Operation())
}

func TestRegistry_KeysAndEntries(t *testing.T) {
	registry := New[product]()
	items := []key.Key{
		key.Named("stage", "b"),
		key.Named("sink", "a"),
		key.Named("sink", "c"),
		key.Named("provider", "z"),
		key.Named("stage", "a"),
	}
	for _, k := range items {
		require.Nil(t, registry.Register(k, newProduct(k.Name), WithDoc("doc "+k.String())))
	}
	expect := []key.Key{
		key.Named("provider", "z"),
		key.Named("sink", "a"),
		key.Named("sink", "c"),
		key.Named("stage", "a"),
		key.Named("stage", "b"),
	}
	assert.Equal(t, expect, registry.Keys())
	assert.Equal(t, 5, registry.Len())
	entries := registry.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, "doc provider/z", entries[0].Doc)
}

func TestMustRegister_PanicsOnError(t *testing.T) {
	registry := New[product]()
	k := key.Named("sink", "stdout")
	MustRegister(registry, k, newProduct("a"))
	assert.Panics(t, func() {
		MustRegister(registry, k, newProduct("b"))
	})
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	registry := New[product](WithMetrics(gmetric.New()), WithName("product"))
	k := key.Named("product", "A")
	MustRegister(registry, k, newProduct("Product A"))

	const N = 100
	wg := sync.WaitGroup{}
	wg.Add(N)
	errs := &shared.Errors{}
	instances := make([]product, N)
	for i := 0; i < N; i++ {
		go func(i int) {
			defer wg.Done()
			instance, err := registry.Create(context.Background(), k)
			errs.Add(err)
			instances[i] = instance
		}(i)
	}
	wg.Wait()
	require.Nil(t, errs.First())
	seen := map[product]bool{}
	for _, instance := range instances {
		seen[instance] = true
	}
	assert.Len(t, seen, N, "every create returns a distinct instance")
}
