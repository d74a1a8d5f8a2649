package singleton

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
)

// Get returns the typed instance for the key, constructing it at most once
func Get[T any](ctx context.Context, m *Manager, k key.Key, constructor func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if constructor == nil {
		return zero, errors.Wrapf(shared.ErrInvalidEntry, "failed to get %v", k)
	}
	value, err := m.GetOrCreate(ctx, k, func(ctx context.Context) (interface{}, error) {
		return constructor(ctx)
	})
	if err != nil {
		return zero, err
	}
	return cast[T](k, value)
}

// Of returns the typed instance keyed by T's type key
func Of[T any](ctx context.Context, m *Manager, constructor func(ctx context.Context) (T, error)) (T, error) {
	return Get[T](ctx, m, key.Of[T](), constructor)
}

// Lookup returns the typed instance if the slot is ready
func Lookup[T any](m *Manager, k key.Key) (T, bool, error) {
	var zero T
	value, ok := m.Peek(k)
	if !ok {
		return zero, false, nil
	}
	ret, err := cast[T](k, value)
	return ret, err == nil, err
}

func cast[T any](k key.Key, value interface{}) (T, error) {
	ret, ok := value.(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(shared.ErrTypeMismatch, "%v: expected %v, but had %T", k, reflect.TypeOf((*T)(nil)).Elem(), value)
	}
	return ret, nil
}
