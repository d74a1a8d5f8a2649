package shared

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownSelector indicates a lookup or create for an unregistered selector.
	ErrUnknownSelector = errors.New("unknown selector")
	// ErrDuplicateSelector indicates an attempt to register a selector twice.
	ErrDuplicateSelector = errors.New("duplicate selector")
	// ErrSealed indicates an attempt to register in a sealed registry.
	ErrSealed = errors.New("sealed registry")
	// ErrInvalidEntry indicates a zero key or nil constructor.
	ErrInvalidEntry = errors.New("invalid key or constructor")
	// ErrConstructionFailed matches every ConstructionError.
	ErrConstructionFailed = errors.New("construction failed")
	// ErrTypeMismatch indicates a cached instance does not implement the requested type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// ConstructionError wraps a failure returned (or panic raised) by a user supplied constructor
type ConstructionError struct {
	Key string
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct %v: %v", e.Key, e.Err)
}

// Unwrap returns underlying cause
func (e *ConstructionError) Unwrap() error { return e.Err }

// Is matches ErrConstructionFailed
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstructionFailed
}

// NewConstructionError wraps err unless it is already a construction error
func NewConstructionError(key fmt.Stringer, err error) error {
	if err == nil {
		return nil
	}
	var constructionErr *ConstructionError
	if errors.As(err, &constructionErr) {
		return err
	}
	return &ConstructionError{Key: key.String(), Err: err}
}

// Errors collects errors from concurrent workers
type Errors struct {
	Errors []error
	mux    sync.Mutex
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}
	e.mux.Lock()
	defer e.mux.Unlock()
	e.Errors = append(e.Errors, err)
}

func (e *Errors) First() error {
	e.mux.Lock()
	defer e.mux.Unlock()
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}

// Join returns all collected errors joined, or nil
func (e *Errors) Join() error {
	e.mux.Lock()
	defer e.mux.Unlock()
	return errors.Join(e.Errors...)
}
