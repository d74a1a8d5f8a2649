package singleton

import (
	"sync"
	"sync/atomic"
	"time"
)

type (
	instance struct {
		value   interface{}
		id      string
		created time.Time
	}

	// failure records the error of a completed construction attempt
	failure struct {
		attempt uint64
		err     error
	}

	// slot holds at most one instance per key, mux is held for the whole construction
	slot struct {
		mux          sync.Mutex
		constructing atomic.Bool
		ready        atomic.Pointer[instance]
		attempts     atomic.Uint64 // completed construction attempts
		failed       atomic.Pointer[failure]
		waiting      atomic.Int32 // callers blocked on mux
	}
)

func (s *slot) state() State {
	if s.ready.Load() != nil {
		return Ready
	}
	if s.constructing.Load() {
		return Constructing
	}
	return Empty
}

// lock acquires the construction lock and returns the failure of an attempt
// that completed while the caller was waiting, if any
func (s *slot) lock() *failure {
	attempt := s.attempts.Load()
	s.waiting.Add(1)
	s.mux.Lock()
	s.waiting.Add(-1)
	if s.attempts.Load() == attempt {
		return nil
	}
	if last := s.failed.Load(); last != nil && last.attempt == s.attempts.Load() {
		return last
	}
	return nil
}

func (s *slot) succeeded(inst *instance) {
	s.ready.Store(inst)
	s.failed.Store(nil)
	s.attempts.Add(1)
	s.constructing.Store(false)
}

func (s *slot) fail(err error) {
	s.failed.Store(&failure{attempt: s.attempts.Load() + 1, err: err})
	s.attempts.Add(1)
	s.constructing.Store(false)
}
