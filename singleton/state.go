package singleton

import (
	"time"

	"github.com/viant/lifecycle/key"
)

// State represents singleton slot state
type State int32

const (
	// Empty slot has no instance
	Empty State = iota
	// Constructing slot has a constructor in flight
	Constructing
	// Ready slot holds the instance
	Ready
)

func (s State) String() string {
	switch s {
	case Constructing:
		return "constructing"
	case Ready:
		return "ready"
	default:
		return "empty"
	}
}

type (
	// Event represents slot state transition
	Event struct {
		Key        key.Key
		From       State
		To         State
		InstanceID string
		Err        error
		At         time.Time
	}

	// Observer observes slot transitions, it is called while the slot is locked
	// and must not call back into the manager for the same key.
	Observer interface {
		Observe(event *Event)
	}

	// ObserverFunc adapts a function to Observer
	ObserverFunc func(event *Event)

	// Info represents slot snapshot
	Info struct {
		Key        key.Key
		State      State
		InstanceID string
		Created    *time.Time
	}
)

// Observe calls fn
func (fn ObserverFunc) Observe(event *Event) {
	fn(event)
}
