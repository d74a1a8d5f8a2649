package singleton

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/gmetric"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
)

type logSink struct {
	lines []string
}

func (s *logSink) Log(message string) {
	s.lines = append(s.lines, message)
}

type recorder struct {
	mux    sync.Mutex
	events []Event
}

func (r *recorder) Observe(event *Event) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.events = append(r.events, *event)
}

func (r *recorder) transitions() []string {
	r.mux.Lock()
	defer r.mux.Unlock()
	var result []string
	for _, event := range r.events {
		result = append(result, event.From.String()+"->"+event.To.String())
	}
	return result
}

func TestManager_GetOrCreate_Concurrent(t *testing.T) {
	manager := New(WithMetrics(gmetric.New()))
	k := key.Named("logger", "app")
	var counter int32
	constructor := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&counter, 1)
		time.Sleep(5 * time.Millisecond)
		return &logSink{}, nil
	}

	const callers = 50
	start := make(chan struct{})
	wg := sync.WaitGroup{}
	wg.Add(callers)
	instances := make([]interface{}, callers)
	errs := &shared.Errors{}
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			instance, err := manager.GetOrCreate(context.Background(), k, constructor)
			errs.Add(err)
			instances[i] = instance
		}(i)
	}
	close(start)
	wg.Wait()

	require.Nil(t, errs.First())
	assert.EqualValues(t, 1, atomic.LoadInt32(&counter))
	for i := 1; i < callers; i++ {
		assert.Same(t, instances[0], instances[i])
	}
	assert.Equal(t, Ready, manager.State(k))
	assert.Equal(t, []key.Key{k}, manager.Keys())
}

func TestManager_GetOrCreate_RetryAfterFailure(t *testing.T) {
	events := &recorder{}
	manager := New(WithObserver(events))
	k := key.Named("cache", "memory")
	cause := fmt.Errorf("backing store unavailable")

	_, err := manager.GetOrCreate(context.Background(), k, func(ctx context.Context) (interface{}, error) {
		return nil, cause
	})
	assert.ErrorIs(t, err, shared.ErrConstructionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Empty, manager.State(k))

	instance, err := manager.GetOrCreate(context.Background(), k, func(ctx context.Context) (interface{}, error) {
		return &logSink{}, nil
	})
	require.Nil(t, err)
	assert.NotNil(t, instance)
	assert.Equal(t, Ready, manager.State(k))
	assert.Equal(t, []string{"empty->constructing", "constructing->empty", "empty->constructing", "constructing->ready"}, events.transitions())
}

func TestManager_GetOrCreate_Failures(t *testing.T) {
	var testCases = []struct {
		description string
		key         key.Key
		constructor Constructor
		expectErr   error
	}{
		{
			description: "panic",
			key:         key.Named("sink", "panic"),
			constructor: func(ctx context.Context) (interface{}, error) { panic("boom") },
			expectErr:   shared.ErrConstructionFailed,
		},
		{
			description: "nil instance",
			key:         key.Named("sink", "nil"),
			constructor: func(ctx context.Context) (interface{}, error) { return nil, nil },
			expectErr:   shared.ErrConstructionFailed,
		},
		{
			description: "typed nil instance",
			key:         key.Named("sink", "typed-nil"),
			constructor: func(ctx context.Context) (interface{}, error) { return (*logSink)(nil), nil },
			expectErr:   shared.ErrConstructionFailed,
		},
		{
			description: "zero key",
			key:         key.Key{},
			constructor: func(ctx context.Context) (interface{}, error) { return 1, nil },
			expectErr:   shared.ErrInvalidEntry,
		},
		{
			description: "nil constructor",
			key:         key.Named("sink", "none"),
			expectErr:   shared.ErrInvalidEntry,
		},
	}
	for _, testCase := range testCases {
		manager := New()
		actual, err := manager.GetOrCreate(context.Background(), testCase.key, testCase.constructor)
		assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
		assert.Nil(t, actual, testCase.description)
		assert.Equal(t, Empty, manager.State(testCase.key), testCase.description)
	}
}

func waiting(manager *Manager, k key.Key) int32 {
	aSlot := manager.shard(k).lookup(k)
	if aSlot == nil {
		return 0
	}
	return aSlot.waiting.Load()
}

func TestManager_GetOrCreate_WaitersReceiveFailure(t *testing.T) {
	manager := New()
	k := key.Named("settings", "app")
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	cause := fmt.Errorf("invalid settings")
	winnerErr := make(chan error, 1)
	go func() {
		_, err := manager.GetOrCreate(context.Background(), k, func(ctx context.Context) (interface{}, error) {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			return nil, cause
		})
		winnerErr <- err
	}()
	<-started
	assert.Equal(t, Constructing, manager.State(k))

	const waiters = 10
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			_, err := manager.GetOrCreate(context.Background(), k, func(ctx context.Context) (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				return &logSink{}, nil
			})
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return waiting(manager, k) == waiters }, 2*time.Second, time.Millisecond)
	close(release)

	first := <-winnerErr
	assert.ErrorIs(t, first, cause)
	for i := 0; i < waiters; i++ {
		err := <-errs
		assert.ErrorIs(t, err, shared.ErrConstructionFailed)
		assert.ErrorIs(t, err, cause)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "waiters do not rerun a failed construction")
	assert.Equal(t, Empty, manager.State(k))

	instance, err := manager.GetOrCreate(context.Background(), k, func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return &logSink{}, nil
	})
	require.Nil(t, err, "next call retries")
	assert.NotNil(t, instance)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Equal(t, Ready, manager.State(k))
}

func TestManager_GetOrCreate_KeysDoNotSerialize(t *testing.T) {
	manager := New(WithShardCount(1))
	slow := key.Named("notifier", "push")
	fast := key.Named("notifier", "email")
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = manager.GetOrCreate(context.Background(), slow, func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return &logSink{}, nil
		})
	}()
	<-started
	defer close(release)

	done := make(chan struct{})
	go func() {
		_, err := manager.GetOrCreate(context.Background(), fast, func(ctx context.Context) (interface{}, error) {
			return &logSink{}, nil
		})
		assert.Nil(t, err)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("unrelated key was blocked by in-flight construction")
	}
}

func TestManager_GetOrCreate_CancelledWaiter(t *testing.T) {
	manager := New()
	k := key.Named("logger", "app")
	started := make(chan struct{})
	release := make(chan struct{})
	winner := &logSink{}
	go func() {
		_, _ = manager.GetOrCreate(context.Background(), k, func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return winner, nil
		})
	}()
	<-started
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan interface{})
	go func() {
		instance, err := manager.GetOrCreate(ctx, k, func(ctx context.Context) (interface{}, error) {
			return &logSink{}, nil
		})
		assert.Nil(t, err)
		done <- instance
	}()
	require.Eventually(t, func() bool { return waiting(manager, k) == 1 }, 2*time.Second, time.Millisecond)
	cancel()
	close(release)
	assert.Same(t, winner, <-done)
}

func TestManager_Reset(t *testing.T) {
	events := &recorder{}
	manager := New(WithObserver(events))
	first := key.Named("cache", "memory")
	second := key.Named("settings", "app")
	newSink := func(ctx context.Context) (interface{}, error) { return &logSink{}, nil }

	a1, err := manager.GetOrCreate(context.Background(), first, newSink)
	require.Nil(t, err)
	b1, err := manager.GetOrCreate(context.Background(), second, newSink)
	require.Nil(t, err)
	assert.Equal(t, 2, manager.Len())

	manager.Reset(first)
	manager.Reset(key.Named("missing", "key"))
	assert.Equal(t, Empty, manager.State(first))
	_, ok := manager.Peek(first)
	assert.False(t, ok)
	a2, err := manager.GetOrCreate(context.Background(), first, newSink)
	require.Nil(t, err)
	assert.NotSame(t, a1, a2)

	manager.ResetAll()
	assert.Equal(t, 0, manager.Len())
	b2, err := manager.GetOrCreate(context.Background(), second, newSink)
	require.Nil(t, err)
	assert.NotSame(t, b1, b2)
	assert.Contains(t, events.transitions(), "ready->empty")
}

func TestManager_Snapshot(t *testing.T) {
	manager := New()
	_, err := manager.GetOrCreate(context.Background(), key.Named("b", "x"), func(ctx context.Context) (interface{}, error) { return 1, nil })
	require.Nil(t, err)
	_, _ = manager.GetOrCreate(context.Background(), key.Named("a", "x"), func(ctx context.Context) (interface{}, error) { return nil, fmt.Errorf("failed") })

	snapshot := manager.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, key.Named("a", "x"), snapshot[0].Key)
	assert.Equal(t, Empty, snapshot[0].State)
	assert.Equal(t, Ready, snapshot[1].State)
	assert.NotEmpty(t, snapshot[1].InstanceID)
	assert.NotNil(t, snapshot[1].Created)
}

func TestGet_Typed(t *testing.T) {
	manager := New()
	k := key.Named("logger", "app")
	sink, err := Get(context.Background(), manager, k, func(ctx context.Context) (*logSink, error) {
		return &logSink{}, nil
	})
	require.Nil(t, err)
	sink.Log("first")

	again, err := Get(context.Background(), manager, k, func(ctx context.Context) (*logSink, error) {
		return nil, fmt.Errorf("not expected to be called")
	})
	require.Nil(t, err)
	assert.Same(t, sink, again)
	assert.Equal(t, []string{"first"}, again.lines)

	_, err = Get(context.Background(), manager, k, func(ctx context.Context) (string, error) { return "", nil })
	assert.ErrorIs(t, err, shared.ErrTypeMismatch)

	found, ok, err := Lookup[*logSink](manager, k)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Same(t, sink, found)
}

func TestOf(t *testing.T) {
	manager := New()
	first, err := Of(context.Background(), manager, func(ctx context.Context) (*logSink, error) { return &logSink{}, nil })
	require.Nil(t, err)
	second, err := Of(context.Background(), manager, func(ctx context.Context) (*logSink, error) { return &logSink{}, nil })
	require.Nil(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, Ready, manager.State(key.Of[*logSink]()))
}
