package singleton

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/dolthub/maphash"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/viant/gmetric"
	"github.com/viant/gmetric/provider"
	"github.com/viant/gmetric/stat"
	"github.com/viant/lifecycle/key"
	"github.com/viant/lifecycle/shared"
)

const (
	getOperation     = "get"
	defaultShardSize = 16
)

// Constructor creates a singleton instance
type Constructor func(ctx context.Context) (interface{}, error)

// Manager holds at most one live instance per key.
// Slot allocation is sharded, construction is coordinated per key so
// a slow constructor never blocks unrelated keys.
type Manager struct {
	options *Options
	shards  []*shard
	hasher  maphash.Hasher[key.Key]
	counter *gmetric.Operation
}

// New creates a manager
func New(opts ...Option) *Manager {
	options := NewOptions(opts...)
	if options.shardCount <= 0 {
		options.shardCount = shared.DefaultShardCount
	}
	if options.shardSize <= 0 {
		options.shardSize = defaultShardSize
	}
	ret := &Manager{
		options: options,
		shards:  make([]*shard, options.shardCount),
		hasher:  maphash.NewHasher[key.Key](),
	}
	for i := range ret.shards {
		ret.shards[i] = newShard(options.shardSize)
	}
	if options.metrics != nil {
		ret.counter = options.metrics.MultiOperationCounter(reflect.TypeOf(ret).Elem().PkgPath(), options.name+"_"+getOperation, options.name+" "+getOperation+" operation", time.Microsecond, time.Minute, 2, provider.NewBasic())
	}
	return ret
}

func (m *Manager) shard(k key.Key) *shard {
	return m.shards[m.hasher.Hash(k)%uint64(len(m.shards))]
}

// GetOrCreate returns the instance for the key, constructing it at most once.
// Callers racing on the same key block until the winner finishes; the waiting
// caller's context is not consulted, it always receives the winner's instance or failure.
// A failed attempt is not retried by its waiters, only by subsequent calls.
func (m *Manager) GetOrCreate(ctx context.Context, k key.Key, constructor Constructor) (result interface{}, err error) {
	if k.IsZero() || constructor == nil {
		return nil, errors.Wrapf(shared.ErrInvalidEntry, "failed to get %v", k)
	}
	aSlot, _ := m.shard(k).getOrCreate(k)
	if inst := aSlot.ready.Load(); inst != nil {
		return inst.value, nil
	}
	if m.counter != nil {
		stats := stat.New()
		onDone := m.counter.Begin(time.Now())
		defer func() {
			if err != nil {
				stats.Append(err)
			}
			onDone(time.Now(), stats)
		}()
	}
	return m.construct(ctx, k, aSlot, constructor)
}

func (m *Manager) construct(ctx context.Context, k key.Key, aSlot *slot, constructor Constructor) (interface{}, error) {
	last := aSlot.lock()
	defer aSlot.mux.Unlock()
	if inst := aSlot.ready.Load(); inst != nil {
		return inst.value, nil
	}
	if last != nil {
		return nil, last.err
	}
	aSlot.constructing.Store(true)
	m.notify(&Event{Key: k, From: Empty, To: Constructing, At: time.Now()})
	value, err := invoke(ctx, constructor)
	if err == nil && isNil(value) {
		err = fmt.Errorf("constructor returned nil instance")
	}
	if err != nil {
		err = shared.NewConstructionError(k, err)
		aSlot.fail(err)
		m.notify(&Event{Key: k, From: Constructing, To: Empty, Err: err, At: time.Now()})
		m.options.logger.Error(err, "failed to construct", "manager", m.options.name, "key", k.String())
		return nil, err
	}
	inst := &instance{value: value, id: uuid.New().String(), created: time.Now()}
	aSlot.succeeded(inst)
	m.notify(&Event{Key: k, From: Constructing, To: Ready, InstanceID: inst.id, At: inst.created})
	m.options.logger.Info("constructed", "manager", m.options.name, "key", k.String(), "instance", inst.id)
	return value, nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch aValue := reflect.ValueOf(value); aValue.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface, reflect.UnsafePointer:
		return aValue.IsNil()
	}
	return false
}

func invoke(ctx context.Context, constructor Constructor) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("constructor panic: %v", r)
		}
	}()
	return constructor(ctx)
}

func (m *Manager) notify(event *Event) {
	for _, observer := range m.options.observers {
		observer.Observe(event)
	}
}

// Peek returns the instance if the slot is ready, it never constructs
func (m *Manager) Peek(k key.Key) (interface{}, bool) {
	aSlot := m.shard(k).lookup(k)
	if aSlot == nil {
		return nil, false
	}
	inst := aSlot.ready.Load()
	if inst == nil {
		return nil, false
	}
	return inst.value, true
}

// State returns slot state for the key
func (m *Manager) State(k key.Key) State {
	aSlot := m.shard(k).lookup(k)
	if aSlot == nil {
		return Empty
	}
	return aSlot.state()
}

// Reset discards the instance for the key, returning the slot to Empty.
// It waits for an in-flight construction on the key to finish.
// Reset is meant for test isolation; production code should never rely on
// re-constructing a singleton other code may still hold.
func (m *Manager) Reset(k key.Key) {
	aSlot := m.shard(k).lookup(k)
	if aSlot == nil {
		return
	}
	m.reset(k, aSlot)
}

// ResetAll resets every slot, see Reset.
func (m *Manager) ResetAll() {
	for _, aShard := range m.shards {
		aShard.each(m.reset)
	}
}

func (m *Manager) reset(k key.Key, aSlot *slot) {
	aSlot.mux.Lock()
	defer aSlot.mux.Unlock()
	inst := aSlot.ready.Swap(nil)
	if inst == nil {
		return
	}
	m.notify(&Event{Key: k, From: Ready, To: Empty, InstanceID: inst.id, At: time.Now()})
	m.options.logger.V(1).Info("reset", "manager", m.options.name, "key", k.String(), "instance", inst.id)
}

// Snapshot returns all known slots ordered by key
func (m *Manager) Snapshot() []*Info {
	var result []*Info
	for _, aShard := range m.shards {
		aShard.each(func(k key.Key, aSlot *slot) {
			info := &Info{Key: k, State: aSlot.state()}
			if inst := aSlot.ready.Load(); inst != nil {
				info.State = Ready
				info.InstanceID = inst.id
				created := inst.created
				info.Created = &created
			}
			result = append(result, info)
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key.Less(result[j].Key)
	})
	return result
}

// Keys returns keys of ready slots ordered by key
func (m *Manager) Keys() []key.Key {
	var result []key.Key
	for _, info := range m.Snapshot() {
		if info.State == Ready {
			result = append(result, info.Key)
		}
	}
	return result
}

// Len returns number of ready instances
func (m *Manager) Len() int {
	return len(m.Keys())
}
