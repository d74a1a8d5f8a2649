package singleton

import (
	"sync"

	"github.com/dolthub/swiss"
	"github.com/viant/lifecycle/key"
)

// shard holds a subset of slots with its own lock, the lock only guards slot allocation.
type shard struct {
	mux   sync.RWMutex
	slots *swiss.Map[key.Key, *slot]
}

func newShard(size int) *shard {
	return &shard{slots: swiss.NewMap[key.Key, *slot](uint32(size))}
}

func (s *shard) lookup(k key.Key) *slot {
	s.mux.RLock()
	ret, _ := s.slots.Get(k)
	s.mux.RUnlock()
	return ret
}

// getOrCreate returns existing slot or allocates a new one (double-checked)
func (s *shard) getOrCreate(k key.Key) (*slot, bool) {
	if ret := s.lookup(k); ret != nil {
		return ret, false
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.slots.Get(k); ok {
		return ret, false
	}
	ret := &slot{}
	s.slots.Put(k, ret)
	return ret, true
}

func (s *shard) each(fn func(k key.Key, aSlot *slot)) {
	s.mux.RLock()
	type pair struct {
		key  key.Key
		slot *slot
	}
	pairs := make([]pair, 0, s.slots.Count())
	s.slots.Iter(func(k key.Key, v *slot) bool {
		pairs = append(pairs, pair{key: k, slot: v})
		return false
	})
	s.mux.RUnlock()
	for _, item := range pairs {
		fn(item.key, item.slot)
	}
}
