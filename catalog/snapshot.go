package catalog

import (
	"time"

	"github.com/francoispqt/gojay"
	"github.com/viant/lifecycle/factory"
)

type (
	// Snapshot represents registered selectors and singleton slot states
	Snapshot struct {
		Registries Registries
		Singletons Slots
	}

	Registry struct {
		Name    string
		Sealed  bool
		Entries Entries
	}

	Entry struct {
		Key string
		Doc string
	}

	Slot struct {
		Key        string
		State      string
		InstanceID string
		Created    *time.Time
	}

	Registries []*Registry
	Entries    []*Entry
	Slots      []*Slot
)

// Snapshot returns current catalog state
func (c *Catalog) Snapshot() *Snapshot {
	ret := &Snapshot{
		Registries: Registries{
			registryInfo(c.Products.Registry()),
			registryInfo(c.Notifiers.Registry()),
			registryInfo(c.Serializers.Registry()),
			registryInfo(c.Sinks.Registry()),
		},
	}
	for _, info := range c.Manager.Snapshot() {
		ret.Singletons = append(ret.Singletons, &Slot{
			Key:        info.Key.String(),
			State:      info.State.String(),
			InstanceID: info.InstanceID,
			Created:    info.Created,
		})
	}
	return ret
}

func registryInfo[T any](registry *factory.Registry[T]) *Registry {
	ret := &Registry{Name: registry.Name(), Sealed: registry.Sealed()}
	for _, entry := range registry.Entries() {
		ret.Entries = append(ret.Entries, &Entry{Key: entry.Key.String(), Doc: entry.Doc})
	}
	return ret
}

// MarshalJSONObject implements MarshalerJSONObject
func (s *Snapshot) MarshalJSONObject(enc *gojay.Encoder) {
	enc.ArrayKey("Registries", s.Registries)
	enc.ArrayKey("Singletons", s.Singletons)
}

// IsNil checks if instance is nil
func (s *Snapshot) IsNil() bool { return s == nil }

// MarshalJSONObject implements MarshalerJSONObject
func (r *Registry) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("Name", r.Name)
	enc.BoolKey("Sealed", r.Sealed)
	enc.ArrayKey("Entries", r.Entries)
}

// IsNil checks if instance is nil
func (r *Registry) IsNil() bool { return r == nil }

// MarshalJSONObject implements MarshalerJSONObject
func (e *Entry) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("Key", e.Key)
	enc.StringKeyOmitEmpty("Doc", e.Doc)
}

// IsNil checks if instance is nil
func (e *Entry) IsNil() bool { return e == nil }

// MarshalJSONObject implements MarshalerJSONObject
func (s *Slot) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("Key", s.Key)
	enc.StringKey("State", s.State)
	enc.StringKeyOmitEmpty("InstanceID", s.InstanceID)
	if s.Created != nil {
		enc.StringKey("Created", s.Created.Format(time.RFC3339Nano))
	}
}

// IsNil checks if instance is nil
func (s *Slot) IsNil() bool { return s == nil }

// MarshalJSONArray implements MarshalerJSONArray
func (r Registries) MarshalJSONArray(enc *gojay.Encoder) {
	for _, item := range r {
		enc.Object(item)
	}
}

// IsNil checks if instance is nil
func (r Registries) IsNil() bool { return len(r) == 0 }

// MarshalJSONArray implements MarshalerJSONArray
func (e Entries) MarshalJSONArray(enc *gojay.Encoder) {
	for _, item := range e {
		enc.Object(item)
	}
}

// IsNil checks if instance is nil
func (e Entries) IsNil() bool { return len(e) == 0 }

// MarshalJSONArray implements MarshalerJSONArray
func (s Slots) MarshalJSONArray(enc *gojay.Encoder) {
	for _, item := range s {
		enc.Object(item)
	}
}

// IsNil checks if instance is nil
func (s Slots) IsNil() bool { return len(s) == 0 }
