package key

import (
	"strings"

	"github.com/pkg/errors"
)

// Key identifies a registry entry within a domain (Kind) under a Name.
// Examples:
//
//	{Kind: "serializer", Name: "json"}
//	{Kind: "notifier",   Name: "email"}
//	{Kind: "type",       Name: "github.com/viant/lifecycle/catalog/cache.Cache"}
type Key struct {
	Kind string
	Name string
}

// Normalizer canonicalizes a key before it is stored or looked up
type Normalizer func(Key) Key

// Named creates a key for the supplied kind and name
func Named(kind, name string) Key {
	return Key{Kind: kind, Name: name}
}

// Parse parses "kind/name" representation, name may contain further slashes
func Parse(encoded string) (Key, error) {
	index := strings.Index(encoded, "/")
	if index == -1 {
		return Key{}, errors.Errorf("invalid key: %q, expected kind/name", encoded)
	}
	ret := Key{Kind: strings.TrimSpace(encoded[:index]), Name: strings.TrimSpace(encoded[index+1:])}
	if ret.IsZero() {
		return Key{}, errors.Errorf("invalid key: %q, expected kind/name", encoded)
	}
	return ret, nil
}

// IsZero reports whether the key is incomplete.
func (k Key) IsZero() bool { return k.Kind == "" || k.Name == "" }

// String returns a human-readable representation "kind/name".
func (k Key) String() string {
	switch {
	case k.Kind == "" && k.Name == "":
		return "<empty>"
	case k.Kind == "":
		return "<unknown>/" + k.Name
	case k.Name == "":
		return k.Kind + "/<unknown>"
	default:
		return k.Kind + "/" + k.Name
	}
}

// Less orders keys by kind, then name
func (k Key) Less(other Key) bool {
	if k.Kind == other.Kind {
		return k.Name < other.Name
	}
	return k.Kind < other.Kind
}

// CaseFoldLower lower cases both kind and name
func CaseFoldLower(k Key) Key {
	k.Kind = strings.ToLower(k.Kind)
	k.Name = strings.ToLower(k.Name)
	return k
}
