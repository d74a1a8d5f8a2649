package key

import (
	"reflect"
	"sync"

	"github.com/viant/x"
	"github.com/viant/xreflect"
)

// TypeKind is the kind used by type derived keys
const TypeKind = "type"

var (
	types    = x.NewRegistry()
	typesMux sync.Mutex
	known    = map[reflect.Type]Key{}
)

// Types returns process type registry populated by type derived keys
func Types() *x.Registry {
	return types
}

// Of returns a type derived key for T, T can be an interface type
func Of[T any]() Key {
	return TypeOf(reflect.TypeOf((*T)(nil)).Elem())
}

// TypeOf returns a type derived key, it registers the type with the type registry on first use
func TypeOf(rType reflect.Type) Key {
	typesMux.Lock()
	defer typesMux.Unlock()
	if ret, ok := known[rType]; ok {
		return ret
	}
	name := fullTypeName(rType)
	ret := Key{Kind: TypeKind, Name: name}
	types.Register(x.NewType(baseType(rType), x.WithName(baseType(rType).Name())))
	known[rType] = ret
	return ret
}

// LookupType returns a type registered for a type derived key name
func LookupType(name string) *x.Type {
	return types.Lookup(name)
}

// Definition returns go type definition for a type derived key, or empty string
func Definition(k Key) string {
	if k.Kind != TypeKind {
		return ""
	}
	xType := LookupType(k.Name)
	if xType == nil || xType.Type == nil {
		return ""
	}
	rType := xType.Type
	if rType.Kind() != reflect.Struct {
		return rType.String()
	}
	aType := xreflect.NewType(rType.Name(), xreflect.WithReflectType(rType))
	return aType.Body()
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func fullTypeName(t reflect.Type) string {
	t = baseType(t)
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
