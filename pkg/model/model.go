package model

import (
	"errors"
	"reflect"

	"github.com/goliatone/go-presenter/internal/dispatch"
)

var (
	// ErrNotFound is returned by finders when no record matches.
	ErrNotFound = errors.New("model: record not found")
	// ErrNoMember reports that a model (or model type finder) exposes no
	// member with the requested name.
	ErrNoMember = dispatch.ErrNoMember
)

// Serializer is the native serialization primitive of a model. The returned
// attributes keep the model's own key order.
type Serializer interface {
	Serialize(opts SerializeOptions) (Attributes, error)
}

// Loader is implemented by lazily evaluated models. Presenters call Load when
// they are constructed so evaluation errors surface immediately.
type Loader interface {
	Load() error
}

// Typed lets a model report its Type explicitly instead of relying on the
// Go-type registry.
type Typed interface {
	ModelType() *Type
}

// Equaler overrides the default model equality.
type Equaler interface {
	Equal(other any) bool
}

// Sequence is a minimal indexed collection of models.
type Sequence interface {
	Len() int
	At(i int) any
}

// MemberReader is implemented by attribute-bag models whose members are only
// known per instance.
type MemberReader = dispatch.MemberReader

// Finder is the collection accessor contract of a model type.
type Finder interface {
	FindAll() (any, error)
	FindByID(id any) (any, error)
	First() (any, error)
	Last() (any, error)
}

// Equal compares two models. Equaler implementations win, comparable values
// use ==, and everything else falls back to reflect.DeepEqual.
func Equal(a, b any) bool {
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// RespondsTo reports whether m exposes the named member.
func RespondsTo(m any, name string) bool {
	return dispatch.Has(m, name)
}
