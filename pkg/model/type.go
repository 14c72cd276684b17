package model

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/goliatone/go-presenter/internal/dispatch"
	"github.com/goliatone/go-presenter/internal/naming"
)

// Type describes a model type: its name, an optional parent forming a single
// inheritance chain and the finder used for type-level collection access.
type Type struct {
	name   string
	parent *Type
	goType reflect.Type
	finder any
}

// TypeOption configures a Type.
type TypeOption func(*Type)

// WithParent sets the parent type.
func WithParent(parent *Type) TypeOption {
	return func(t *Type) {
		t.parent = parent
	}
}

// WithGoType binds the Go type whose values are instances of the model type.
func WithGoType(goType reflect.Type) TypeOption {
	return func(t *Type) {
		t.goType = goType
	}
}

// WithSample binds the Go type of sample.
func WithSample(sample any) TypeOption {
	return func(t *Type) {
		if sample != nil {
			t.goType = reflect.TypeOf(sample)
		}
	}
}

// WithFinder attaches the type-level accessor. The value usually implements
// Finder; any other exported method is reachable through Type.Call.
func WithFinder(finder any) TypeOption {
	return func(t *Type) {
		t.finder = finder
	}
}

// NewType creates a model type without registering its Go type.
func NewType(name string, opts ...TypeOption) *Type {
	t := &Type{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

var types = struct {
	sync.RWMutex
	byGo     map[reflect.Type]*Type
	implicit map[reflect.Type]*Type
}{
	byGo:     make(map[reflect.Type]*Type),
	implicit: make(map[reflect.Type]*Type),
}

// Define creates a model type and, when a Go type is bound, registers it so
// TypeOf resolves values of that Go type to the new Type.
func Define(name string, opts ...TypeOption) *Type {
	t := NewType(name, opts...)
	if t.goType != nil {
		types.Lock()
		types.byGo[t.goType] = t
		types.Unlock()
	}
	return t
}

// TypeOf resolves the model type of v: Typed values report their own type,
// registered Go types come next and anything else gets an implicit
// parentless type named after its Go type.
func TypeOf(v any) *Type {
	if v == nil {
		return nil
	}
	if typed, ok := v.(Typed); ok {
		if t := typed.ModelType(); t != nil {
			return t
		}
	}
	goType := reflect.TypeOf(v)

	types.RLock()
	t, ok := types.byGo[goType]
	if !ok {
		t, ok = types.implicit[goType]
	}
	types.RUnlock()
	if ok {
		return t
	}

	types.Lock()
	defer types.Unlock()
	if t, ok := types.byGo[goType]; ok {
		return t
	}
	if t, ok := types.implicit[goType]; ok {
		return t
	}
	t = &Type{name: goTypeName(goType), goType: goType}
	types.implicit[goType] = t
	return t
}

func goTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Name returns the model type name.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Parent returns the parent type or nil at the root.
func (t *Type) Parent() *Type {
	if t == nil {
		return nil
	}
	return t.parent
}

// GoType returns the bound Go type, if any.
func (t *Type) GoType() reflect.Type {
	if t == nil {
		return nil
	}
	return t.goType
}

// Finder returns the type-level accessor, or nil.
func (t *Type) Finder() Finder {
	if t == nil {
		return nil
	}
	finder, _ := t.finder.(Finder)
	return finder
}

// Ancestors returns the inheritance chain, most derived first.
func (t *Type) Ancestors() []*Type {
	var chain []*Type
	for current := t; current != nil; current = current.parent {
		chain = append(chain, current)
	}
	return chain
}

// IsA reports whether t is other or descends from it.
func (t *Type) IsA(other *Type) bool {
	if other == nil {
		return false
	}
	for current := t; current != nil; current = current.parent {
		if current == other {
			return true
		}
	}
	return false
}

// Call forwards a type-level call to the finder by reflection. Names are
// canonicalised, so "find_by_id" reaches FindByID.
func (t *Type) Call(name string, args ...any) (any, error) {
	if t == nil || t.finder == nil {
		return nil, fmt.Errorf("%w: %s on model type %s", ErrNoMember, name, t.Name())
	}
	result, err := dispatch.Invoke(t.finder, naming.Export(name), args...)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RespondsTo reports whether the type-level accessor exposes name.
func (t *Type) RespondsTo(name string) bool {
	if t == nil || t.finder == nil {
		return false
	}
	return dispatch.Has(t.finder, naming.Export(name))
}

func (t *Type) String() string {
	return t.Name()
}
