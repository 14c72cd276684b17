package decorator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/goliatone/go-presenter/internal/dispatch"
	"github.com/goliatone/go-presenter/internal/naming"
)

// AssociationOption configures a decorated association.
type AssociationOption func(*association)

type association struct {
	name    string
	member  string
	with    *Definition
	version string
	context func(parent Context) Context
}

// AssociationWith decorates the association with def instead of resolving
// a definition through the registry.
func AssociationWith(def *Definition) AssociationOption {
	return func(a *association) {
		a.with = def
	}
}

// AssociationVersion decorates the association with a fixed version instead
// of the parent decorator's.
func AssociationVersion(version string) AssociationOption {
	return func(a *association) {
		a.version = strings.TrimSpace(version)
	}
}

// AssociationContext derives the association context from the parent
// decorator's context. The parent context is passed on unchanged by default.
func AssociationContext(fn func(parent Context) Context) AssociationOption {
	return func(a *association) {
		a.context = fn
	}
}

// DecoratesAssociation adds a method named after the association that reads
// it from the model and returns it decorated. Collections come back as a
// *Collection and nil associations as nil.
func DecoratesAssociation(name string, opts ...AssociationOption) DefineOption {
	return func(d *Definition) error {
		member := naming.Export(name)
		if member == "" {
			return errors.New("association name is required")
		}
		if isBuiltin(member) {
			return errors.New("association " + member + " shadows a builtin")
		}
		assoc := &association{name: strings.TrimSpace(name), member: member}
		for _, opt := range opts {
			if opt != nil {
				opt(assoc)
			}
		}
		replaced := false
		for i, existing := range d.associations {
			if existing.member == member {
				d.associations[i] = assoc
				replaced = true
			}
		}
		if !replaced {
			d.associations = append(d.associations, assoc)
		}
		d.methods[member] = assoc.method
		return nil
	}
}

// DecoratesAssociations declares several associations with default options.
func DecoratesAssociations(names ...string) DefineOption {
	return func(d *Definition) error {
		if len(naming.ExportAll(names)) == 0 {
			return errors.New("association names are required")
		}
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				continue
			}
			if err := DecoratesAssociation(name)(d); err != nil {
				return err
			}
		}
		return nil
	}
}

func (d *Definition) association(name string) *association {
	member := naming.Export(name)
	for _, assoc := range d.associations {
		if assoc.member == member {
			return assoc
		}
	}
	return nil
}

func (a *association) method(d *Decorator, args ...any) (any, error) {
	if len(args) > 0 {
		return nil, &dispatch.ArgumentError{Member: a.member, Want: 0, Got: len(args)}
	}
	return d.decoratedAssociation(a)
}

// decoratedAssociation memoises the decorated association on the decorator.
func (d *Decorator) decoratedAssociation(a *association) (any, error) {
	d.mu.Lock()
	if cached, ok := d.associations[a.member]; ok {
		d.mu.Unlock()
		return cached, nil
	}
	d.mu.Unlock()

	raw, err := dispatch.Invoke(d.model, a.member)
	if err != nil {
		return nil, err
	}
	decorated, err := d.decorateAssociation(a, raw)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.associations == nil {
		d.associations = make(map[string]any)
	}
	if cached, ok := d.associations[a.member]; ok {
		return cached, nil
	}
	d.associations[a.member] = decorated
	return decorated, nil
}

func (d *Decorator) decorateAssociation(a *association, raw any) (any, error) {
	if isNil(raw) {
		return nil, nil
	}
	options := d.options.clone()
	if a.version != "" {
		options.Version = a.version
	}
	if a.context != nil {
		options.Context = a.context(d.Context()).Clone()
	}

	if a.with != nil {
		return a.with.Decorate(raw, WithOptions(options))
	}
	registry := d.def.registry
	if _, ok := sequenceOf(raw); ok {
		collection, err := newCollection(raw, nil, registry, options)
		if err != nil {
			return nil, err
		}
		return collection, nil
	}
	dec, err := registry.decorateWith(nil, raw, options)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return value.IsNil()
	default:
		return false
	}
}
