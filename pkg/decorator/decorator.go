package decorator

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/goliatone/go-presenter/internal/dispatch"
	"github.com/goliatone/go-presenter/internal/naming"
	"github.com/goliatone/go-presenter/pkg/helpers"
	"github.com/goliatone/go-presenter/pkg/model"
)

// Decorator is a presenter instance wrapping one model.
type Decorator struct {
	def     *Definition
	model   any
	options Options

	mu           sync.Mutex
	associations map[string]any
}

// New decorates m with def. Lazy models implementing model.Loader are loaded
// immediately and their error is returned unchanged.
func New(def *Definition, m any, opts ...Option) (*Decorator, error) {
	return newDecorator(def, m, buildOptions(opts))
}

func newDecorator(def *Definition, m any, options Options) (*Decorator, error) {
	if def == nil {
		return nil, errors.New("decorator: definition is required")
	}
	if isNil(m) {
		return nil, fmt.Errorf("decorator: %s: cannot decorate a nil model", def.name)
	}
	if inner, ok := m.(*Decorator); ok && inner.def == def {
		m = inner.model
	}
	def.bind(model.TypeOf(m))
	if loader, ok := m.(model.Loader); ok {
		if err := loader.Load(); err != nil {
			return nil, err
		}
	}
	if obs := def.registry.observer; obs != nil {
		obs.Decorated(def.name)
	}
	return &Decorator{def: def, model: m, options: options}, nil
}

// Call invokes name on the presenter. Builtins and presentation methods are
// answered locally; other members are forwarded to the model when the access
// policy allows it. Errors raised by the model are returned unchanged.
func (d *Decorator) Call(name string, args ...any) (any, error) {
	canonical := naming.Export(name)
	if fn, ok := builtins[canonical]; ok {
		return fn(d, args)
	}
	if fn, ok := d.def.methods[canonical]; ok {
		return fn(d, args...)
	}
	return d.forward(name, canonical, args)
}

func (d *Decorator) forward(name, canonical string, args []any) (any, error) {
	binding, ok := d.def.forwarder(reflect.TypeOf(d.model), canonical)
	if !ok || (binding.Dynamic && !dispatch.Present(d.model, canonical)) {
		return nil, d.notFound(name)
	}
	return binding.Invoke(reflect.ValueOf(d.model), args)
}

func (d *Decorator) notFound(name string) error {
	return &MethodNotFoundError{Decorator: d.def.name, Name: name}
}

// RespondsTo reports whether Call(name) would find a member.
func (d *Decorator) RespondsTo(name string) bool {
	canonical := naming.Export(name)
	if isBuiltin(canonical) {
		return true
	}
	if _, ok := d.def.methods[canonical]; ok {
		return true
	}
	binding, ok := d.def.forwarder(reflect.TypeOf(d.model), canonical)
	if !ok {
		return false
	}
	return !binding.Dynamic || dispatch.Present(d.model, canonical)
}

// Get calls an argument-less member and returns nil on any error, including
// unknown members and argument errors. It is meant for templates and tests;
// use Call when the error matters.
func (d *Decorator) Get(name string) any {
	value, err := d.Call(name)
	if err != nil {
		return nil
	}
	return value
}

// Model returns the wrapped model.
func (d *Decorator) Model() any { return d.model }

// Definition returns the presenter definition.
func (d *Decorator) Definition() *Definition { return d.def }

// Context returns a copy of the presenter context.
func (d *Decorator) Context() Context { return d.options.Context.Clone() }

// Version returns the version the decorator was built for.
func (d *Decorator) Version() string { return d.options.Version }

// Options returns a copy of the decoration options.
func (d *Decorator) Options() Options { return d.options.clone() }

// Helpers returns the helper context given at decoration time, or the
// process-wide one.
func (d *Decorator) Helpers() *helpers.Helpers {
	if d.options.Helpers != nil {
		return d.options.Helpers
	}
	return helpers.Current()
}

// Equal compares the wrapped models. Other presenters are unwrapped first.
func (d *Decorator) Equal(other any) bool {
	if wrapped, ok := other.(interface{ Model() any }); ok && !isNil(wrapped) {
		other = wrapped.Model()
	}
	return model.Equal(d.model, other)
}

// IsA checks the presenter against target. A *Definition matches the
// definition chain, a *model.Type the model type chain, a reflect.Type the
// Go type of the model or the presenter, and a string any of those names.
func (d *Decorator) IsA(target any) bool {
	switch t := target.(type) {
	case *Definition:
		return d.def.IsA(t)
	case *model.Type:
		return model.TypeOf(d.model).IsA(t)
	case reflect.Type:
		if t == nil {
			return false
		}
		return reflect.TypeOf(d.model).AssignableTo(t) || reflect.TypeOf(d).AssignableTo(t)
	case string:
		for def := d.def; def != nil; def = def.parent {
			if def.name == t {
				return true
			}
		}
		for _, ancestor := range model.TypeOf(d.model).Ancestors() {
			if ancestor.Name() == t {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (d *Decorator) String() string {
	return fmt.Sprintf("%s(%v)", d.def.name, d.model)
}

type builtin func(d *Decorator, args []any) (any, error)

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"Model":     noArgs("Model", func(d *Decorator) (any, error) { return d.model, nil }),
		"ToModel":   noArgs("ToModel", func(d *Decorator) (any, error) { return d.model, nil }),
		"Context":   noArgs("Context", func(d *Decorator) (any, error) { return d.Context(), nil }),
		"Version":   noArgs("Version", func(d *Decorator) (any, error) { return d.Version(), nil }),
		"Helpers":   noArgs("Helpers", func(d *Decorator) (any, error) { return d.Helpers(), nil }),
		"Decorated": noArgs("Decorated", func(*Decorator) (any, error) { return true, nil }),
		"Equal": func(d *Decorator, args []any) (any, error) {
			if len(args) != 1 {
				return nil, &dispatch.ArgumentError{Member: "Equal", Want: 1, Got: len(args)}
			}
			return d.Equal(args[0]), nil
		},
		"IsA": func(d *Decorator, args []any) (any, error) {
			if len(args) != 1 {
				return nil, &dispatch.ArgumentError{Member: "IsA", Want: 1, Got: len(args)}
			}
			return d.IsA(args[0]), nil
		},
		"RespondsTo": func(d *Decorator, args []any) (any, error) {
			if len(args) != 1 {
				return nil, &dispatch.ArgumentError{Member: "RespondsTo", Want: 1, Got: len(args)}
			}
			name, ok := args[0].(string)
			if !ok {
				return nil, &dispatch.ArgumentError{Member: "RespondsTo", Want: 1, Got: 1, Err: fmt.Errorf("cannot use %T as string", args[0])}
			}
			return d.RespondsTo(name), nil
		},
		"AsJSON": func(d *Decorator, args []any) (any, error) {
			opts, err := jsonArgs("AsJSON", args)
			if err != nil {
				return nil, err
			}
			return d.AsJSON(opts)
		},
		"ToJSON": func(d *Decorator, args []any) (any, error) {
			opts, err := jsonArgs("ToJSON", args)
			if err != nil {
				return nil, err
			}
			return d.ToJSON(opts)
		},
		"MarshalJSON": noArgs("MarshalJSON", func(d *Decorator) (any, error) { return d.MarshalJSON() }),
	}
}

func isBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Builtins lists the members every presenter answers locally.
func Builtins() []string {
	return []string{
		"AsJSON", "Context", "Decorated", "Equal", "Helpers", "IsA",
		"MarshalJSON", "Model", "RespondsTo", "ToJSON", "ToModel", "Version",
	}
}

func noArgs(member string, fn func(*Decorator) (any, error)) builtin {
	return func(d *Decorator, args []any) (any, error) {
		if len(args) > 0 {
			return nil, &dispatch.ArgumentError{Member: member, Want: 0, Got: len(args)}
		}
		return fn(d)
	}
}

func jsonArgs(member string, args []any) (JSONOptions, error) {
	switch len(args) {
	case 0:
		return JSONOptions{}, nil
	case 1:
		switch opts := args[0].(type) {
		case JSONOptions:
			return opts, nil
		case *JSONOptions:
			if opts == nil {
				return JSONOptions{}, nil
			}
			return *opts, nil
		default:
			return JSONOptions{}, &dispatch.ArgumentError{Member: member, Want: 1, Got: 1, Err: fmt.Errorf("cannot use %T as JSONOptions", args[0])}
		}
	default:
		return JSONOptions{}, &dispatch.ArgumentError{Member: member, Want: 1, Got: len(args)}
	}
}
