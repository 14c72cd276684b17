package decorator

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-presenter/internal/dispatch"
	"github.com/goliatone/go-presenter/internal/naming"
	"github.com/goliatone/go-presenter/pkg/model"
)

// ErrIndexOutOfRange is returned by Collection.At.
var ErrIndexOutOfRange = errors.New("decorator: index out of range")

// Collection decorates a sequence of models lazily. It keeps a reference to
// the source, never a copy, and decorates again on every access.
type Collection struct {
	source   any
	def      *Definition
	registry *Registry
	options  Options
}

// NewCollection wraps source, a slice, an array or a model.Sequence. Element
// access through At uses def; iteration resolves each element through the
// registry and falls back to def. A nil def resolves every element.
func NewCollection(source any, def *Definition, opts ...Option) (*Collection, error) {
	registry := Default()
	if def != nil {
		registry = def.registry
	}
	return newCollection(source, def, registry, buildOptions(opts))
}

func newCollection(source any, def *Definition, registry *Registry, options Options) (*Collection, error) {
	if _, ok := sequenceOf(source); !ok {
		return nil, fmt.Errorf("decorator: cannot decorate %T as a collection", source)
	}
	if registry == nil {
		registry = Default()
	}
	return &Collection{source: source, def: def, registry: registry, options: options}, nil
}

// All yields the decorated elements in source order. Each element is
// resolved through the registry by its own model type, so heterogeneous
// sources yield heterogeneous presenters.
func (c *Collection) All() iter.Seq2[*Decorator, error] {
	return func(yield func(*Decorator, error) bool) {
		seq, _ := sequenceOf(c.source)
		for i := 0; i < seq.n; i++ {
			dec, err := c.decorateElement(seq.at(i))
			if !yield(dec, err) {
				return
			}
		}
	}
}

// At decorates the element at index i directly with the collection's
// definition, without registry resolution.
func (c *Collection) At(i int) (*Decorator, error) {
	seq, _ := sequenceOf(c.source)
	if i < 0 || i >= seq.n {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, seq.n)
	}
	element := seq.at(i)
	if c.def == nil {
		return c.decorateElement(element)
	}
	return newDecorator(c.def, element, c.options.clone())
}

// Slice decorates every element. It stops at the first error.
func (c *Collection) Slice() ([]*Decorator, error) {
	out := make([]*Decorator, 0, c.Len())
	for dec, err := range c.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, dec)
	}
	return out, nil
}

func (c *Collection) decorateElement(element any) (*Decorator, error) {
	if isNil(element) {
		return nil, fmt.Errorf("decorator: cannot decorate a nil element")
	}
	options := c.options.clone()
	def, err := c.registry.Resolve(model.TypeOf(element), options.Version)
	if err != nil {
		var resolution *ResolutionError
		if c.def == nil || !errors.As(err, &resolution) {
			return nil, err
		}
		def = c.def
	}
	return newDecorator(def, element, options)
}

// Len returns the current length of the source.
func (c *Collection) Len() int {
	seq, _ := sequenceOf(c.source)
	return seq.n
}

// Source returns the wrapped sequence.
func (c *Collection) Source() any { return c.source }

// Definition returns the element definition, nil when elements are resolved.
func (c *Collection) Definition() *Definition { return c.def }

// Options returns a copy of the options applied to every element.
func (c *Collection) Options() Options { return c.options.clone() }

// Context returns a copy of the element context.
func (c *Collection) Context() Context { return c.options.Context.Clone() }

// Call forwards name to the source value.
func (c *Collection) Call(name string, args ...any) (any, error) {
	canonical := naming.Export(name)
	if !dispatch.Has(c.source, canonical) {
		return nil, &MethodNotFoundError{Decorator: c.label(), Name: name}
	}
	return dispatch.Invoke(c.source, canonical, args...)
}

// RespondsTo reports whether the source exposes name.
func (c *Collection) RespondsTo(name string) bool {
	return dispatch.Has(c.source, naming.Export(name))
}

// Equal compares the sources. Other collections are unwrapped first.
func (c *Collection) Equal(other any) bool {
	if oc, ok := other.(*Collection); ok {
		if oc == nil {
			return false
		}
		other = oc.source
	}
	return reflect.DeepEqual(c.source, other)
}

// Decorated is always true.
func (c *Collection) Decorated() bool { return true }

func (c *Collection) String() string {
	seq, _ := sequenceOf(c.source)
	items := make([]string, seq.n)
	for i := range items {
		items[i] = fmt.Sprint(seq.at(i))
	}
	return fmt.Sprintf("decorator.Collection(%s)[%s]", c.label(), strings.Join(items, ", "))
}

func (c *Collection) label() string {
	if c.def == nil {
		return "inferred"
	}
	return c.def.name
}

// AsJSON composes every element with opts.
func (c *Collection) AsJSON(opts JSONOptions) ([]model.Attributes, error) {
	out := make([]model.Attributes, 0, c.Len())
	for dec, err := range c.All() {
		if err != nil {
			return nil, err
		}
		attrs, err := dec.AsJSON(opts)
		if err != nil {
			return nil, err
		}
		out = append(out, attrs)
	}
	return out, nil
}

// ToJSON encodes AsJSON(opts) as a JSON array.
func (c *Collection) ToJSON(opts JSONOptions) ([]byte, error) {
	items, err := c.AsJSON(opts)
	if err != nil {
		return nil, err
	}
	raw := make([]gojson.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := item.MarshalJSON()
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	return marshalAll(raw)
}

// MarshalJSON encodes every element with its own definition's JSON defaults.
func (c *Collection) MarshalJSON() ([]byte, error) {
	raw := make([]gojson.RawMessage, 0, c.Len())
	for dec, err := range c.All() {
		if err != nil {
			return nil, err
		}
		data, err := dec.MarshalJSON()
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}
	return marshalAll(raw)
}

type sequence struct {
	n  int
	at func(i int) any
}

// sequenceOf adapts model.Sequence values, slices and arrays (or pointers to
// them). Byte slices are treated as scalars.
func sequenceOf(v any) (sequence, bool) {
	if v == nil {
		return sequence{}, false
	}
	if seq, ok := v.(model.Sequence); ok {
		return sequence{n: seq.Len(), at: seq.At}, true
	}
	value := reflect.ValueOf(v)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return sequence{}, false
		}
		value = value.Elem()
	}
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return sequence{}, false
		}
		return sequence{n: value.Len(), at: func(i int) any { return value.Index(i).Interface() }}, true
	default:
		return sequence{}, false
	}
}
