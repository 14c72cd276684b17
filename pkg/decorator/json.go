package decorator

import (
	"fmt"
	"sort"

	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-presenter/pkg/model"
)

// JSONOptions extend the model serialization options with presenter methods
// and decorated associations.
type JSONOptions struct {
	model.SerializeOptions

	// DecoratedMethods names presenter members whose results are added under
	// the name as given. Names the presenter does not respond to are skipped.
	DecoratedMethods []string
	// DecoratedInclude names associations read through the presenter and
	// composed recursively.
	DecoratedInclude Inclusions
}

func (o JSONOptions) isZero() bool {
	return len(o.Only) == 0 && len(o.Except) == 0 && len(o.Methods) == 0 &&
		len(o.Include) == 0 && len(o.DecoratedMethods) == 0 && o.DecoratedInclude.IsZero()
}

// Inclusions is the DecoratedInclude value. The list form passes the caller's
// Only and Except to every association; the mapping form carries options per
// association.
type Inclusions struct {
	names []string
	with  map[string]JSONOptions
}

// IncludeNames builds the list form.
func IncludeNames(names ...string) Inclusions {
	out := Inclusions{}
	for _, name := range names {
		if name != "" {
			out.names = append(out.names, name)
		}
	}
	return out
}

// IncludeWith builds the mapping form. Associations are composed in name
// order.
func IncludeWith(options map[string]JSONOptions) Inclusions {
	out := Inclusions{with: make(map[string]JSONOptions, len(options))}
	for name, opts := range options {
		if name == "" {
			continue
		}
		out.names = append(out.names, name)
		out.with[name] = opts
	}
	sort.Strings(out.names)
	return out
}

// Names lists the included associations.
func (i Inclusions) Names() []string { return append([]string(nil), i.names...) }

// IsZero reports whether nothing is included.
func (i Inclusions) IsZero() bool { return len(i.names) == 0 }

// Mapped reports whether the mapping form is used.
func (i Inclusions) Mapped() bool { return i.with != nil }

// For returns the options used to compose the named association.
func (i Inclusions) For(name string, caller JSONOptions) JSONOptions {
	if i.with != nil {
		return i.with[name]
	}
	return JSONOptions{SerializeOptions: model.SerializeOptions{
		Only:   append([]string(nil), caller.Only...),
		Except: append([]string(nil), caller.Except...),
	}}
}

// AsJSON composes the model's own serialization with presenter methods and
// decorated associations. Presenter values win on key conflicts.
func (d *Decorator) AsJSON(opts JSONOptions) (model.Attributes, error) {
	base, err := model.Serialize(d.model, opts.SerializeOptions)
	if err != nil {
		return model.Attributes{}, err
	}

	var computed model.Attributes
	for _, name := range opts.DecoratedMethods {
		if !d.RespondsTo(name) {
			continue
		}
		value, err := d.Call(name)
		if err != nil {
			return model.Attributes{}, err
		}
		computed.Set(name, value)
	}

	for _, name := range opts.DecoratedInclude.Names() {
		assoc, err := d.Call(name)
		if err != nil {
			return model.Attributes{}, err
		}
		if isNil(assoc) {
			continue
		}
		value, err := composeValue(assoc, opts.DecoratedInclude.For(name, opts))
		if err != nil {
			return model.Attributes{}, fmt.Errorf("decorator: compose %s: %w", name, err)
		}
		computed.Set(name, value)
	}

	return base.Merge(computed), nil
}

// ToJSON encodes AsJSON(opts).
func (d *Decorator) ToJSON(opts JSONOptions) ([]byte, error) {
	attrs, err := d.AsJSON(opts)
	if err != nil {
		return nil, err
	}
	return attrs.MarshalJSON()
}

// MarshalJSON encodes the presenter with its definition's JSON defaults.
func (d *Decorator) MarshalJSON() ([]byte, error) {
	return d.ToJSON(d.def.jsonDefaults)
}

// withDefaults overlays a definition's JSON defaults on the include options.
// Every field the defaults set wins.
func (o JSONOptions) withDefaults(defaults JSONOptions) JSONOptions {
	if len(defaults.Only) > 0 {
		o.Only = defaults.Only
	}
	if len(defaults.Except) > 0 {
		o.Except = defaults.Except
	}
	if len(defaults.Methods) > 0 {
		o.Methods = defaults.Methods
	}
	if len(defaults.Include) > 0 {
		o.Include = defaults.Include
	}
	if len(defaults.DecoratedMethods) > 0 {
		o.DecoratedMethods = defaults.DecoratedMethods
	}
	if !defaults.DecoratedInclude.IsZero() {
		o.DecoratedInclude = defaults.DecoratedInclude
	}
	return o
}

// composeValue serializes an included association. Decorated values use
// their own definition's JSON defaults on top of opts.
func composeValue(value any, opts JSONOptions) (any, error) {
	switch v := value.(type) {
	case *Decorator:
		return v.AsJSON(opts.withDefaults(v.def.jsonDefaults))
	case *Collection:
		out := make([]any, 0, v.Len())
		for dec, err := range v.All() {
			if err != nil {
				return nil, err
			}
			attrs, err := dec.AsJSON(opts.withDefaults(dec.def.jsonDefaults))
			if err != nil {
				return nil, err
			}
			out = append(out, attrs)
		}
		return out, nil
	}
	if seq, ok := sequenceOf(value); ok {
		out := make([]any, 0, seq.n)
		for i := 0; i < seq.n; i++ {
			item := seq.at(i)
			if isNil(item) {
				out = append(out, nil)
				continue
			}
			composed, err := composeValue(item, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, composed)
		}
		return out, nil
	}
	return model.SerializeValue(value, opts.SerializeOptions)
}

func marshalAll(values []gojson.RawMessage) ([]byte, error) {
	if values == nil {
		values = []gojson.RawMessage{}
	}
	return gojson.Marshal(values)
}
