package decorator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-presenter/internal/dispatch"
	"github.com/goliatone/go-presenter/internal/naming"
	"github.com/goliatone/go-presenter/pkg/model"
	"github.com/goliatone/go-presenter/pkg/policy"
)

// Method is a presentation method defined on a presenter. It receives the
// decorator it is called on.
type Method func(d *Decorator, args ...any) (any, error)

// DefineOption configures a Definition. Options run in order; an error turns
// into a *ConfigurationError returned by Define.
type DefineOption func(*Definition) error

// Definition is a presenter type. It is immutable once Define returns,
// except for the model type binding, which is inferred on first use when
// Decorates was not given.
type Definition struct {
	name     string
	registry *Registry

	mu        sync.RWMutex
	modelType *model.Type

	policy       *policy.Policy
	methods      map[string]Method
	associations []*association
	parent       *Definition
	jsonDefaults JSONOptions

	decorates *model.Type
	version   string

	forwarders sync.Map
}

// Define builds a presenter definition and, when Decorates was given,
// registers it with its registry.
func Define(name string, opts ...DefineOption) (*Definition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, configError("", "decorator name is required", nil)
	}
	def := &Definition{
		name:    name,
		policy:  policy.New(),
		methods: make(map[string]Method),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(def); err != nil {
			return nil, asConfigError(name, err)
		}
	}
	if def.parent != nil {
		def.inherit()
	}
	if def.registry == nil {
		def.registry = Default()
	}

	switch {
	case def.decorates != nil:
		if err := def.registry.Register(def, def.decorates, def.version); err != nil {
			return nil, err
		}
	case def.version != "":
		return nil, configError(name, "version given without a model type", nil)
	}
	return def, nil
}

// MustDefine is Define for package-level presenter declarations. It panics on
// configuration errors.
func MustDefine(name string, opts ...DefineOption) *Definition {
	def, err := Define(name, opts...)
	if err != nil {
		panic(err)
	}
	return def
}

func asConfigError(name string, err error) error {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return err
	}
	reason := "invalid definition"
	switch {
	case errors.Is(err, policy.ErrConflict):
		reason = "conflicting access policy"
	case errors.Is(err, policy.ErrEmptyList):
		reason = "empty access list"
	}
	return configError(name, reason, err)
}

// Decorates binds the definition to a model type and registers it when
// Define completes. The model becomes reachable through a method named after
// the model type.
func Decorates(t *model.Type) DefineOption {
	return func(d *Definition) error {
		if t == nil {
			return errors.New("model type is required")
		}
		d.decorates = t
		d.modelType = t
		accessor := naming.Export(t.Name())
		if _, exists := d.methods[accessor]; !exists && !isBuiltin(accessor) {
			d.methods[accessor] = modelAccessor
		}
		return nil
	}
}

// ForVersion registers the definition under version instead of the default
// slot.
func ForVersion(version string) DefineOption {
	return func(d *Definition) error {
		d.version = strings.TrimSpace(version)
		return nil
	}
}

// WithRegistry registers the definition in r instead of the default registry.
func WithRegistry(r *Registry) DefineOption {
	return func(d *Definition) error {
		if r == nil {
			return errors.New("registry is nil")
		}
		d.registry = r
		return nil
	}
}

// Allows restricts forwarding to the named members.
func Allows(names ...string) DefineOption {
	return func(d *Definition) error {
		return d.policy.Allow(names...)
	}
}

// Denies blocks forwarding of the named members.
func Denies(names ...string) DefineOption {
	return func(d *Definition) error {
		return d.policy.Deny(names...)
	}
}

// WithMethod adds a presentation method. It shadows the model member with the
// same canonical name, so `price` and `Price` reach the method, not the model.
// Read the shadowed value from Model() inside the method.
func WithMethod(name string, fn Method) DefineOption {
	return func(d *Definition) error {
		canonical := naming.Export(name)
		if canonical == "" || fn == nil {
			return errors.New("method name and function are required")
		}
		if isBuiltin(canonical) {
			return fmt.Errorf("method %s shadows a builtin", canonical)
		}
		d.methods[canonical] = fn
		return nil
	}
}

// Getter adds an argument-less presentation method. It shadows model members
// like WithMethod does.
func Getter(name string, fn func(d *Decorator) any) DefineOption {
	if fn == nil {
		return WithMethod(name, nil)
	}
	member := naming.Export(name)
	return WithMethod(name, func(d *Decorator, args ...any) (any, error) {
		if len(args) > 0 {
			return nil, &dispatch.ArgumentError{Member: member, Want: 0, Got: len(args)}
		}
		return fn(d), nil
	})
}

// WithJSONDefaults sets the options MarshalJSON composes with.
func WithJSONDefaults(opts JSONOptions) DefineOption {
	return func(d *Definition) error {
		d.jsonDefaults = opts
		return nil
	}
}

// Extends inherits the parent's methods, associations and JSON defaults. The
// parent policy is inherited unless this definition configured its own.
// Inheritance is applied after every other option, so the position of Extends
// in the option list does not matter.
func Extends(parent *Definition) DefineOption {
	return func(d *Definition) error {
		if parent == nil {
			return errors.New("parent definition is nil")
		}
		d.parent = parent
		return nil
	}
}

func (d *Definition) inherit() {
	parent := d.parent
	for name, fn := range parent.methods {
		if _, exists := d.methods[name]; !exists {
			d.methods[name] = fn
		}
	}
	if !d.policy.Customized() {
		d.policy = parent.policy.Clone()
	}
	for _, assoc := range parent.associations {
		if d.association(assoc.name) == nil {
			d.associations = append(d.associations, assoc)
		}
	}
	if d.jsonDefaults.isZero() {
		d.jsonDefaults = parent.jsonDefaults
	}
	if d.registry == nil {
		d.registry = parent.registry
	}
}

// Name returns the presenter name.
func (d *Definition) Name() string { return d.name }

func (d *Definition) String() string { return d.name }

// ModelType returns the bound model type, or nil while unbound.
func (d *Definition) ModelType() *model.Type {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modelType
}

// Parent returns the definition this one extends.
func (d *Definition) Parent() *Definition { return d.parent }

// Registry returns the registry the definition belongs to.
func (d *Definition) Registry() *Registry { return d.registry }

// Policy returns a copy of the access policy.
func (d *Definition) Policy() *policy.Policy { return d.policy.Clone() }

// JSONDefaults returns the options used by MarshalJSON.
func (d *Definition) JSONDefaults() JSONOptions { return d.jsonDefaults }

// Methods lists the presentation methods, sorted.
func (d *Definition) Methods() []string {
	out := make([]string, 0, len(d.methods))
	for name := range d.methods {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Associations lists decorated associations in declaration order.
func (d *Definition) Associations() []string {
	out := make([]string, 0, len(d.associations))
	for _, assoc := range d.associations {
		out = append(out, assoc.name)
	}
	return out
}

// IsA reports whether d is other or extends it.
func (d *Definition) IsA(other *Definition) bool {
	for current := d; current != nil; current = current.parent {
		if current == other {
			return true
		}
	}
	return false
}

func (d *Definition) bind(t *model.Type) *model.Type {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.modelType == nil {
		d.modelType = t
	}
	return d.modelType
}

type forwardKey struct {
	t    reflect.Type
	name string
}

type forwardEntry struct {
	binding dispatch.Binding
	ok      bool
}

// forwarder memoises the policy decision and the reflection binding of name
// on t, misses included. The policy is fixed once Define returns.
func (d *Definition) forwarder(t reflect.Type, name string) (dispatch.Binding, bool) {
	key := forwardKey{t: t, name: name}
	if cached, ok := d.forwarders.Load(key); ok {
		entry := cached.(forwardEntry)
		return entry.binding, entry.ok
	}
	var (
		binding dispatch.Binding
		ok      bool
	)
	if d.policy.Allows(name) {
		binding, ok = dispatch.Resolve(t, name)
	}
	d.forwarders.Store(key, forwardEntry{binding: binding, ok: ok})
	return binding, ok
}

// CallType forwards a type-level call to the bound model type's finder.
func (d *Definition) CallType(name string, args ...any) (any, error) {
	t := d.ModelType()
	if t == nil {
		return nil, fmt.Errorf("decorator: %s is not bound to a model type", d.name)
	}
	return t.Call(name, args...)
}

func (d *Definition) finder() (model.Finder, error) {
	t := d.ModelType()
	if t == nil {
		return nil, fmt.Errorf("decorator: %s is not bound to a model type", d.name)
	}
	finder := t.Finder()
	if finder == nil {
		return nil, fmt.Errorf("decorator: model type %s has no finder", t.Name())
	}
	return finder, nil
}

// Find decorates the record with the given id.
func (d *Definition) Find(id any, opts ...Option) (*Decorator, error) {
	finder, err := d.finder()
	if err != nil {
		return nil, err
	}
	found, err := finder.FindByID(id)
	if err != nil {
		return nil, err
	}
	return New(d, found, opts...)
}

// First decorates the first record of the model type.
func (d *Definition) First(opts ...Option) (*Decorator, error) {
	finder, err := d.finder()
	if err != nil {
		return nil, err
	}
	found, err := finder.First()
	if err != nil {
		return nil, err
	}
	return New(d, found, opts...)
}

// Last decorates the last record of the model type.
func (d *Definition) Last(opts ...Option) (*Decorator, error) {
	finder, err := d.finder()
	if err != nil {
		return nil, err
	}
	found, err := finder.Last()
	if err != nil {
		return nil, err
	}
	return New(d, found, opts...)
}

// All decorates every record of the model type.
func (d *Definition) All(opts ...Option) (*Collection, error) {
	finder, err := d.finder()
	if err != nil {
		return nil, err
	}
	all, err := finder.FindAll()
	if err != nil {
		return nil, err
	}
	return newCollection(all, d, d.registry, buildOptions(opts))
}

// Decorate wraps input with this definition. Sequences become a *Collection,
// anything else a *Decorator. A decorator already built from d is unwrapped
// and rebuilt with its options as defaults.
func (d *Definition) Decorate(input any, opts ...Option) (any, error) {
	if existing, ok := input.(*Decorator); ok && existing != nil && existing.def == d {
		input = existing.model
		opts = append([]Option{WithOptions(existing.options)}, opts...)
	}
	options := buildOptions(opts)
	if _, ok := sequenceOf(input); ok {
		collection, err := newCollection(input, d, d.registry, options)
		if err != nil {
			return nil, err
		}
		return collection, nil
	}
	dec, err := d.registry.decorateWith(d, input, options)
	if err != nil {
		return nil, err
	}
	return dec, nil
}

// DecorateCollection wraps source in a collection of this definition.
func (d *Definition) DecorateCollection(source any, opts ...Option) (*Collection, error) {
	return newCollection(source, d, d.registry, buildOptions(opts))
}

func modelAccessor(d *Decorator, args ...any) (any, error) {
	if len(args) > 0 {
		return nil, &dispatch.ArgumentError{Member: "Model", Want: 0, Got: len(args)}
	}
	return d.model, nil
}
