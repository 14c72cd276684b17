package decorator

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-presenter/pkg/model"
)

// Registry maps model types to presenter definitions per version. Writes
// happen at definition time; reads on every decoration.
type Registry struct {
	mu     sync.RWMutex
	tables map[*model.Type]map[string]*Definition

	logger   *slog.Logger
	observer Observer
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger. Registries discard logs by default.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver sets the registry observer.
func WithObserver(observer Observer) RegistryOption {
	return func(r *Registry) {
		r.observer = observer
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tables: make(map[*model.Type]map[string]*Definition),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by definitions that do not
// name one.
func Default() *Registry {
	return defaultRegistry
}

// Registration is one entry of the registration table.
type Registration struct {
	Model      *model.Type
	Version    string
	Definition *Definition
}

// Register binds def to t under version. An empty version is only accepted
// for conventionally named definitions ("ProductDecorator" for "Product"),
// which register under DefaultVersion.
func (r *Registry) Register(def *Definition, t *model.Type, version string) error {
	if def == nil {
		return configError("", "definition is required", nil)
	}
	if t == nil {
		return configError(def.name, "model type is required", nil)
	}
	if version == "" {
		if def.name != t.Name()+"Decorator" {
			return configError(def.name, "version required for non-conventional naming", nil)
		}
		version = DefaultVersion
	}

	r.mu.Lock()
	table, ok := r.tables[t]
	if !ok {
		table = make(map[string]*Definition)
		r.tables[t] = table
	}
	if existing, ok := table[version]; ok && existing != def {
		r.mu.Unlock()
		return configError(def.name, fmt.Sprintf("version %q of %s is already registered by %s", version, t.Name(), existing.name), nil)
	}
	table[version] = def
	r.mu.Unlock()

	def.bind(t)
	r.logger.Debug("decorator registered", "decorator", def.name, "model", t.Name(), "version", version)
	return nil
}

// Resolve finds the definition for t and version. Each type of the ancestor
// chain, most derived first, is checked for version and then for
// DefaultVersion.
func (r *Registry) Resolve(t *model.Type, version string) (*Definition, error) {
	if version == "" {
		version = DefaultVersion
	}
	if t == nil {
		return nil, &ResolutionError{Model: "<nil>", Version: version}
	}

	var (
		def      *Definition
		matched  string
		depth    int
		resolved bool
	)
	r.mu.RLock()
	for i, ancestor := range t.Ancestors() {
		if def, matched, resolved = r.lookup(ancestor, version); resolved {
			depth = i
			break
		}
	}
	r.mu.RUnlock()

	if !resolved {
		r.logger.Debug("decorator not found", "model", t.Name(), "version", version)
		if r.observer != nil {
			r.observer.Unresolved(t.Name(), version)
		}
		return nil, &ResolutionError{Model: t.Name(), Version: version}
	}

	fallback := depth > 0 || matched != version
	if fallback {
		r.logger.Debug("decorator resolved by fallback", "model", t.Name(), "version", version,
			"decorator", def.name, "depth", depth, "matched", matched)
	}
	if r.observer != nil {
		r.observer.Resolved(t.Name(), version, def.name, fallback)
	}
	return def, nil
}

// lookup checks one table. Callers hold r.mu.
func (r *Registry) lookup(t *model.Type, version string) (*Definition, string, bool) {
	table := r.tables[t]
	if def, ok := table[version]; ok {
		return def, version, true
	}
	if def, ok := table[DefaultVersion]; ok {
		return def, DefaultVersion, true
	}
	return nil, "", false
}

// Decoratable reports whether some definition is registered for t or one of
// its ancestors.
func (r *Registry) Decoratable(t *model.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ancestor := range t.Ancestors() {
		if len(r.tables[ancestor]) > 0 {
			return true
		}
	}
	return false
}

// Registrations returns a snapshot of the table sorted by model name and
// version.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	out := make([]Registration, 0, len(r.tables))
	for t, table := range r.tables {
		for version, def := range table {
			out = append(out, Registration{Model: t, Version: version, Definition: def})
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Model.Name() != out[j].Model.Name() {
			return out[i].Model.Name() < out[j].Model.Name()
		}
		return out[i].Version < out[j].Version
	})
	return out
}

// Decorate resolves the definition for m's model type and the requested
// version and wraps m. Models embedding model.Support get the same presenter
// back for identical options.
func (r *Registry) Decorate(m any, opts ...Option) (*Decorator, error) {
	if isNil(m) {
		return nil, fmt.Errorf("decorator: cannot decorate a nil model")
	}
	return r.decorateWith(nil, m, buildOptions(opts))
}

// DecorateAll decorates every record of t through its finder.
func (r *Registry) DecorateAll(t *model.Type, opts ...Option) (*Collection, error) {
	options := buildOptions(opts)
	def, err := r.Resolve(t, options.Version)
	if err != nil {
		return nil, err
	}
	finder := t.Finder()
	if finder == nil {
		return nil, fmt.Errorf("decorator: model type %s has no finder", t.Name())
	}
	all, err := finder.FindAll()
	if err != nil {
		return nil, err
	}
	return newCollection(all, def, r, options)
}

// DecorateCollection wraps source in a collection whose elements are
// resolved one by one.
func (r *Registry) DecorateCollection(source any, opts ...Option) (*Collection, error) {
	return newCollection(source, nil, r, buildOptions(opts))
}

// decorateWith builds a presenter, resolving the definition when def is nil
// and going through the model's decoration cache when it has one.
func (r *Registry) decorateWith(def *Definition, m any, options Options) (*Decorator, error) {
	if def == nil {
		if isNil(m) {
			return nil, fmt.Errorf("decorator: cannot decorate a nil model")
		}
		resolved, err := r.Resolve(model.TypeOf(m), options.Version)
		if err != nil {
			return nil, err
		}
		def = resolved
	}

	cacheable, ok := m.(model.Cacheable)
	if !ok || options.Helpers != nil {
		return newDecorator(def, m, options)
	}
	cache := cacheable.DecorationCache()
	key := cacheKey(options)

	if cached, ok := cache.Load(key); ok {
		if dec, ok := cached.(*Decorator); ok && dec.def == def {
			r.cacheHit(def)
			return dec, nil
		}
	}

	fresh, err := newDecorator(def, m, options)
	if err != nil {
		return nil, err
	}
	actual, loaded := cache.LoadOrStore(key, fresh)
	if !loaded {
		return fresh, nil
	}
	if dec, ok := actual.(*Decorator); ok && dec.def == def {
		r.cacheHit(def)
		return dec, nil
	}
	cache.Store(key, fresh)
	return fresh, nil
}

func (r *Registry) cacheHit(def *Definition) {
	r.logger.Debug("decorator cache hit", "decorator", def.name)
	if r.observer != nil {
		r.observer.CacheHit(def.name)
	}
}

// cacheKey renders the options as JSON with sorted map keys so equal option
// sets share a key regardless of construction order.
func cacheKey(options Options) string {
	payload := map[string]any{
		"context": options.Context,
		"version": options.Version,
	}
	data, err := gojson.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%s|%v", options.Version, options.Context)
	}
	return string(data)
}
