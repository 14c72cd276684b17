package decorator

import (
	"maps"

	"github.com/goliatone/go-presenter/pkg/helpers"
)

// DefaultVersion is the version tag used when none is requested.
const DefaultVersion = "default"

// Context carries arbitrary request data into presenters. Decorators copy it
// at construction so later changes by the caller are not observed.
type Context map[string]any

// Clone returns a shallow copy.
func (c Context) Clone() Context {
	if c == nil {
		return Context{}
	}
	return maps.Clone(c)
}

// Options are the decoration options shared by single decorations and every
// element of a collection.
type Options struct {
	Version string
	Context Context
	Helpers *helpers.Helpers
}

// Option configures a decoration request.
type Option func(*Options)

// WithVersion selects the registered version. Empty means DefaultVersion.
func WithVersion(version string) Option {
	return func(o *Options) {
		o.Version = version
	}
}

// WithContext sets the presenter context.
func WithContext(ctx Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

// WithContextValue adds one context entry.
func WithContextValue(key string, value any) Option {
	return func(o *Options) {
		o.Context = o.Context.Clone()
		o.Context[key] = value
	}
}

// WithHelpers overrides the process-wide helper context.
func WithHelpers(h *helpers.Helpers) Option {
	return func(o *Options) {
		o.Helpers = h
	}
}

// WithOptions applies a complete option set, typically taken from another
// decorator or collection.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts.clone()
	}
}

func buildOptions(opts []Option) Options {
	var out Options
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out.clone()
}

func (o Options) clone() Options {
	out := o
	out.Context = o.Context.Clone()
	if out.Version == "" {
		out.Version = DefaultVersion
	}
	return out
}
