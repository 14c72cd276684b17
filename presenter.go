// Package presenter wraps domain models in presentation decorators. It
// re-exports the core types of pkg/decorator and offers shortcuts bound to the
// default registry.
package presenter

import (
	"io/fs"

	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/helpers"
	"github.com/goliatone/go-presenter/pkg/manifest"
	"github.com/goliatone/go-presenter/pkg/model"
	theme "github.com/goliatone/go-theme"
)

// Decorator aliases decorator.Decorator.
type Decorator = decorator.Decorator

// Definition aliases decorator.Definition.
type Definition = decorator.Definition

// Collection aliases decorator.Collection.
type Collection = decorator.Collection

// Registry aliases decorator.Registry.
type Registry = decorator.Registry

// Option configures a decoration request.
type Option = decorator.Option

// DefineOption configures a definition.
type DefineOption = decorator.DefineOption

// Context is the presenter context map.
type Context = decorator.Context

// JSONOptions aliases decorator.JSONOptions.
type JSONOptions = decorator.JSONOptions

// Define builds and registers a definition. See decorator.Define.
func Define(name string, opts ...DefineOption) (*Definition, error) {
	return decorator.Define(name, opts...)
}

// MustDefine is Define that panics on configuration errors.
func MustDefine(name string, opts ...DefineOption) *Definition {
	return decorator.MustDefine(name, opts...)
}

// Decorate wraps m with the presenter the default registry resolves for it.
func Decorate(m any, opts ...Option) (*Decorator, error) {
	return decorator.Default().Decorate(m, opts...)
}

// DecorateCollection wraps a sequence of models, resolving each element.
func DecorateCollection(source any, opts ...Option) (*Collection, error) {
	return decorator.Default().DecorateCollection(source, opts...)
}

// DecorateAll decorates every model t's finder returns.
func DecorateAll(t *model.Type, opts ...Option) (*Collection, error) {
	return decorator.Default().DecorateAll(t, opts...)
}

// LoadManifest reads every manifest in fsys and defines its decorators in the
// default registry.
func LoadManifest(fsys fs.FS, types map[string]*model.Type) (map[string]*Definition, error) {
	m, err := manifest.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	return m.Define(decorator.Default(), types)
}

// UseThemeSelector installs a process-wide helper context whose Token and
// Tokens read from selector, and returns it.
func UseThemeSelector(selector theme.ThemeSelector, name, variant string, opts ...helpers.Option) *helpers.Helpers {
	h := helpers.New(append(opts, helpers.WithTheme(selector, name, variant))...)
	helpers.SetCurrent(h)
	return h
}
