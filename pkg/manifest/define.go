package manifest

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/goliatone/go-presenter/internal/dispatch"
	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/model"
)

// ErrUnknownModel is returned when a declaration names a model type missing
// from the types passed to Define.
var ErrUnknownModel = errors.New("manifest: unknown model type")

// Define builds every declared decorator in reg, parents before children.
// types maps the model names used in the manifest to model types.
// Declarations without a model build unregistered base definitions that
// other declarations can extend.
func (m *Manifest) Define(reg *decorator.Registry, types map[string]*model.Type) (map[string]*decorator.Definition, error) {
	if reg == nil {
		return nil, errors.New("manifest: registry is nil")
	}
	b := &builder{
		manifest: m,
		registry: reg,
		types:    types,
		defined:  make(map[string]*decorator.Definition),
		visiting: make(map[string]bool),
	}
	for _, name := range m.Names() {
		if _, err := b.define(name); err != nil {
			return nil, err
		}
	}
	return b.defined, nil
}

type builder struct {
	manifest *Manifest
	registry *decorator.Registry
	types    map[string]*model.Type
	defined  map[string]*decorator.Definition
	visiting map[string]bool
}

func (b *builder) define(name string) (*decorator.Definition, error) {
	if def, ok := b.defined[name]; ok {
		return def, nil
	}
	decl, ok := b.manifest.Decorator(name)
	if !ok {
		return nil, fmt.Errorf("manifest: unknown decorator %q", name)
	}
	if b.visiting[name] {
		return nil, fmt.Errorf("manifest: inheritance cycle at decorator %q (file %s)", name, decl.Source)
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	var parent *decorator.Definition
	if decl.Extends != "" {
		var err error
		if parent, err = b.define(decl.Extends); err != nil {
			return nil, err
		}
	}

	var modelType *model.Type
	if decl.Model != "" {
		modelType = b.types[decl.Model]
		if modelType == nil {
			return nil, fmt.Errorf("%w %q (decorator %q, file %s)", ErrUnknownModel, decl.Model, name, decl.Source)
		}
	} else if parent != nil {
		modelType = parent.ModelType()
	}

	opts := []decorator.DefineOption{decorator.WithRegistry(b.registry)}
	if decl.Model != "" {
		opts = append(opts, decorator.Decorates(modelType))
	}
	if decl.Version != "" {
		opts = append(opts, decorator.ForVersion(decl.Version))
	}

	if len(decl.Allow) > 0 {
		members, err := expand(decl.Allow, modelType)
		if err != nil {
			return nil, fmt.Errorf("manifest: decorator %q (file %s) allow: %w", name, decl.Source, err)
		}
		opts = append(opts, decorator.Allows(members...))
	}
	if len(decl.Deny) > 0 {
		members, err := expand(decl.Deny, modelType)
		if err != nil {
			return nil, fmt.Errorf("manifest: decorator %q (file %s) deny: %w", name, decl.Source, err)
		}
		opts = append(opts, decorator.Denies(members...))
	}

	for _, method := range sortedKeys(decl.Methods) {
		opts = append(opts, decorator.WithMethod(method, templateMethod(method, decl.Methods[method])))
	}
	if len(decl.Associations) > 0 {
		opts = append(opts, decorator.DecoratesAssociations(decl.Associations...))
	}
	if !isZeroJSON(decl.JSON) {
		opts = append(opts, decorator.WithJSONDefaults(decl.JSON.options()))
	}
	if parent != nil {
		opts = append(opts, decorator.Extends(parent))
	}

	def, err := decorator.Define(name, opts...)
	if err != nil {
		return nil, fmt.Errorf("manifest: file %s: %w", decl.Source, err)
	}
	b.defined[name] = def
	return def, nil
}

// templateMethod renders tpl with the model's serialized attributes. The
// presenter context is available as "context" unless an attribute of that
// name exists.
func templateMethod(name, tpl string) decorator.Method {
	return func(d *decorator.Decorator, args ...any) (any, error) {
		if len(args) > 0 {
			return nil, &dispatch.ArgumentError{Member: name, Want: 0, Got: len(args)}
		}
		attrs, err := model.Serialize(d.Model(), model.SerializeOptions{})
		if err != nil {
			return nil, err
		}
		data := attrs.Map()
		if _, exists := data["context"]; !exists {
			data["context"] = map[string]any(d.Context())
		}
		return d.Helpers().Render(tpl, data)
	}
}

// expand resolves glob patterns against the exported members of t's Go
// type. Plain names pass through untouched.
func expand(patterns []string, t *model.Type) ([]string, error) {
	var members []string
	out := make([]string, 0, len(patterns))
	seen := make(map[string]struct{}, len(patterns))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !isGlob(pattern) {
			add(pattern)
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		if members == nil {
			goType := goTypeOf(t)
			if goType == nil {
				return nil, fmt.Errorf("pattern %q needs a model type bound to a Go type", pattern)
			}
			members = dispatch.Members(goType)
		}
		matched := false
		for _, member := range members {
			if ok, _ := doublestar.Match(pattern, member); ok {
				add(member)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("pattern %q matches no member", pattern)
		}
	}
	return out, nil
}

func goTypeOf(t *model.Type) reflect.Type {
	if t == nil {
		return nil
	}
	return t.GoType()
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func (c JSONConfig) options() decorator.JSONOptions {
	opts := decorator.JSONOptions{
		SerializeOptions: model.SerializeOptions{
			Only:    append([]string(nil), c.Only...),
			Except:  append([]string(nil), c.Except...),
			Methods: append([]string(nil), c.Methods...),
		},
		DecoratedMethods: append([]string(nil), c.DecoratedMethods...),
	}
	if len(c.DecoratedInclude) > 0 {
		opts.DecoratedInclude = decorator.IncludeNames(c.DecoratedInclude...)
	}
	return opts
}

func isZeroJSON(c JSONConfig) bool {
	return len(c.Only) == 0 && len(c.Except) == 0 && len(c.Methods) == 0 &&
		len(c.DecoratedMethods) == 0 && len(c.DecoratedInclude) == 0
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
