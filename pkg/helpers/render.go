package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gojson "github.com/goccy/go-json"
)

// Render evaluates a pongo2 template. Inline content (anything holding "{{"
// or "{%") is compiled once and cached; other values name a template loaded
// through WithTemplateFS. The helper context itself is reachable as "h".
func (h *Helpers) Render(tpl string, data map[string]any) (string, error) {
	if strings.TrimSpace(tpl) == "" {
		return "", errors.New("helpers: template is required")
	}
	compiled, err := h.template(tpl)
	if err != nil {
		return "", err
	}

	ctx := make(pongo2.Context, len(h.globals)+len(data)+1)
	for key, value := range h.globals {
		ctx[key] = value
	}
	for key, value := range data {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := contextValue(value)
		if err != nil {
			return "", fmt.Errorf("helpers: convert %q: %w", key, err)
		}
		ctx[key] = converted
	}
	ctx["h"] = h

	out, err := compiled.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("helpers: execute template: %w", err)
	}
	return out, nil
}

func (h *Helpers) template(tpl string) (*pongo2.Template, error) {
	h.mu.RLock()
	compiled, ok := h.compiled[tpl]
	h.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if compiled, ok := h.compiled[tpl]; ok {
		return compiled, nil
	}

	var err error
	if isTemplateContent(tpl) {
		compiled, err = h.templateSet.FromString(tpl)
	} else {
		compiled, err = h.templateSet.FromFile(tpl)
	}
	if err != nil {
		return nil, fmt.Errorf("helpers: parse template: %w", err)
	}
	h.compiled[tpl] = compiled
	return compiled, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

// contextValue flattens JSON-marshalling values (ordered attribute maps and
// the like) into plain maps pongo2 can index. Everything else is passed
// through so templates can still call methods on it.
func contextValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := contextValue(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := contextValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case json.Marshaler:
		raw, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := gojson.Unmarshal(raw, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	default:
		return value, nil
	}
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		register := func(name string, fn pongo2.FilterFunction) {
			if pongo2.FilterExists(name) {
				return
			}
			_ = pongo2.RegisterFilter(name, fn)
		}
		register("currency", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(Current().Currency(in.Interface())), nil
		})
		register("sanitize", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsSafeValue(Current().Sanitize(in.String())), nil
		})
	})
}
