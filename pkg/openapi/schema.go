package openapi

import (
	"reflect"
	"sort"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/model"
)

// ExtensionVersion carries the presenter version on exported schemas.
const ExtensionVersion = "x-presenter-version"

// SchemaFor composes dec with opts and infers a schema from the result. The
// schema is titled after the presenter.
func SchemaFor(dec *decorator.Decorator, opts decorator.JSONOptions) (*openapi3.Schema, error) {
	attrs, err := dec.AsJSON(opts)
	if err != nil {
		return nil, err
	}
	schema := InferSchema(attrs)
	schema.Title = dec.Definition().Name()
	schema.Extensions = map[string]any{ExtensionVersion: dec.Version()}
	return schema, nil
}

// CollectionSchema infers an array schema whose items merge the properties of
// every composed element.
func CollectionSchema(c *decorator.Collection, opts decorator.JSONOptions) (*openapi3.Schema, error) {
	items, err := c.AsJSON(opts)
	if err != nil {
		return nil, err
	}
	return InferSchema(items), nil
}

// InferSchema derives a schema from a composed JSON value.
func InferSchema(value any) *openapi3.Schema {
	switch v := value.(type) {
	case nil:
		return &openapi3.Schema{Nullable: true}
	case model.Attributes:
		return objectSchema(v.Keys(), func(key string) any {
			item, _ := v.Get(key)
			return item
		})
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return objectSchema(keys, func(key string) any { return v[key] })
	case []model.Attributes:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return arraySchema(items)
	case []any:
		return arraySchema(v)
	case string:
		return openapi3.NewStringSchema()
	case bool:
		return openapi3.NewBoolSchema()
	case time.Time:
		return openapi3.NewDateTimeSchema()
	case []byte:
		return openapi3.NewBytesSchema()
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return openapi3.NewIntegerSchema()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema()
	case reflect.String:
		return openapi3.NewStringSchema()
	case reflect.Bool:
		return openapi3.NewBoolSchema()
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return arraySchema(items)
	}

	raw, err := gojson.Marshal(value)
	if err != nil {
		return openapi3.NewSchema()
	}
	var decoded any
	if err := gojson.Unmarshal(raw, &decoded); err != nil {
		return openapi3.NewSchema()
	}
	return InferSchema(decoded)
}

func objectSchema(keys []string, get func(string) any) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	for _, key := range keys {
		schema.WithProperty(key, InferSchema(get(key)))
	}
	return schema
}

func arraySchema(items []any) *openapi3.Schema {
	var merged *openapi3.Schema
	for _, item := range items {
		if item == nil {
			continue
		}
		merged = mergeSchemas(merged, InferSchema(item))
	}
	if merged == nil {
		merged = openapi3.NewSchema()
	}
	return openapi3.NewArraySchema().WithItems(merged)
}

// mergeSchemas unions object properties. Differing types degrade to an
// untyped schema.
func mergeSchemas(current, next *openapi3.Schema) *openapi3.Schema {
	if current == nil {
		return next
	}
	if !sameType(current, next) {
		return openapi3.NewSchema()
	}
	if current.Type.Is(openapi3.TypeObject) {
		for name, ref := range next.Properties {
			existing, ok := current.Properties[name]
			if !ok {
				current.Properties[name] = ref
				continue
			}
			current.Properties[name] = openapi3.NewSchemaRef("", mergeSchemas(existing.Value, ref.Value))
		}
	}
	return current
}

func sameType(a, b *openapi3.Schema) bool {
	if a.Type == nil || b.Type == nil {
		return a.Type == nil && b.Type == nil
	}
	return reflect.DeepEqual(a.Type.Slice(), b.Type.Slice())
}
