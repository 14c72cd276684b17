package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/goliatone/go-presenter/internal/dispatch"
	"github.com/goliatone/go-presenter/internal/naming"
)

// associationTag marks struct fields that hold associations. They are left out
// of the base attributes unless requested through SerializeOptions.Include.
const associationTag = "association"

// Serialize runs the model's native serialization, falling back to
// SerializeStruct for values that do not implement Serializer.
func Serialize(m any, opts SerializeOptions) (Attributes, error) {
	if m == nil {
		return Attributes{}, fmt.Errorf("model: cannot serialize nil model")
	}
	if s, ok := m.(Serializer); ok {
		return s.Serialize(opts)
	}
	return SerializeStruct(m, opts)
}

// SerializeStruct serializes the exported fields of a struct (or pointer to
// struct) using their `json` tag names. Fields tagged `model:"association"`
// are only emitted through Include. Methods and Include entries are resolved
// by member name, so "similar_products" reaches SimilarProducts.
func SerializeStruct(m any, opts SerializeOptions) (Attributes, error) {
	value := reflect.ValueOf(m)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return Attributes{}, fmt.Errorf("model: cannot serialize nil %T", m)
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return Attributes{}, fmt.Errorf("model: cannot serialize %T as attributes", m)
	}

	var attrs Attributes
	for _, field := range reflect.VisibleFields(value.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		if field.Tag.Get("model") == associationTag {
			continue
		}
		key, skip := jsonKey(field)
		if skip || !opts.Keep(key) {
			continue
		}
		fieldValue, err := value.FieldByIndexErr(field.Index)
		if err != nil {
			continue
		}
		attrs.Set(key, fieldValue.Interface())
	}

	if err := appendMethods(&attrs, m, opts.Methods); err != nil {
		return Attributes{}, err
	}
	if err := appendIncludes(&attrs, m, opts.Include); err != nil {
		return Attributes{}, err
	}
	return attrs, nil
}

// SerializeValue serializes any value reachable from a model: nil stays nil,
// Serializers and structs become Attributes, slices become []any and scalars
// are returned unchanged.
func SerializeValue(v any, opts SerializeOptions) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(Serializer); ok {
		return s.Serialize(opts)
	}
	if seq, ok := v.(Sequence); ok {
		out := make([]any, 0, seq.Len())
		for i := 0; i < seq.Len(); i++ {
			item, err := SerializeValue(seq.At(i), opts)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	}

	value := reflect.ValueOf(v)
	switch value.Kind() {
	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return nil, nil
		}
		if value.Elem().Kind() == reflect.Struct {
			return SerializeStruct(v, opts)
		}
		return v, nil
	case reflect.Struct:
		return SerializeStruct(v, opts)
	case reflect.Slice, reflect.Array:
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return v, nil
		}
		out := make([]any, 0, value.Len())
		for i := 0; i < value.Len(); i++ {
			item, err := SerializeValue(value.Index(i).Interface(), opts)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	default:
		return v, nil
	}
}

func appendMethods(attrs *Attributes, m any, methods []string) error {
	for _, name := range methods {
		result, err := dispatch.Invoke(m, naming.Export(name))
		if err != nil {
			return fmt.Errorf("model: method %s: %w", name, err)
		}
		attrs.Set(name, result)
	}
	return nil
}

func appendIncludes(attrs *Attributes, m any, include map[string]SerializeOptions) error {
	if len(include) == 0 {
		return nil
	}
	names := make([]string, 0, len(include))
	for name := range include {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		assoc, err := dispatch.Invoke(m, naming.Export(name))
		if err != nil {
			return fmt.Errorf("model: include %s: %w", name, err)
		}
		serialized, err := SerializeValue(assoc, include[name])
		if err != nil {
			return fmt.Errorf("model: include %s: %w", name, err)
		}
		attrs.Set(name, serialized)
	}
	return nil
}

func jsonKey(field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name, false
	}
	return name, false
}
