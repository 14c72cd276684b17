// Package dispatch resolves named members on arbitrary Go values by
// reflection and turns them into reusable invokers. It backs the decorator's
// forwarding path, the collection passthrough and type-level fallbacks.
package dispatch

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrNoMember reports that a value exposes no member with the requested name.
var ErrNoMember = errors.New("dispatch: no such member")

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoker calls a resolved member on a receiver of the type it was resolved
// for. A trailing error result is returned as the error; zero results yield
// nil, one result yields the value and several results yield []any.
type Invoker func(recv reflect.Value, args []any) (any, error)

// MemberReader is implemented by attribute-bag values whose members are only
// known per instance. It is consulted after static methods and fields.
type MemberReader interface {
	ReadMember(name string) (any, bool)
}

var memberReaderType = reflect.TypeOf((*MemberReader)(nil)).Elem()

// ArgumentError describes a call whose arguments do not fit the member
// signature.
type ArgumentError struct {
	Member   string
	Want     int
	Got      int
	Variadic bool
	Index    int
	Err      error
}

func (e *ArgumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatch: %s argument %d: %v", e.Member, e.Index, e.Err)
	}
	if e.Variadic {
		return fmt.Sprintf("dispatch: %s expects at least %d argument(s), got %d", e.Member, e.Want, e.Got)
	}
	return fmt.Sprintf("dispatch: %s expects %d argument(s), got %d", e.Member, e.Want, e.Got)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// Binding is a member resolved for a Go type. Dynamic bindings come from a
// MemberReader and must be confirmed per instance with Present before use.
type Binding struct {
	Invoke  Invoker
	Dynamic bool
}

// Resolve resolves name on t. Methods in t's method set win over exported
// struct fields; MemberReader implementations are consulted last.
func Resolve(t reflect.Type, name string) (Binding, bool) {
	if t == nil || name == "" {
		return Binding{}, false
	}
	if method, ok := t.MethodByName(name); ok && method.IsExported() {
		return Binding{Invoke: methodInvoker(name, method)}, true
	}
	if field, ok := exportedField(t, name); ok {
		return Binding{Invoke: fieldInvoker(name, field.Index)}, true
	}
	if t.Implements(memberReaderType) {
		return Binding{Invoke: readerInvoker(name), Dynamic: true}, true
	}
	return Binding{}, false
}

// Lookup is Resolve without the binding metadata.
func Lookup(t reflect.Type, name string) (Invoker, bool) {
	binding, ok := Resolve(t, name)
	return binding.Invoke, ok
}

// Present reports whether a MemberReader value currently holds name.
func Present(v any, name string) bool {
	reader, ok := v.(MemberReader)
	if !ok {
		return false
	}
	_, found := reader.ReadMember(name)
	return found
}

// Has reports whether v exposes name as a method, an exported field or a
// MemberReader entry.
func Has(v any, name string) bool {
	if v == nil || name == "" {
		return false
	}
	t := reflect.TypeOf(v)
	if method, ok := t.MethodByName(name); ok && method.IsExported() {
		return true
	}
	if _, ok := exportedField(t, name); ok {
		return true
	}
	if reader, ok := v.(MemberReader); ok {
		_, found := reader.ReadMember(name)
		return found
	}
	return false
}

// Invoke resolves name on v and calls it without caching the binding.
func Invoke(v any, name string, args ...any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: %s on nil value", ErrNoMember, name)
	}
	invoker, ok := Lookup(reflect.TypeOf(v), name)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %T", ErrNoMember, name, v)
	}
	return invoker(reflect.ValueOf(v), args)
}

// Members lists the exported method and field names of t, sorted.
func Members(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for i := 0; i < t.NumMethod(); i++ {
		if method := t.Method(i); method.IsExported() {
			seen[method.Name] = struct{}{}
		}
	}
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		for _, field := range reflect.VisibleFields(st) {
			if field.IsExported() && !field.Anonymous {
				seen[field.Name] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func exportedField(t reflect.Type, name string) (reflect.StructField, bool) {
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	field, ok := st.FieldByName(name)
	if !ok || !field.IsExported() {
		return reflect.StructField{}, false
	}
	return field, true
}

func methodInvoker(name string, method reflect.Method) Invoker {
	fnType := method.Type
	index := method.Index
	return func(recv reflect.Value, args []any) (any, error) {
		in, err := convertArgs(name, fnType, 1, args)
		if err != nil {
			return nil, err
		}
		return normalize(recv.Method(index).Call(in))
	}
}

func fieldInvoker(name string, index []int) Invoker {
	return func(recv reflect.Value, args []any) (any, error) {
		if len(args) > 0 {
			return nil, &ArgumentError{Member: name, Want: 0, Got: len(args)}
		}
		value := recv
		if value.Kind() == reflect.Pointer {
			if value.IsNil() {
				return nil, fmt.Errorf("dispatch: %s read on nil %s", name, value.Type())
			}
			value = value.Elem()
		}
		field, err := value.FieldByIndexErr(index)
		if err != nil {
			return nil, fmt.Errorf("dispatch: %s: %w", name, err)
		}
		return field.Interface(), nil
	}
}

func readerInvoker(name string) Invoker {
	return func(recv reflect.Value, args []any) (any, error) {
		if len(args) > 0 {
			return nil, &ArgumentError{Member: name, Want: 0, Got: len(args)}
		}
		reader, ok := recv.Interface().(MemberReader)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoMember, name)
		}
		value, found := reader.ReadMember(name)
		if !found {
			return nil, fmt.Errorf("%w: %s on %s", ErrNoMember, name, recv.Type())
		}
		return value, nil
	}
}

func convertArgs(member string, fnType reflect.Type, offset int, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn() - offset
	variadic := fnType.IsVariadic()
	fixed := numIn
	if variadic {
		fixed--
	}
	if len(args) < fixed || (!variadic && len(args) > fixed) {
		return nil, &ArgumentError{Member: member, Want: fixed, Got: len(args), Variadic: variadic}
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var target reflect.Type
		if i < fixed {
			target = fnType.In(offset + i)
		} else {
			target = fnType.In(fnType.NumIn() - 1).Elem()
		}
		value, err := convert(arg, target)
		if err != nil {
			return nil, &ArgumentError{Member: member, Want: fixed, Got: len(args), Variadic: variadic, Index: i, Err: err}
		}
		in[i] = value
	}
	return in, nil
}

func convert(arg any, target reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch target.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(target), nil
		default:
			return reflect.Value{}, fmt.Errorf("cannot use nil as %s", target)
		}
	}
	value := reflect.ValueOf(arg)
	if value.Type().AssignableTo(target) {
		return value, nil
	}
	if convertible(value.Type(), target) {
		return value.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", arg, target)
}

func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if isNumeric(from.Kind()) && isNumeric(to.Kind()) {
		return true
	}
	return from.Kind() == to.Kind()
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func normalize(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		errValue := out[n-1]
		out = out[:n-1]
		if !errValue.IsNil() {
			return nil, errValue.Interface().(error)
		}
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, value := range out {
			values[i] = value.Interface()
		}
		return values, nil
	}
}
