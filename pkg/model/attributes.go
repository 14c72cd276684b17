package model

import (
	"bytes"
	"sort"

	json "github.com/goccy/go-json"
)

// Attributes is an ordered string-keyed mapping. Keys keep their first
// insertion order; setting an existing key replaces the value in place. The
// zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]any
}

// AttributesFromMap builds Attributes from m with keys in sorted order.
func AttributesFromMap(m map[string]any) Attributes {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var attrs Attributes
	for _, key := range keys {
		attrs.Set(key, m[key])
	}
	return attrs
}

// Set stores value under key.
func (a *Attributes) Set(key string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Delete removes key, preserving the order of the remaining keys.
func (a *Attributes) Delete(key string) {
	if _, exists := a.values[key]; !exists {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i:i], a.keys[i+1:]...)
			break
		}
	}
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (any, bool) {
	value, ok := a.values[key]
	return value, ok
}

// Has reports whether key is present.
func (a Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Len returns the number of keys.
func (a Attributes) Len() int { return len(a.keys) }

// Keys returns the keys in order.
func (a Attributes) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Map returns an unordered copy of the values.
func (a Attributes) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for key, value := range a.values {
		out[key] = value
	}
	return out
}

// Clone returns a shallow copy.
func (a Attributes) Clone() Attributes {
	var out Attributes
	for _, key := range a.keys {
		out.Set(key, a.values[key])
	}
	return out
}

// Merge returns a shallow merge of a and other. Keys of other win on
// conflict; keys new to a are appended in other's order.
func (a Attributes) Merge(other Attributes) Attributes {
	out := a.Clone()
	for _, key := range other.keys {
		out.Set(key, other.values[key])
	}
	return out
}

// Equal reports whether both mappings hold the same keys, in the same order,
// with deeply equal values.
func (a Attributes) Equal(other Attributes) bool {
	if len(a.keys) != len(other.keys) {
		return false
	}
	for i, key := range a.keys {
		if other.keys[i] != key {
			return false
		}
		if !valuesEqual(a.values[key], other.values[key]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the attributes as a JSON object in key order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		encodedValue, err := json.Marshal(a.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func valuesEqual(a, b any) bool {
	if left, ok := a.(Attributes); ok {
		right, ok := b.(Attributes)
		return ok && left.Equal(right)
	}
	if left, ok := a.([]any); ok {
		right, ok := b.([]any)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !valuesEqual(left[i], right[i]) {
				return false
			}
		}
		return true
	}
	if left, ok := a.([]Attributes); ok {
		right, ok := b.([]Attributes)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !left[i].Equal(right[i]) {
				return false
			}
		}
		return true
	}
	return Equal(a, b)
}
