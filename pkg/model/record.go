package model

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-presenter/internal/naming"
)

// Record is a generic attribute-bag model. Attributes keep insertion order;
// associations hold other records, record sets or any other model values.
// Members are exposed through ReadMember under their canonical names, so a
// "unit_price" attribute answers to UnitPrice.
type Record struct {
	Support

	typ          *Type
	attrs        Attributes
	assocNames   []string
	associations map[string]any
}

// NewRecord builds a record of type t holding a copy of attrs.
func NewRecord(t *Type, attrs Attributes) *Record {
	return &Record{typ: t, attrs: attrs.Clone()}
}

// ModelType implements Typed.
func (r *Record) ModelType() *Type { return r.typ }

// Attributes returns a copy of the record attributes.
func (r *Record) Attributes() Attributes { return r.attrs.Clone() }

// Get returns the attribute stored under key.
func (r *Record) Get(key string) (any, bool) { return r.attrs.Get(key) }

// Set assigns an attribute.
func (r *Record) Set(key string, value any) { r.attrs.Set(key, value) }

// SetAssociation attaches an associated value under name.
func (r *Record) SetAssociation(name string, value any) {
	if r.associations == nil {
		r.associations = make(map[string]any)
	}
	if _, ok := r.associations[name]; !ok {
		r.assocNames = append(r.assocNames, name)
	}
	r.associations[name] = value
}

// Association returns the associated value stored under name.
func (r *Record) Association(name string) (any, bool) {
	value, ok := r.associations[name]
	return value, ok
}

// AssociationNames lists associations in insertion order.
func (r *Record) AssociationNames() []string {
	return append([]string(nil), r.assocNames...)
}

// ID returns the "id" attribute.
func (r *Record) ID() any {
	id, _ := r.attrs.Get("id")
	return id
}

// ToParam renders the identifier for URLs. It is empty when the record has
// no id.
func (r *Record) ToParam() string {
	id := r.ID()
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

// ReadMember implements dispatch.MemberReader. Attributes are matched before
// associations, both by canonical name.
func (r *Record) ReadMember(name string) (any, bool) {
	canonical := naming.Export(name)
	for _, key := range r.attrs.Keys() {
		if naming.Export(key) == canonical {
			return r.attrs.Get(key)
		}
	}
	for _, key := range r.assocNames {
		if naming.Export(key) == canonical {
			return r.associations[key], true
		}
	}
	return nil, false
}

// Serialize implements Serializer.
func (r *Record) Serialize(opts SerializeOptions) (Attributes, error) {
	var out Attributes
	for _, key := range r.attrs.Keys() {
		if !opts.Keep(key) {
			continue
		}
		value, _ := r.attrs.Get(key)
		out.Set(key, value)
	}
	for _, name := range opts.Methods {
		value, ok := r.ReadMember(name)
		if !ok {
			return Attributes{}, fmt.Errorf("model: method %s: %w", name, ErrNoMember)
		}
		out.Set(name, value)
	}

	names := make([]string, 0, len(opts.Include))
	for name := range opts.Include {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		assoc, ok := r.ReadMember(name)
		if !ok {
			return Attributes{}, fmt.Errorf("model: include %s: %w", name, ErrNoMember)
		}
		value, err := SerializeValue(assoc, opts.Include[name])
		if err != nil {
			return Attributes{}, fmt.Errorf("model: include %s: %w", name, err)
		}
		out.Set(name, value)
	}
	return out, nil
}

// Equal reports whether other is a record of the same type with the same id.
// Records without an id are only equal to themselves.
func (r *Record) Equal(other any) bool {
	o, ok := other.(*Record)
	if !ok || r == nil || o == nil {
		return ok && r == o
	}
	if r == o {
		return true
	}
	if r.typ != o.typ || r.ID() == nil {
		return false
	}
	return fmt.Sprint(r.ID()) == fmt.Sprint(o.ID())
}

func (r *Record) String() string {
	return fmt.Sprintf("%s(%v)", r.typ.Name(), r.ID())
}

// RecordSet is an ordered set of records acting as a model type finder.
type RecordSet struct {
	typ     *Type
	records []*Record
}

// NewRecordSet builds a set of records of type t.
func NewRecordSet(t *Type, records ...*Record) *RecordSet {
	return &RecordSet{typ: t, records: append([]*Record(nil), records...)}
}

// Add appends records to the set.
func (s *RecordSet) Add(records ...*Record) {
	s.records = append(s.records, records...)
}

// ModelType returns the element type of the set.
func (s *RecordSet) ModelType() *Type { return s.typ }

// Len implements Sequence.
func (s *RecordSet) Len() int { return len(s.records) }

// At implements Sequence.
func (s *RecordSet) At(i int) any { return s.records[i] }

// Records returns a copy of the underlying slice.
func (s *RecordSet) Records() []*Record {
	return append([]*Record(nil), s.records...)
}

// FindAll implements Finder.
func (s *RecordSet) FindAll() (any, error) {
	return NewRecordSet(s.typ, s.records...), nil
}

// FindByID implements Finder. Identifiers are compared in their printed
// form so 7, int64(7) and "7" all match.
func (s *RecordSet) FindByID(id any) (any, error) {
	want := fmt.Sprint(id)
	for _, record := range s.records {
		if record.ID() != nil && fmt.Sprint(record.ID()) == want {
			return record, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %v", ErrNotFound, s.typ.Name(), id)
}

// First implements Finder.
func (s *RecordSet) First() (any, error) {
	if len(s.records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, s.typ.Name())
	}
	return s.records[0], nil
}

// Last implements Finder.
func (s *RecordSet) Last() (any, error) {
	if len(s.records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, s.typ.Name())
	}
	return s.records[len(s.records)-1], nil
}

// Where returns the records whose attribute key equals value.
func (s *RecordSet) Where(key string, value any) *RecordSet {
	out := NewRecordSet(s.typ)
	for _, record := range s.records {
		if got, ok := record.Get(key); ok && Equal(got, value) {
			out.records = append(out.records, record)
		}
	}
	return out
}
