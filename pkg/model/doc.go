// Package model defines the contract presenters expect from the host model
// layer: a serialization primitive producing ordered attributes, an optional
// lazy-load hook, a single-inheritance type hierarchy with collection
// accessors, and a per-instance decoration cache models opt into by embedding
// Support. Values that implement none of the optional interfaces still work:
// exported struct fields are serialized through their `json` tags and members
// are reached by reflection. Record and RecordSet provide a generic attribute
// bag implementation used by manifest-driven tooling and tests.
package model
