// Package policy decides which member calls a presenter forwards to the model
// it wraps.
//
// A Policy runs in one of two modes. In deny mode every member is forwarded
// except the denied ones; the default deny set covers the protocol methods
// any Go value may carry (String, MarshalJSON, Error and friends). In allow
// mode only the listed members are forwarded. The two modes are mutually
// exclusive and switching after configuration is an error. The forced proxy
// members ID and ToParam are always forwarded.
//
// Names are compared in their canonical exported form, so "to_param",
// "toParam" and "ToParam" are the same member.
package policy
