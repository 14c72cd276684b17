// Package decorator wraps domain models in presentation objects.
//
// A Definition describes a presenter type: the model type it decorates, the
// access policy deciding which members are forwarded to the model, the
// presentation methods it adds, the associations it decorates and its JSON
// defaults. Definitions register themselves in a Registry under a version
// tag; Registry.Decorate resolves the most specific definition for a model by
// walking the model type's ancestors and builds a Decorator.
//
// Decorator.Call dispatches in two phases. Methods defined on the presenter
// (and the fixed builtins such as Model, Context and AsJSON) are answered
// locally. Anything else is checked against the access policy and forwarded
// to the model through a reflection binding memoised per definition.
//
// Collections decorate lazily: every iteration re-decorates each element and
// nothing is cached on the collection itself.
package decorator
