// Package manifest loads presenter definitions from JSON or YAML documents.
//
// A manifest names decorators, the model type each one decorates, its access
// lists, decorated associations, template-backed presentation methods and the
// JSON options its MarshalJSON composes with:
//
//	decorators:
//	  ProductDecorator:
//	    model: Product
//	    deny: ["Reserve*"]
//	    associations: [store]
//	    methods:
//	      price_label: "{{ price|currency }}"
//	    json:
//	      only: [id, name]
//	      decoratedMethods: [price_label]
//
// Access list entries holding glob metacharacters are expanded against the
// exported members of the model's Go type.
package manifest
