package openapi

import (
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	gojson "github.com/goccy/go-json"
)

// NewDocument wraps component schemas in an OpenAPI 3 document without
// paths.
func NewDocument(title, version string, schemas map[string]*openapi3.Schema) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: title, Version: version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(schemas)),
		},
	}
	for name, schema := range schemas {
		if schema == nil {
			continue
		}
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", schema)
	}
	return doc
}

// SchemaNames lists the component schema names of doc, sorted.
func SchemaNames(doc *openapi3.T) []string {
	if doc == nil || doc.Components == nil {
		return nil
	}
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalDocument encodes doc as indented JSON.
func MarshalDocument(doc *openapi3.T) ([]byte, error) {
	return gojson.MarshalIndent(doc, "", "  ")
}
