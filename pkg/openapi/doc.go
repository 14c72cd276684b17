// Package openapi exports OpenAPI 3 schemas for presenter output. Schemas are
// inferred from composed JSON, so they describe exactly what a presenter
// renders for a given set of options, decorated methods included.
package openapi
