// Package naming maps the member names callers use (snake_case JSON keys,
// lowerCamel identifiers, exported Go names) onto one canonical exported form
// so that policies, method tables and reflection lookups agree on identity.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var initialisms = map[string]string{
	"api":  "API",
	"css":  "CSS",
	"html": "HTML",
	"http": "HTTP",
	"id":   "ID",
	"ip":   "IP",
	"json": "JSON",
	"sql":  "SQL",
	"uri":  "URI",
	"url":  "URL",
	"uuid": "UUID",
	"xml":  "XML",
	"yaml": "YAML",
}

// Export returns the canonical exported Go spelling of name. Segments split on
// underscores, dashes, dots and spaces are title-cased and common initialisms
// are upper-cased: "similar_products" -> "SimilarProducts", "id" -> "ID".
// Names that are already exported are returned unchanged.
func Export(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	parts := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, part := range parts {
		if upper, ok := initialisms[strings.ToLower(part)]; ok {
			b.WriteString(upper)
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

// ExportAll canonicalises every entry, dropping blanks.
func ExportAll(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if canonical := Export(name); canonical != "" {
			out = append(out, canonical)
		}
	}
	return out
}
