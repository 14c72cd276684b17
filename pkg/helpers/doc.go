// Package helpers provides the view-helper context presenters reach through
// Decorator.Helpers: number and currency formatting, HTML sanitising backed by
// bluemonday, pongo2 template snippets and theme design tokens.
//
// A process-wide context is available through Current and replaced with
// SetCurrent. Presenters built with an explicit helper context ignore it.
package helpers
