package helpers

import (
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
)

// ErrNoTheme is returned by token lookups when no theme selector is set.
var ErrNoTheme = errors.New("helpers: no theme configured")

// Tokens resolves the design tokens of the configured theme. Variant tokens
// override the base manifest.
func (h *Helpers) Tokens() (map[string]string, error) {
	if h.selector == nil {
		return nil, ErrNoTheme
	}
	selection, err := h.selector.Select(h.themeName, h.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("helpers: select theme %q: %w", h.themeName, err)
	}
	if selection == nil || selection.Manifest == nil {
		return map[string]string{}, nil
	}
	return mergeTokens(selection), nil
}

// Token returns one design token, or "" when the theme does not define it.
func (h *Helpers) Token(name string) (string, error) {
	tokens, err := h.Tokens()
	if err != nil {
		return "", err
	}
	return tokens[name], nil
}

func mergeTokens(selection *theme.Selection) map[string]string {
	manifest := selection.Manifest
	out := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		out[key] = value
	}
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			out[key] = value
		}
	}
	return out
}
