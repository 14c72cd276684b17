package helpers

import (
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
)

// Helpers is the helper context handed to presenters. It is safe for
// concurrent use once constructed.
type Helpers struct {
	currencySymbol string
	precision      int
	delimiter      string
	separator      string
	omission       string

	sanitizer *bluemonday.Policy

	templateSet *pongo2.TemplateSet
	globals     map[string]any
	mu          sync.RWMutex
	compiled    map[string]*pongo2.Template

	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

// Option configures Helpers.
type Option func(*Helpers)

// WithCurrency sets the currency symbol and the number of decimals.
func WithCurrency(symbol string, precision int) Option {
	return func(h *Helpers) {
		h.currencySymbol = symbol
		if precision >= 0 {
			h.precision = precision
		}
	}
}

// WithDelimiters sets the thousands delimiter and the decimal separator.
func WithDelimiters(delimiter, separator string) Option {
	return func(h *Helpers) {
		h.delimiter = delimiter
		if separator != "" {
			h.separator = separator
		}
	}
}

// WithOmission sets the suffix Truncate appends.
func WithOmission(omission string) Option {
	return func(h *Helpers) {
		h.omission = omission
	}
}

// WithSanitizer replaces the policy used by Sanitize.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(h *Helpers) {
		if policy != nil {
			h.sanitizer = policy
		}
	}
}

// WithTemplateFS loads named templates from files for Render.
func WithTemplateFS(files fs.FS) Option {
	return func(h *Helpers) {
		if files != nil {
			h.templateSet = pongo2.NewSet("presenter", pongo2.NewFSLoader(files))
		}
	}
}

// WithGlobals seeds values visible to every rendered template.
func WithGlobals(values map[string]any) Option {
	return func(h *Helpers) {
		if h.globals == nil {
			h.globals = make(map[string]any, len(values))
		}
		for key, value := range values {
			h.globals[key] = value
		}
	}
}

// WithTheme resolves design tokens through selector for the named theme
// and variant.
func WithTheme(selector theme.ThemeSelector, name, variant string) Option {
	return func(h *Helpers) {
		h.selector = selector
		h.themeName = name
		h.themeVariant = variant
	}
}

// New builds a helper context.
func New(opts ...Option) *Helpers {
	h := &Helpers{
		currencySymbol: "$",
		precision:      2,
		delimiter:      ",",
		separator:      ".",
		omission:       "...",
		compiled:       make(map[string]*pongo2.Template),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.sanitizer == nil {
		h.sanitizer = ugcPolicy()
	}
	if h.templateSet == nil {
		h.templateSet = pongo2.DefaultSet
	}
	registerFilters()
	return h
}

var current atomic.Pointer[Helpers]

// Current returns the process-wide helper context, creating a default one on
// first use.
func Current() *Helpers {
	if h := current.Load(); h != nil {
		return h
	}
	current.CompareAndSwap(nil, New())
	return current.Load()
}

// SetCurrent replaces the process-wide helper context and returns the
// previous one. Passing nil restores the default on next use.
func SetCurrent(h *Helpers) *Helpers {
	return current.Swap(h)
}
