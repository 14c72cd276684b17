package helpers_test

import (
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-presenter/pkg/helpers"
)

func TestCurrency(t *testing.T) {
	h := helpers.New()
	cases := []struct {
		in   any
		want string
	}{
		{in: 1234.5, want: "$1,234.50"},
		{in: 0, want: "$0.00"},
		{in: -19.999, want: "-$20.00"},
		{in: "1000000", want: "$1,000,000.00"},
		{in: struct{}{}, want: ""},
	}
	for _, tc := range cases {
		if got := h.Currency(tc.in); got != tc.want {
			t.Fatalf("Currency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}

	euro := helpers.New(helpers.WithCurrency("€", 1), helpers.WithDelimiters(".", ","))
	if got := euro.Currency(1234.56); got != "€1.234,6" {
		t.Fatalf("unexpected euro formatting %q", got)
	}
}

func TestNumberWithDelimiter(t *testing.T) {
	h := helpers.New()
	if got := h.NumberWithDelimiter(1234567); got != "1,234,567" {
		t.Fatalf("unexpected delimited number %q", got)
	}
	if got := h.NumberWithDelimiter(1234.25); got != "1,234.25" {
		t.Fatalf("unexpected delimited float %q", got)
	}
	swiss := helpers.New(helpers.WithDelimiters("'", "."))
	if got := swiss.NumberWithDelimiter(-9876543.5); got != "-9'876'543.5" {
		t.Fatalf("unexpected custom delimiters %q", got)
	}
}

func TestTruncateAndPluralize(t *testing.T) {
	h := helpers.New()
	if got := h.Truncate("Once upon a time in a world far far away", 17); got != "Once upon a ti..." {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := h.Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := h.Pluralize(1, "review", ""); got != "1 review" {
		t.Fatalf("unexpected singular %q", got)
	}
	if got := h.Pluralize(3, "person", "people"); got != "3 people" {
		t.Fatalf("unexpected plural %q", got)
	}
	if got := h.Pluralize(2, "box", ""); got != "2 boxes" {
		t.Fatalf("unexpected derived plural %q", got)
	}
}

func TestSanitize(t *testing.T) {
	h := helpers.New()
	got := h.Sanitize(`<p onclick="steal()">Hello <script>alert(1)</script><b>world</b></p>`)
	if got != "<p>Hello <b>world</b></p>" {
		t.Fatalf("unexpected sanitized markup %q", got)
	}
	if got := h.StripTags("<em>plain</em> text"); got != "plain text" {
		t.Fatalf("unexpected stripped text %q", got)
	}
}

func TestRender(t *testing.T) {
	h := helpers.New(helpers.WithGlobals(map[string]any{"site": "Shop"}))

	got, err := h.Render("{{ site }}: {{ name|upper }} for {{ price|currency }}", map[string]any{
		"name":  "lamp",
		"price": 12.5,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Shop: LAMP for $12.50" {
		t.Fatalf("unexpected output %q", got)
	}

	if _, err := h.Render("", nil); err == nil {
		t.Fatalf("expected error for empty template")
	}
	if _, err := h.Render("{{ broken", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

type stubSelector struct {
	selection *theme.Selection
	err       error
}

func (s stubSelector) Select(_, _ string, _ ...theme.QueryOption) (*theme.Selection, error) {
	return s.selection, s.err
}

func TestTokens(t *testing.T) {
	manifest := &theme.Manifest{
		Name:   "acme",
		Tokens: map[string]string{"brand": "#123456", "accent": "#ffffff"},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	}
	h := helpers.New(helpers.WithTheme(stubSelector{selection: &theme.Selection{
		Theme:    "acme",
		Variant:  "dark",
		Manifest: manifest,
	}}, "acme", "dark"))

	tokens, err := h.Tokens()
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	want := map[string]string{"brand": "#654321", "accent": "#ffffff"}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}

	if _, err := helpers.New().Token("brand"); !errors.Is(err, helpers.ErrNoTheme) {
		t.Fatalf("expected ErrNoTheme, got %v", err)
	}
}

func TestCurrent(t *testing.T) {
	custom := helpers.New(helpers.WithCurrency("£", 2))
	previous := helpers.SetCurrent(custom)
	t.Cleanup(func() { helpers.SetCurrent(previous) })

	if helpers.Current() != custom {
		t.Fatalf("expected custom helpers to be current")
	}
}
