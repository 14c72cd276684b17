package helpers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize/english"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency formats amount with the configured symbol, precision and
// delimiters: 1234.5 -> "$1,234.50". Non-numeric input yields "".
func (h *Helpers) Currency(amount any) string {
	value, ok := toFloat(amount)
	if !ok {
		return ""
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = math.Abs(value)
	}
	return sign + h.currencySymbol + h.formatNumber(value, h.precision)
}

// NumberWithDelimiter groups the integer part of n in thousands and keeps
// every fraction digit.
func (h *Helpers) NumberWithDelimiter(n any) string {
	value, ok := toFloat(n)
	if !ok {
		return ""
	}
	sign := ""
	if value < 0 {
		sign = "-"
		value = math.Abs(value)
	}
	return sign + h.formatNumber(value, fractionDigits(value))
}

// Truncate shortens s to at most length runes, omission included.
func (h *Helpers) Truncate(s string, length int) string {
	if length <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= length {
		return s
	}
	omission := []rune(h.omission)
	keep := length - len(omission)
	if keep <= 0 {
		return string(omission[:length])
	}
	return string([]rune(s)[:keep]) + h.omission
}

// Pluralize renders "1 item" or "3 items". An empty plural is derived with
// English rules ("box" -> "boxes").
func (h *Helpers) Pluralize(count int, singular, plural string) string {
	return english.Plural(count, singular, plural)
}

// formatNumber prints value with en-US grouping, then swaps in the configured
// delimiter and separator.
func (h *Helpers) formatNumber(value float64, precision int) string {
	formatted := enPrinter.Sprint(number.Decimal(value, number.Scale(precision)))
	return strings.NewReplacer(",", h.delimiter, ".", h.separator).Replace(formatted)
}

var enPrinter = message.NewPrinter(language.AmericanEnglish)

func fractionDigits(value float64) int {
	_, fraction, ok := strings.Cut(strconv.FormatFloat(value, 'f', -1, 64), ".")
	if !ok {
		return 0
	}
	return len(fraction)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
