// Package normalize contains the pure field normalizers that reshape
// storefront order fields into ledger-compatible values. Every function is
// total: malformed input degrades to a best-effort result, never an error.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Destination field widths in the ledger schema.
const (
	MaxNameLen       = 40
	MaxAddressLen    = 40
	MaxCityLen       = 20
	MaxStateLen      = 10
	MaxPostalCodeLen = 15
	MaxCountryLen    = 20
	MaxPhoneLen      = 25
	MaxEmailLen      = 50
	MaxFirstNameLen  = 15
	MaxLastNameLen   = 25
	MaxErrorLen      = 500
)

// typographic maps common Unicode punctuation and symbols to ASCII
// equivalents the ledger's collation can store.
var typographic = map[rune]string{
	' ': " ",   // non-breaking space
	'–': "-",   // en dash
	'—': "-",   // em dash
	'‘': "'",   // left single quote
	'’': "'",   // right single quote
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'…': "...", // ellipsis
	'©': "(c)",
	'®': "(R)",
	'™': "(TM)",
	'°': " deg",
	'µ': "u",
	'×': "x",
	'÷': "/",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
}

// asciiFold strips combining marks after canonical decomposition, so that
// accented letters outside the ledger's charset fold to their base letter
// instead of disappearing.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize cleans a storefront string for a ledger field of the given
// width: typographic Unicode is mapped to ASCII, control characters are
// dropped, whitespace is collapsed, and the result is truncated to limit.
// A limit of 0 means unbounded.
func Sanitize(s string, limit int) string {
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if rep, ok := typographic[r]; ok {
			b.WriteString(rep)
			continue
		}
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			// drop control characters
		case r < 0x80:
			b.WriteRune(r)
		case r >= 0xa1 && r <= 0xff:
			// printable latin-1 survives the ledger's collation
			b.WriteRune(r)
		default:
			// anything else is unrepresentable downstream
		}
	}

	out := strings.Join(strings.Fields(b.String()), " ")
	if limit > 0 && len(out) > limit {
		out = strings.TrimRight(out[:limit], " ")
	}
	return out
}

// SKU uppercases and trims an item code for case-insensitive matching
// against ledger item codes.
func SKU(s string) string {
	return strings.ToUpper(Sanitize(s, 0))
}

// Truncate bounds s to limit bytes, trimming a trailing partial word's
// whitespace. Used for diagnostic fields.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return strings.TrimRight(s[:limit], " ")
}
