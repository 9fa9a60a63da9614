package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountStrip = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "", " ", "", " ", "",
)

// Amount parses a currency-formatted string (symbols, thousands
// separators, accounting-style negatives) into a two-decimal fixed-point
// value. Unparseable input degrades to zero.
func Amount(raw string) decimal.Decimal {
	s := amountStrip.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}
