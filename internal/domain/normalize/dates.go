package normalize

import (
	"strings"
	"time"
)

// OrderDates carries the three representations of an order timestamp the
// staging schema stores: the business-local date for the ledger's date
// field, the original UTC timestamp for audit, and the full local datetime.
type OrderDates struct {
	LocalDate     string // YYYY-MM-DD in the business timezone
	UTCDateTime   string // YYYY-MM-DDTHH:MM:SS as received
	LocalDateTime string // YYYY-MM-DD HH:MM:SS in the business timezone
}

// Dates converts a storefront UTC timestamp (RFC 3339, with or without a
// trailing Z) into the business timezone. Unparseable input falls back to
// raw prefixes so a bad date never blocks staging.
func Dates(raw string, loc *time.Location) OrderDates {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSuffix(strings.TrimSpace(raw), "Z")

	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		t, err = time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	}
	if err != nil {
		d := OrderDates{}
		if len(s) >= 10 {
			d.LocalDate = s[:10]
		}
		if len(s) >= 19 {
			d.UTCDateTime = s[:19]
			d.LocalDateTime = s[:10] + " " + s[11:19]
		} else {
			d.UTCDateTime = s
			d.LocalDateTime = d.LocalDate
		}
		return d
	}

	local := t.In(loc)
	return OrderDates{
		LocalDate:     local.Format("2006-01-02"),
		UTCDateTime:   t.Format("2006-01-02T15:04:05"),
		LocalDateTime: local.Format("2006-01-02 15:04:05"),
	}
}
