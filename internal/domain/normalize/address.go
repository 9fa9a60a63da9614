package normalize

import (
	"regexp"
	"strings"
)

// streetAbbrev shortens the usual street designators before a long line is
// split, matching how the ledger's own address entry screens abbreviate.
// Unit designators (SUITE, APT) are deliberately absent: abbreviating them
// makes the secondary line ambiguous.
var streetAbbrev = map[string]string{
	"AVENUE":     "AVE",
	"BOULEVARD":  "BLVD",
	"CIRCLE":     "CIR",
	"COURT":      "CT",
	"DRIVE":      "DR",
	"EXPRESSWAY": "EXPY",
	"HIGHWAY":    "HWY",
	"LANE":       "LN",
	"PARKWAY":    "PKWY",
	"PLACE":      "PL",
	"ROAD":       "RD",
	"SQUARE":     "SQ",
	"STREET":     "ST",
	"TERRACE":    "TER",
	"TRAIL":      "TRL",
	"NORTH":      "N",
	"SOUTH":      "S",
	"EAST":       "E",
	"WEST":       "W",
	"NORTHEAST":  "NE",
	"NORTHWEST":  "NW",
	"SOUTHEAST":  "SE",
	"SOUTHWEST":  "SW",
}

var unitPattern = regexp.MustCompile(`(?i)\b(SUITE|STE|UNIT|APT|APARTMENT|BLDG|BUILDING|FLOOR|FL|RM|ROOM|#)\.?\s*`)

// AddressLine sanitizes and uppercases one address line without splitting.
func AddressLine(s string) string {
	s = strings.ToUpper(Sanitize(s, 0))
	words := strings.Fields(s)
	for i, w := range words {
		trimmed := strings.TrimRight(w, ".,")
		if abbr, ok := streetAbbrev[trimmed]; ok {
			words[i] = abbr + w[len(trimmed):]
		}
	}
	return strings.Join(words, " ")
}

// SplitAddress fits a single long address line into two lines of at most
// limit characters. The split point is chosen to keep information intact:
// a unit designator starts line 2 when present, otherwise the last comma,
// otherwise the last space, and only as a last resort a hard truncate.
func SplitAddress(line string, limit int) (string, string) {
	line = AddressLine(line)
	if len(line) <= limit {
		return line, ""
	}

	if loc := unitPattern.FindStringIndex(line); loc != nil && loc[0] > 0 && loc[0] <= limit {
		l1 := strings.TrimRight(strings.TrimSuffix(strings.TrimSpace(line[:loc[0]]), ","), " ")
		l2 := strings.TrimSpace(line[loc[0]:])
		return Truncate(l1, limit), Truncate(l2, limit)
	}

	head := line[:limit+1]
	if i := strings.LastIndex(head, ","); i > 10 {
		return strings.TrimSpace(line[:i]), Truncate(strings.TrimSpace(line[i+1:]), limit)
	}
	if i := strings.LastIndex(head, " "); i > 10 {
		return strings.TrimSpace(line[:i]), Truncate(strings.TrimSpace(line[i+1:]), limit)
	}
	return Truncate(line, limit), ""
}

// stateNames maps full US state and territory names to their two-letter
// postal codes.
var stateNames = map[string]string{
	"ALABAMA": "AL", "ALASKA": "AK", "ARIZONA": "AZ", "ARKANSAS": "AR",
	"CALIFORNIA": "CA", "COLORADO": "CO", "CONNECTICUT": "CT",
	"DELAWARE": "DE", "FLORIDA": "FL", "GEORGIA": "GA", "HAWAII": "HI",
	"IDAHO": "ID", "ILLINOIS": "IL", "INDIANA": "IN", "IOWA": "IA",
	"KANSAS": "KS", "KENTUCKY": "KY", "LOUISIANA": "LA", "MAINE": "ME",
	"MARYLAND": "MD", "MASSACHUSETTS": "MA", "MICHIGAN": "MI",
	"MINNESOTA": "MN", "MISSISSIPPI": "MS", "MISSOURI": "MO",
	"MONTANA": "MT", "NEBRASKA": "NE", "NEVADA": "NV",
	"NEW HAMPSHIRE": "NH", "NEW JERSEY": "NJ", "NEW MEXICO": "NM",
	"NEW YORK": "NY", "NORTH CAROLINA": "NC", "NORTH DAKOTA": "ND",
	"OHIO": "OH", "OKLAHOMA": "OK", "OREGON": "OR", "PENNSYLVANIA": "PA",
	"RHODE ISLAND": "RI", "SOUTH CAROLINA": "SC", "SOUTH DAKOTA": "SD",
	"TENNESSEE": "TN", "TEXAS": "TX", "UTAH": "UT", "VERMONT": "VT",
	"VIRGINIA": "VA", "WASHINGTON": "WA", "WEST VIRGINIA": "WV",
	"WISCONSIN": "WI", "WYOMING": "WY",
	"DISTRICT OF COLUMBIA": "DC", "PUERTO RICO": "PR", "GUAM": "GU",
}

// State converts a full state name to its two-letter code; anything
// unrecognized is uppercased and width-bounded as given.
func State(s string) string {
	up := strings.ToUpper(Sanitize(s, 0))
	if code, ok := stateNames[up]; ok {
		return code
	}
	return Truncate(up, MaxStateLen)
}
