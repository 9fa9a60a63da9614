package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var extensionPattern = regexp.MustCompile(`(?i)(?:ext\.?|extension|x)\s*(\d+)`)

// Phone normalizes a phone number into the ledger's canonical display
// format "(xxx) xxx-xxxx", preserving an extension when one is present.
// Numbers that do not look like ten-digit NANP numbers pass through
// sanitized but otherwise untouched.
func Phone(raw string) string {
	s := Sanitize(raw, 0)
	if s == "" {
		return ""
	}

	ext := ""
	if m := extensionPattern.FindStringSubmatch(s); m != nil {
		ext = m[1]
		s = strings.TrimSpace(extensionPattern.ReplaceAllString(s, ""))
	}

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) == 11 && d[0] == '1' {
		d = d[1:]
	}

	out := s
	if len(d) == 10 {
		out = fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
	}
	if ext != "" {
		out += " ext " + ext
	}
	return Truncate(out, MaxPhoneLen)
}
