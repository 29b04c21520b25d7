package domain

import "strings"

// NormalizePhone strips every non-digit character and caps the result at
// 11 digits (DDD plus a nine-digit mobile number).
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
		if b.Len() == 11 {
			break
		}
	}
	return b.String()
}

// FormatPhone renders a phone number as "(DD) DDDDD-DDDD", producing the
// partial prefixes "(DD" and "(DD) DDDDD" while fewer digits are present.
func FormatPhone(raw string) string {
	digits := NormalizePhone(raw)

	ddd := digits[:min(2, len(digits))]
	var part1, part2 string
	if len(digits) > 2 {
		part1 = digits[2:min(7, len(digits))]
	}
	if len(digits) > 7 {
		part2 = digits[7:]
	}

	switch {
	case len(digits) > 7:
		return "(" + ddd + ") " + part1 + "-" + part2
	case len(digits) > 2:
		return "(" + ddd + ") " + part1
	case len(digits) > 0:
		return "(" + ddd
	default:
		return ""
	}
}

// NormalizeInstagram removes whitespace and forces the handle to start
// with exactly one "@". An empty handle stays empty.
func NormalizeInstagram(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), "")
	cleaned = strings.TrimLeft(cleaned, "@")
	if cleaned == "" {
		return ""
	}
	return "@" + cleaned
}
