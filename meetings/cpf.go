package meetings

import "strings"

// FormatCPF applies the progressive ###.###.###-## mask to whatever the
// attendee typed, mirroring the attendance form's input masking. Non-digits
// are stripped first and anything past eleven digits is dropped. No
// checksum validation happens here; the CPF is free text with a shape.
func FormatCPF(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
		if digits.Len() == 11 {
			break
		}
	}

	d := digits.String()
	var out strings.Builder
	for i, r := range d {
		switch i {
		case 3, 6:
			out.WriteByte('.')
		case 9:
			out.WriteByte('-')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// ValidCPFShape reports whether s is a fully-masked CPF, e.g.
// "123.456.789-00".
func ValidCPFShape(s string) bool {
	if len(s) != 14 {
		return false
	}
	for i, r := range s {
		switch i {
		case 3, 7:
			if r != '.' {
				return false
			}
		case 11:
			if r != '-' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
