package catalog

import "strings"

// NormalizeISBN strips separators and validates the checksum. It accepts
// ISBN-10 (with a possible trailing X) and ISBN-13, returning the compact
// form and whether the input was a valid ISBN at all.
func NormalizeISBN(raw string) (string, bool) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(raw))

	switch len(compact) {
	case 10:
		if validISBN10(compact) {
			return strings.ToUpper(compact), true
		}
	case 13:
		if validISBN13(compact) {
			return compact, true
		}
	}
	return "", false
}

func validISBN10(s string) bool {
	sum := 0
	for i, r := range s {
		var value int
		switch {
		case r >= '0' && r <= '9':
			value = int(r - '0')
		case (r == 'X' || r == 'x') && i == 9:
			value = 10
		default:
			return false
		}
		sum += (10 - i) * value
	}
	return sum%11 == 0
}

func validISBN13(s string) bool {
	sum := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		value := int(r - '0')
		if i%2 == 1 {
			value *= 3
		}
		sum += value
	}
	return sum%10 == 0
}
