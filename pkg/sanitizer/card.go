package sanitizer

import (
	"strings"
	"unicode"
)

// DigitsOnly drops every rune that is not an ASCII digit.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCardNumber accepts the usual "4111 1111-1111 1111" spellings.
// Any character other than digits, spaces and hyphens makes the number
// invalid and yields "".
func NormalizeCardNumber(number string) string {
	for _, r := range number {
		if !(r >= '0' && r <= '9') && !unicode.IsSpace(r) && r != '-' {
			return ""
		}
	}
	return DigitsOnly(number)
}

func MaskCardNumber(number string) string {
	digits := DigitsOnly(number)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func NormalizeExpiry(expiry string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, expiry)
}
