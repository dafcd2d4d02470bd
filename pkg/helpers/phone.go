package helpers

import (
	"errors"
	"strings"
)

// ErrInvalidPhoneNumber is returned for numbers that cannot be normalized
// to the Indonesian 62 country-code form.
var ErrInvalidPhoneNumber = errors.New("phone number must start with 0 or 62")

// FormatPhoneNumber canonicalizes a raw phone number to its 62-prefixed
// digit-only form. All non-digit characters are stripped first; a leading
// "0" is replaced by "62", anything else must already carry the "62"
// prefix. The normalized form is the key for both OTP and user records.
func FormatPhoneNumber(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "0"):
		return "62" + digits[1:], nil
	case strings.HasPrefix(digits, "62"):
		return digits, nil
	default:
		return "", ErrInvalidPhoneNumber
	}
}
