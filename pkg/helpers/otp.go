package helpers

import (
	"crypto/rand"
	"fmt"
)

// OTPCodeLength is the number of digits in a generated OTP code.
const OTPCodeLength = 6

// GenOTPCode generates a random 6-digit OTP code as a zero-padded string.
// crypto/rand keeps codes unguessable within the expiry window.
func GenOTPCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("%06d", n%1000000), nil
}
