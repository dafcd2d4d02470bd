package entity

import (
	"time"
)

// OTP is the single pending verification code for a phone number.
// The phone number is the primary key: reissuing overwrites the row,
// successful verification deletes it. Expired rows are only detected
// lazily at verification time.
type OTP struct {
	PhoneNumber string // normalized, 62-prefixed
	Email       string
	Code        string // 6 digits
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
