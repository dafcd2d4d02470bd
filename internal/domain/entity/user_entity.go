package entity

import (
	"time"
)

// Account verification status. Accounts start pending and become active
// when the phone number is verified; login does not gate on this.
const (
	StatusPendingVerification = "pending_verification"
	StatusActive              = "active"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID           string
	Email        string
	PhoneNumber  string // normalized, 62-prefixed
	PasswordHash string
	Name         string
	PictureURL   string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
