package models

import "time"

// VerificationRecord is a pending one-time code for a phone number.
// CodeHash is the keyed digest of the code, never the code itself.
type VerificationRecord struct {
	ID          int64
	PhoneNumber string
	CodeHash    string
	CreatedAt   time.Time
}
