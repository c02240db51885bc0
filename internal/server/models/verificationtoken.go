package models

import "time"

// VerificationToken is a single-use token mailed to a user to confirm their
// email address.
type VerificationToken struct {
	Token     string
	UserID    string
	Expires   time.Time
	CreatedAt time.Time
}
