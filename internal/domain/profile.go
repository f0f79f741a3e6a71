package domain

import "time"

// Profile is a phone-login account.
type Profile struct {
	ID          string
	PhoneNumber string
	Email       string
	CreatedAt   time.Time
}

// OTP is a pending one-time login code. Only the bcrypt hash of the code is kept.
type OTP struct {
	PhoneNumber string
	CodeHash    string
	ExpiresAt   time.Time
}

func (o OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
