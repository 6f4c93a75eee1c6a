package domain

import "time"

// User is a registered account that may authenticate against the API.
// Accounts are created at registration and never modified afterwards.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
