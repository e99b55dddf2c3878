package domain

import "time"

// User is an account that owns events and registers for them.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
