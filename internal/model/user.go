package model

import "time"

// Profile is the global role tag of a user account.
type Profile string

const (
	ProfileAdmin Profile = "ADMIN"
	ProfileUser  Profile = "USUARIO"
)

// User is a registered identity. Username is unique across the system.
// PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"created_at"`
}
