// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered identity. Only active users may log in.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`

	// ResetToken and ResetExpiresAt are either both set or both nil.
	ResetToken     *string    `db:"reset_token"`
	ResetExpiresAt *time.Time `db:"reset_expires_at"`
}

// PublicProfile is the projection of a User returned to clients.
type PublicProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
