package models

import "time"

// User owns folders and files. The password hash belongs to the auth layer
// and is never returned by the storage services.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID string
}
