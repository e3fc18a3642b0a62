// Package models defines the records persisted by the server.
package models

import "time"

// User is an account. Email is unique and compared case-sensitively; the row
// is never changed after creation.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
