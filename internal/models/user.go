// Package models defines the records persisted by the catalog.
package models

import "time"

// User is a registered account. Email is the identity key; ID is a
// generated secondary key used to scope file ownership. User records are
// created on registration and never mutated afterwards.
type User struct {
	Email     string    `json:"email"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
