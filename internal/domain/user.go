package domain

import "time"

// User is the built-in authenticatable principal. Other principal
// types can participate in checkout as long as they satisfy the
// customer resolver's Principal interface.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PrincipalType tags User records in the polymorphic customer binding.
func (u *User) PrincipalType() string { return "user" }

// PrincipalID returns the stable id of the principal.
func (u *User) PrincipalID() string { return u.ID }

// PrincipalEmail seeds the customer record created on first contact.
func (u *User) PrincipalEmail() string { return u.Email }
