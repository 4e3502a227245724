package domain

import (
	"errors"
	"time"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RolePremium Role = "premium"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RolePremium:
		return true
	}
	return false
}

var ErrInvalidUser = errors.New("invalid user record")

// User is serialized with the same keys the dashboard has always stored locally.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks the fields a restored record must carry.
func (u *User) Validate() error {
	if u.ID == "" || u.Email == "" {
		return ErrInvalidUser
	}
	if !u.Role.Valid() {
		return ErrInvalidUser
	}
	return nil
}
