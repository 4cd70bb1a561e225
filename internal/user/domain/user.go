package domain

import (
	"errors"
	"time"
)

// User is the core user entity. PasswordHash is write-only from the outside:
// the auth service is the only writer and it must never be serialized out.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// ParseRole maps a free-form role string to a known Role.
// Unknown values (including empty) become RoleMember.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Name == "" {
		return errors.New("name is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !u.Role.Valid() {
		return errors.New("role must be Admin or Member")
	}
	return nil
}
