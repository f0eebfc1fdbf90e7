package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role enumerates the closed set of account roles.
type Role string

const (
	// RoleUser is a regular marketplace account.
	RoleUser Role = "user"
	// RoleAdmin is a full administrator account.
	RoleAdmin Role = "admin"
	// RoleSubadmin is a limited moderator account.
	RoleSubadmin Role = "subadmin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSubadmin:
		return true
	}
	return false
}

// CanModerate reports whether the role may transition product status.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleSubadmin
}

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByEmailAndRole(ctx context.Context, email string, role Role) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored account. PasswordHash never leaves the
// service layer and is excluded from JSON serialization.
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Caller is the identity resolved from a verified bearer token,
// attached to the request context by the authentication middleware.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

// PasswordHasher hashes plaintext secrets and compares them one-way.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
