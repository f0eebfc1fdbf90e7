package model

import "github.com/google/uuid"

// TokenManager signs and validates bearer session tokens.
type TokenManager interface {
	Generate(userID uuid.UUID, role Role) (string, error)
	Parse(token string) (uuid.UUID, Role, error)
}
