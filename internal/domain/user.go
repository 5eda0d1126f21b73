package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain model for registered principals.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	RoleID       int
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch carries a self-service profile update. Nil means unchanged.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
}
