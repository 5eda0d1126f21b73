package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// AdminCreateUserRequest adds a user with an explicit role.
type AdminCreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   int    `json:"role_id"`
}

// UserPatchRequest is the self-service profile update payload.
// Absent fields are left unchanged.
type UserPatchRequest struct {
	NewUsername *string `json:"new_username"`
	NewEmail    *string `json:"new_email"`
	NewPassword *string `json:"new_password"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse maps the domain model.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
