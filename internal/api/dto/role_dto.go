package dto

import "github.com/asta-dev/fintech-sandbox/internal/domain"

// RoleRequest creates a role tier.
type RoleRequest struct {
	Level    int    `json:"level"`
	Position string `json:"position"`
}

// RoleUpdateRequest patches a role tier. Absent fields stay unchanged.
type RoleUpdateRequest struct {
	ID       int     `json:"id"`
	Level    *int    `json:"level"`
	Position *string `json:"position"`
}

// RoleDeleteRequest names a role tier for deletion.
type RoleDeleteRequest struct {
	ID int `json:"id"`
}

// RoleResponse is the public projection of a role tier.
type RoleResponse struct {
	ID       int    `json:"id"`
	Level    int    `json:"level"`
	Position string `json:"position"`
}

// NewRoleResponse maps the domain record.
func NewRoleResponse(role domain.RoleRecord) RoleResponse {
	return RoleResponse{ID: role.ID, Level: role.Level, Position: string(role.Position)}
}
