package models

import "time"

// Role names accepted by the API.
const (
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleViewer     = "viewer"
	RoleSuperAdmin = "super_admin"
)

// RoleNames is the closed set of role names.
var RoleNames = []string{RoleAdmin, RoleEditor, RoleViewer, RoleSuperAdmin}

// Role is a named bundle of permission strings.
type Role struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleSummary is the role projection embedded in user documents.
type RoleSummary struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"-"`
}

// RolePatch lists the role fields an update may change.
type RolePatch struct {
	Name        *string
	Description *string
	Permissions []string
	IsActive    *bool
}

// GrantsAdmin reports whether holding a role named name makes a user admin.
func GrantsAdmin(name string) bool {
	return name == RoleAdmin
}
