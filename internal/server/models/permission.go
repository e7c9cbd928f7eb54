package models

import "regexp"

var permissionPattern = regexp.MustCompile(`^(users|posts|roles)\.(view|create|update|delete)$`)

// Permission describes one resource.action pair.
type Permission struct {
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Permissions is the full catalogue of grantable permissions.
var Permissions = []Permission{
	{Name: "users.view", Resource: "users", Action: "view", Description: "View users"},
	{Name: "users.create", Resource: "users", Action: "create", Description: "Create users"},
	{Name: "users.update", Resource: "users", Action: "update", Description: "Update users"},
	{Name: "users.delete", Resource: "users", Action: "delete", Description: "Delete users"},
	{Name: "posts.view", Resource: "posts", Action: "view", Description: "View posts"},
	{Name: "posts.create", Resource: "posts", Action: "create", Description: "Create posts"},
	{Name: "posts.update", Resource: "posts", Action: "update", Description: "Update posts"},
	{Name: "posts.delete", Resource: "posts", Action: "delete", Description: "Delete posts"},
	{Name: "roles.view", Resource: "roles", Action: "view", Description: "View roles"},
	{Name: "roles.create", Resource: "roles", Action: "create", Description: "Create roles"},
	{Name: "roles.update", Resource: "roles", Action: "update", Description: "Update roles"},
	{Name: "roles.delete", Resource: "roles", Action: "delete", Description: "Delete roles"},
}

// IsValidPermission reports whether p has the resource.action form.
func IsValidPermission(p string) bool {
	return permissionPattern.MatchString(p)
}

// AllPermissionNames returns the names of every catalogued permission.
func AllPermissionNames() []string {
	names := make([]string, 0, len(Permissions))
	for _, p := range Permissions {
		names = append(names, p.Name)
	}
	return names
}
