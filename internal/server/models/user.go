// Package models defines the records persisted in PostgreSQL and returned
// by the API.
package models

import "time"

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID                     string         `json:"_id"`
	FirstName              string         `json:"first_name"`
	LastName               string         `json:"last_name"`
	Email                  string         `json:"email"`
	PasswordHash           string         `json:"-"`
	About                  string         `json:"about"`
	Address                map[string]any `json:"address"`
	Gender                 string         `json:"gender"`
	DateOfBirth            *time.Time     `json:"date_of_birth"`
	EducationQualification string         `json:"education_qualification"`
	ProfilePhoto           string         `json:"profile_photo"`
	ProfilePhotoURL        string         `json:"profile_photo_url,omitempty"`
	IsAdmin                bool           `json:"is_admin"`
	IsActive               bool           `json:"is_active"`
	RoleID                 *string        `json:"-"`
	Role                   *RoleSummary   `json:"role"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
}

// UserPatch lists the profile fields an update may change. Nil means
// "leave as is".
type UserPatch struct {
	FirstName              *string
	LastName               *string
	About                  *string
	Address                map[string]any
	Gender                 *string
	DateOfBirth            *time.Time
	EducationQualification *string
	ProfilePhoto           *string
}

// Empty reports whether the patch changes nothing.
func (p *UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.About == nil && p.Address == nil &&
		p.Gender == nil && p.DateOfBirth == nil && p.EducationQualification == nil && p.ProfilePhoto == nil
}

// UserRoleView is the reduced projection returned by role assignment.
type UserRoleView struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Role      *string `json:"role"`
	IsAdmin   bool    `json:"is_admin"`
}
