package models

import "time"

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleManager   UserRole = "manager"
	UserRoleStaff     UserRole = "staff"
	UserRoleLogistics UserRole = "logistics"
)

// User is the backend-owned identity record. The client keeps a cached
// copy for the lifetime of the session; the auth manager is its only
// writer.
type User struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               UserRole  `json:"role"`
	TwoFactorEnabled   bool      `json:"twoFactorEnabled"`
	IsActive           bool      `json:"isActive"`
	Avatar             *string   `json:"avatar,omitempty"`
	LastLogin          time.Time `json:"lastLogin"`
	LastPasswordChange time.Time `json:"lastPasswordChange"`
	CreatedAt          time.Time `json:"createdAt"`
}

// UserPatch is a partial profile update merged locally into the cached
// user after profile or avatar edits. Nil fields are left untouched.
type UserPatch struct {
	Name   *string
	Email  *string
	Avatar *string
}

func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	return u
}
