package model

import "strings"

// Role is the identity category that decides which other users an account may manage.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSubAdmin   Role = "sub_admin"
	RoleInstructor Role = "instructor"
	RoleParent     Role = "parent"
	RoleStudent    Role = "student"
	RoleAffiliate  Role = "affiliate"
)

// AllRoles is the closed set of roles, in display order.
var AllRoles = []Role{
	RoleAdmin,
	RoleSubAdmin,
	RoleInstructor,
	RoleParent,
	RoleStudent,
	RoleAffiliate,
}

// StaffRoles may create and edit catalogue records (exams, webinars).
var StaffRoles = []Role{RoleAdmin, RoleSubAdmin, RoleInstructor}

// Valid reports whether r is a member of AllRoles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole resolves a case-insensitive role name.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", false
	}
	return r, true
}
