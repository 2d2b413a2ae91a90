// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package sec

import "fmt"

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted administrative access
	RoleAdmin UserRole = "admin"

	// Pastoral staff: reads and manages the records of the congregation
	RolePastor UserRole = "pastor"

	// Default role for registered members
	RoleMember UserRole = "member"
)

// Roles lists every known role from the highest to the lowest level.
var Roles = []UserRole{RoleAdmin, RolePastor, RoleMember}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
//
// Unknown roles never satisfy anything, not even another unknown role.
func (r UserRole) AtLeast(target UserRole) bool {
	level := r.level()
	if level == 0 {
		return false
	}
	return level >= target.level()
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RolePastor:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}

// ParseRole converts a raw string into a known [UserRole].
func ParseRole(raw string) (UserRole, error) {
	role := UserRole(raw)
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown role %q", raw)
	}
	return role, nil
}

// RoleNames returns the known roles as plain strings (for validation schemas).
func RoleNames() []string {
	names := make([]string, 0, len(Roles))
	for _, role := range Roles {
		names = append(names, string(role))
	}
	return names
}
