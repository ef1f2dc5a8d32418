package models

import "fmt"

// Role is the permission identity a session operates under
type Role string

// Role constants
const (
	RoleAdmin           Role = "admin"
	RolePartner         Role = "partner"
	RoleSeniorAssociate Role = "senior_associate"
	RoleJuniorAssociate Role = "junior_associate"
	RoleAccountant      Role = "accountant"
	RoleAssistant       Role = "assistant"
	// RoleSystem is the pseudo-actor used for records emitted by the platform itself
	RoleSystem Role = "system"
)

// AllRoles returns the closed set of roles in display order
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RolePartner,
		RoleSeniorAssociate,
		RoleJuniorAssociate,
		RoleAccountant,
		RoleAssistant,
		RoleSystem,
	}
}

// Valid reports whether r belongs to the closed role set
func (r Role) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts a raw string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: role %q", ErrInvalidEnum, s)
	}
	return r, nil
}

// Actor identifies who is asking: the user id, display name and the role in use
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin returns true if the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsSystem returns true for the internal pseudo-actor
func (a Actor) IsSystem() bool {
	return a.Role == RoleSystem
}
