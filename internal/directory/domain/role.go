// Package domain provides core business rules for the user directory.
package domain

// Role identifies what a directory user is allowed to do. The set is closed:
// tokens carrying anything else are treated as carrying no role at all.
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleCorretor      Role = "CORRETOR"
	RoleAssistente    Role = "ASSISTENTE"
	RoleCliente       Role = "CLIENTE"
	RoleMarketing     Role = "MARKETING"
	RoleDesenvolvedor Role = "DESENVOLVEDOR"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:         {},
	RoleCorretor:      {},
	RoleAssistente:    {},
	RoleCliente:       {},
	RoleMarketing:     {},
	RoleDesenvolvedor: {},
}

// IsKnownRole reports whether the value is one of the closed role set.
func IsKnownRole(role Role) bool {
	_, ok := knownRoles[role]
	return ok
}

// ParseRoles converts raw role claims into known roles, dropping anything
// outside the closed set.
func ParseRoles(raw []string) []Role {
	roles := make([]Role, 0, len(raw))
	for _, item := range raw {
		role := Role(item)
		if IsKnownRole(role) {
			roles = append(roles, role)
		}
	}
	return roles
}

// HasRole reports whether the slice contains the given role.
func HasRole(roles []Role, want Role) bool {
	for _, role := range roles {
		if role == want {
			return true
		}
	}
	return false
}

// PrimaryRole returns the most privileged role in the slice, for scoping
// decisions that need a single role. Precedence mirrors how broad each
// role's lead visibility is.
func PrimaryRole(roles []Role) Role {
	precedence := []Role{
		RoleAdmin,
		RoleMarketing,
		RoleDesenvolvedor,
		RoleCorretor,
		RoleAssistente,
		RoleCliente,
	}
	for _, candidate := range precedence {
		if HasRole(roles, candidate) {
			return candidate
		}
	}
	return ""
}
