package domain

import (
	"github.com/google/uuid"

	directorydomain "imovel_portal_backend/internal/directory/domain"
)

// Scope is the visibility predicate derived from an actor's role. The
// repository compiles it into the WHERE clause, so every read path shares
// the same rule.
type Scope struct {
	// All grants unrestricted visibility (ADMIN, MARKETING, DESENVOLVEDOR).
	All bool
	// OwnerID restricts to leads owned by this broker (CORRETOR, ASSISTENTE).
	OwnerID *uuid.UUID
	// Email restricts to leads whose contact email matches (CLIENTE).
	Email *string
	// None means the actor sees nothing at all.
	None bool
}

// ScopeFor is the single scoping rule for lead reads. It is a pure function
// of the actor's roles and identity so it can be tested without HTTP or SQL.
func ScopeFor(roles []directorydomain.Role, actorID uuid.UUID, actorEmail string) Scope {
	switch directorydomain.PrimaryRole(roles) {
	case directorydomain.RoleAdmin, directorydomain.RoleMarketing, directorydomain.RoleDesenvolvedor:
		return Scope{All: true}
	case directorydomain.RoleCorretor, directorydomain.RoleAssistente:
		id := actorID
		return Scope{OwnerID: &id}
	case directorydomain.RoleCliente:
		if actorEmail == "" {
			return Scope{None: true}
		}
		email := actorEmail
		return Scope{Email: &email}
	default:
		return Scope{None: true}
	}
}

// CanEditStatus decides whether an actor may edit a lead's status.
// ADMIN and MARKETING may edit any lead; a CORRETOR only leads they own.
func CanEditStatus(roles []directorydomain.Role, actorID uuid.UUID, ownerID *uuid.UUID) bool {
	if directorydomain.HasRole(roles, directorydomain.RoleAdmin) ||
		directorydomain.HasRole(roles, directorydomain.RoleMarketing) {
		return true
	}
	if directorydomain.HasRole(roles, directorydomain.RoleCorretor) {
		return ownerID != nil && *ownerID == actorID
	}
	return false
}
