package domain

import (
	"testing"

	"github.com/google/uuid"

	directorydomain "imovel_portal_backend/internal/directory/domain"
)

func TestScopeForAdminSeesAll(t *testing.T) {
	for _, role := range []directorydomain.Role{
		directorydomain.RoleAdmin,
		directorydomain.RoleMarketing,
		directorydomain.RoleDesenvolvedor,
	} {
		scope := ScopeFor([]directorydomain.Role{role}, uuid.New(), "")
		if !scope.All {
			t.Errorf("role %s should see all leads", role)
		}
	}
}

func TestScopeForCorretorIsOwnerScoped(t *testing.T) {
	actorID := uuid.New()

	for _, role := range []directorydomain.Role{
		directorydomain.RoleCorretor,
		directorydomain.RoleAssistente,
	} {
		scope := ScopeFor([]directorydomain.Role{role}, actorID, "corretor@example.com")
		if scope.All {
			t.Errorf("role %s must not see all leads", role)
		}
		if scope.OwnerID == nil || *scope.OwnerID != actorID {
			t.Errorf("role %s should be scoped to its own leads", role)
		}
		if scope.Email != nil {
			t.Errorf("role %s should not be email-scoped", role)
		}
	}
}

func TestScopeForClienteIsEmailScoped(t *testing.T) {
	scope := ScopeFor([]directorydomain.Role{directorydomain.RoleCliente}, uuid.New(), "maria@example.com")
	if scope.All || scope.OwnerID != nil {
		t.Fatal("CLIENTE scope should only match by email")
	}
	if scope.Email == nil || *scope.Email != "maria@example.com" {
		t.Fatal("CLIENTE scope should carry the actor's email")
	}
}

func TestScopeForClienteWithoutEmailSeesNothing(t *testing.T) {
	scope := ScopeFor([]directorydomain.Role{directorydomain.RoleCliente}, uuid.New(), "")
	if !scope.None {
		t.Fatal("CLIENTE without an email must not see any leads")
	}
}

func TestScopeForUnknownRoleSeesNothing(t *testing.T) {
	scope := ScopeFor(nil, uuid.New(), "someone@example.com")
	if !scope.None {
		t.Fatal("an actor without a known role must not see any leads")
	}
}

func TestCanEditStatus(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	tests := []struct {
		name    string
		roles   []directorydomain.Role
		actorID uuid.UUID
		ownerID *uuid.UUID
		want    bool
	}{
		{"admin any lead", []directorydomain.Role{directorydomain.RoleAdmin}, other, &owner, true},
		{"marketing any lead", []directorydomain.Role{directorydomain.RoleMarketing}, other, &owner, true},
		{"owning corretor", []directorydomain.Role{directorydomain.RoleCorretor}, owner, &owner, true},
		{"non-owning corretor", []directorydomain.Role{directorydomain.RoleCorretor}, other, &owner, false},
		{"corretor on unowned lead", []directorydomain.Role{directorydomain.RoleCorretor}, owner, nil, false},
		{"cliente", []directorydomain.Role{directorydomain.RoleCliente}, owner, &owner, false},
		{"no roles", nil, owner, &owner, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanEditStatus(tc.roles, tc.actorID, tc.ownerID); got != tc.want {
				t.Errorf("CanEditStatus() = %v, want %v", got, tc.want)
			}
		})
	}
}
