package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"imovel_portal_backend/internal/directory/password"
	"imovel_portal_backend/internal/directory/repository"
	"imovel_portal_backend/internal/directory/transport"
	"imovel_portal_backend/platform/apperr"
	"imovel_portal_backend/platform/logger"
)

type memUsers struct {
	byEmail map[string]repository.User
}

func (m *memUsers) Create(_ context.Context, params repository.CreateUserParams) (repository.User, error) {
	user := repository.User{
		ID:        uuid.New(),
		Nome:      params.Nome,
		Email:     params.Email,
		Telefone:  params.Telefone,
		Whatsapp:  params.Whatsapp,
		SenhaHash: params.SenhaHash,
		Roles:     params.Roles,
		Ativo:     true,
		CreatedAt: time.Now(),
	}
	m.byEmail[user.Email] = user
	return user, nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	for _, user := range m.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (repository.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *memUsers) List(context.Context) ([]repository.User, error) {
	users := make([]repository.User, 0, len(m.byEmail))
	for _, user := range m.byEmail {
		users = append(users, user)
	}
	return users, nil
}

func (m *memUsers) SetAtivo(_ context.Context, id uuid.UUID, ativo bool) error {
	for email, user := range m.byEmail {
		if user.ID == id {
			user.Ativo = ativo
			m.byEmail[email] = user
			return nil
		}
	}
	return repository.ErrNotFound
}

type authConfig struct{}

func (authConfig) GetJWTAccessSecret() string       { return "test-secret" }
func (authConfig) GetAccessTokenTTL() time.Duration { return time.Hour }

func newTestService(t *testing.T) (*Service, *memUsers) {
	t.Helper()
	users := &memUsers{byEmail: make(map[string]repository.User)}
	return New(users, authConfig{}, logger.New("development")), users
}

func seedUser(t *testing.T, users *memUsers, email, plain string, roles []string, ativo bool) repository.User {
	t.Helper()

	hash, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	user := repository.User{
		ID:        uuid.New(),
		Nome:      "Teste",
		Email:     email,
		SenhaHash: hash,
		Roles:     roles,
		Ativo:     ativo,
		CreatedAt: time.Now(),
	}
	users.byEmail[email] = user
	return user
}

func TestLoginIssuesAccessTokenWithClaims(t *testing.T) {
	svc, users := newTestService(t)
	user := seedUser(t, users, "joao@example.com", "senha-forte", []string{"CORRETOR"}, true)

	resp, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "joao@example.com",
		Password: "senha-forte",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != user.ID.String() {
		t.Errorf("sub = %v, want %s", claims["sub"], user.ID)
	}
	if claims["type"] != "access" {
		t.Errorf("type = %v, want access", claims["type"])
	}
	if claims["email"] != "joao@example.com" {
		t.Errorf("email = %v", claims["email"])
	}
	roles, _ := claims["roles"].([]interface{})
	if len(roles) != 1 || roles[0] != "CORRETOR" {
		t.Errorf("roles = %v", claims["roles"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users := newTestService(t)
	seedUser(t, users, "joao@example.com", "senha-forte", []string{"CORRETOR"}, true)

	tests := []struct {
		name string
		req  transport.LoginRequest
	}{
		{"unknown email", transport.LoginRequest{Email: "outro@example.com", Password: "senha-forte"}},
		{"wrong password", transport.LoginRequest{Email: "joao@example.com", Password: "errada-errada"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tc.req); !apperr.Is(err, apperr.KindUnauthorized) {
				t.Fatalf("error = %v, want unauthorized", err)
			}
		})
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, users := newTestService(t)
	seedUser(t, users, "inativo@example.com", "senha-forte", []string{"CORRETOR"}, false)

	if _, err := svc.Login(context.Background(), transport.LoginRequest{
		Email:    "inativo@example.com",
		Password: "senha-forte",
	}); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("error = %v, want unauthorized", err)
	}
}

func TestCreateUserDropsUnknownRoles(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Nome:     "Maria",
		Email:    "Maria@Example.com",
		Password: "senha-forte",
		Roles:    []string{"CORRETOR", "SUPERUSER"},
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if len(user.Roles) != 1 || user.Roles[0] != "CORRETOR" {
		t.Errorf("roles = %v, want only CORRETOR", user.Roles)
	}
	if user.Email != "maria@example.com" {
		t.Errorf("email = %s, want lowercased", user.Email)
	}
}

func TestCreateUserRequiresKnownRole(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Nome:     "Maria",
		Email:    "maria@example.com",
		Password: "senha-forte",
		Roles:    []string{"SUPERUSER"},
	}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}
