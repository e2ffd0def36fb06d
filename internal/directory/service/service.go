// Package service implements directory operations: login and user
// administration.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"imovel_portal_backend/internal/directory/domain"
	"imovel_portal_backend/internal/directory/password"
	"imovel_portal_backend/internal/directory/repository"
	"imovel_portal_backend/internal/directory/transport"
	"imovel_portal_backend/platform/apperr"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/logger"
	"imovel_portal_backend/platform/phone"
)

const accessTokenType = "access"

const msgInvalidCredentials = "credenciais inválidas"

// Users is the persistence surface of the directory.
type Users interface {
	Create(ctx context.Context, params repository.CreateUserParams) (repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	List(ctx context.Context) ([]repository.User, error)
	SetAtivo(ctx context.Context, id uuid.UUID, ativo bool) error
}

type Service struct {
	users Users
	cfg   config.AuthServiceConfig
	log   *logger.Logger
}

func New(users Users, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{users: users, cfg: cfg, log: log}
}

// Login authenticates a user and issues a signed access token. Inactive
// accounts cannot sign in.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.AuthEvent("login", req.Email, false, "unknown email")
			return transport.LoginResponse{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	if err := password.Compare(user.SenhaHash, req.Password); err != nil {
		s.log.AuthEvent("login", user.Email, false, "bad password")
		return transport.LoginResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	if !user.Ativo {
		s.log.AuthEvent("login", user.Email, false, "inactive account")
		return transport.LoginResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.signJWT(user)
	if err != nil {
		return transport.LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return transport.LoginResponse{
		AccessToken: token,
		User:        toUserResponse(user),
	}, nil
}

// CreateUser registers a directory entry. Admin-only at the route layer.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	roles := domain.ParseRoles(req.Roles)
	if len(roles) == 0 {
		return transport.UserResponse{}, apperr.Validation("pelo menos um papel válido é necessário")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	params := repository.CreateUserParams{
		Nome:      strings.TrimSpace(req.Nome),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		SenhaHash: hash,
		Roles:     rolesToStrings(roles),
	}
	if req.Telefone != "" {
		telefone := phone.NormalizeE164(req.Telefone)
		params.Telefone = &telefone
	}
	if req.Whatsapp != "" {
		whatsapp := phone.NormalizeE164(req.Whatsapp)
		params.Whatsapp = &whatsapp
	}

	user, err := s.users.Create(ctx, params)
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}

	return toUserResponse(user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list users", err)
	}

	items := make([]transport.UserResponse, len(users))
	for i, user := range users {
		items[i] = toUserResponse(user)
	}
	return items, nil
}

// SetAtivo activates or deactivates an account. Deactivated corretores stop
// being eligible for claims immediately.
func (s *Service) SetAtivo(ctx context.Context, id uuid.UUID, ativo bool) error {
	if err := s.users.SetAtivo(ctx, id, ativo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("usuário não encontrado")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to update user", err)
	}
	return nil
}

func (s *Service) signJWT(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  accessTokenType,
		"roles": user.Roles,
		"email": user.Email,
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toUserResponse(user repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:       user.ID,
		Nome:     user.Nome,
		Email:    user.Email,
		Telefone: user.Telefone,
		Whatsapp: user.Whatsapp,
		Roles:    user.Roles,
		Ativo:    user.Ativo,
		CriadoEm: user.CreatedAt,
	}
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}
