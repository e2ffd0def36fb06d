// Package directory provides the user directory bounded context module:
// login and user administration.
package directory

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"imovel_portal_backend/internal/directory/domain"
	"imovel_portal_backend/internal/directory/handler"
	"imovel_portal_backend/internal/directory/repository"
	"imovel_portal_backend/internal/directory/service"
	apphttp "imovel_portal_backend/internal/http"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/httpkit"
	"imovel_portal_backend/platform/logger"
	"imovel_portal_backend/platform/validator"
)

// Module is the directory bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the directory module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "directory"
}

// Repository exposes the directory store; the leads module consumes it as
// its claim-eligibility check.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the directory routes: login is public, user
// administration requires ADMIN.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterAuthRoutes(ctx.V1.Group("/auth"))

	users := ctx.Protected.Group("/usuarios")
	users.Use(httpkit.RequireRole(string(domain.RoleAdmin)))
	m.handler.RegisterUserRoutes(users)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
