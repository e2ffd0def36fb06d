// Package imoveis provides the property catalog bounded context module.
package imoveis

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"imovel_portal_backend/internal/directory/domain"
	apphttp "imovel_portal_backend/internal/http"
	"imovel_portal_backend/internal/imoveis/handler"
	"imovel_portal_backend/internal/imoveis/repository"
	"imovel_portal_backend/internal/imoveis/service"
	"imovel_portal_backend/internal/storage"
	"imovel_portal_backend/platform/httpkit"
	"imovel_portal_backend/platform/logger"
	"imovel_portal_backend/platform/validator"
)

// Module is the imoveis bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the imoveis module. storageSvc may be
// nil when MinIO is not configured; listings still work without photos.
func NewModule(pool *pgxpool.Pool, storageSvc storage.StorageService, cfg service.Config, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "imoveis"
}

// RegisterRoutes mounts the catalog routes: browsing is public, management
// requires ADMIN or MARKETING.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/imoveis"))

	admin := ctx.Protected.Group("/admin/imoveis")
	admin.Use(httpkit.RequireRole(string(domain.RoleAdmin), string(domain.RoleMarketing)))
	m.handler.RegisterAdminRoutes(admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
