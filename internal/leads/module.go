// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"imovel_portal_backend/internal/events"
	apphttp "imovel_portal_backend/internal/http"
	"imovel_portal_backend/internal/leads/handler"
	"imovel_portal_backend/internal/leads/repository"
	"imovel_portal_backend/internal/leads/service"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/logger"
	"imovel_portal_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// The directory dependency supplies claim eligibility checks, keeping this
// module decoupled from the user tables.
func NewModule(pool *pgxpool.Pool, directory service.CorretorDirectory, eventBus events.Bus, val *validator.Validator, cfg config.LeadConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, directory, eventBus, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead lifecycle service for use by the webhook module
// and the scheduled expiry sweep.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the lead routes. Creation is public (the site form
// posts without a session) behind the form rate limiter; everything else
// requires authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/leads")
	public.Use(ctx.FormRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)

	m.handler.RegisterProtectedRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
