// Package webhook provides the inbound automation callback module: the
// endpoint the automation server posts broker replies to.
package webhook

import (
	apphttp "imovel_portal_backend/internal/http"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/validator"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	cfg     config.WebhookConfig
}

// NewModule creates and initializes the webhook module.
func NewModule(claimer LeadClaimer, cfg config.WebhookConfig, val *validator.Validator) *Module {
	return &Module{
		handler: NewHandler(claimer, val),
		cfg:     cfg,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the callback endpoint. The route is machine-to-machine
// (signature auth, no JWT), so it lives outside the versioned API groups.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Webhook.POST("/resposta-corretor", SignatureMiddleware(m.cfg), m.handler.HandleCorretorReply)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
