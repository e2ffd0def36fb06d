// Package transport defines the request/response shapes of the leads API.
// JSON field names follow the public site contract (pt-BR).
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the public intake form payload.
type CreateLeadRequest struct {
	Nome     string     `json:"nome" validate:"required,min=2,max=120"`
	Telefone string     `json:"telefone" validate:"required,telefone"`
	Email    string     `json:"email" validate:"omitempty,email"`
	Mensagem string     `json:"mensagem" validate:"required,min=2,max=2000"`
	ImovelID *uuid.UUID `json:"imovelId" validate:"omitempty"`
	Origem   string     `json:"origem" validate:"omitempty,oneof=SITE WHATSAPP MANUAL AUTOMACAO"`
}

// UpdateStatusRequest is the administrative status edit payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ASSIGNED CONVERTED EXPIRED"`
}

// ListLeadsQuery carries the list filters bound from the query string.
type ListLeadsQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=PENDING ASSIGNED CONVERTED EXPIRED"`
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Order  string `form:"order" validate:"omitempty,oneof=asc desc"`
}

// CorretorSummary is the expanded broker reference on a lead.
type CorretorSummary struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	Whatsapp string    `json:"whatsapp"`
}

// ImovelSummary is the expanded property reference on a lead.
type ImovelSummary struct {
	ID     uuid.UUID `json:"id"`
	Titulo string    `json:"titulo"`
	Tipo   string    `json:"tipo"`
	Preco  float64   `json:"preco"`
	Bairro string    `json:"bairro"`
}

// LeadResponse is the full lead representation returned by the API.
type LeadResponse struct {
	ID       uuid.UUID        `json:"id"`
	Nome     string           `json:"nome"`
	Telefone string           `json:"telefone"`
	Email    *string          `json:"email,omitempty"`
	Mensagem string           `json:"mensagem"`
	Origem   string           `json:"origem"`
	Status   string           `json:"status"`
	Corretor *CorretorSummary `json:"corretor,omitempty"`
	Imovel   *ImovelSummary   `json:"imovel,omitempty"`
	CriadoEm time.Time        `json:"criadoEm"`
}

// ListLeadsResponse is a paginated lead listing.
type ListLeadsResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// StatsResponse aggregates lead counts by status within the caller's scope.
type StatsResponse struct {
	Total         int     `json:"total"`
	Pendentes     int     `json:"pendentes"`
	Assumidos     int     `json:"assumidos"`
	Convertidos   int     `json:"convertidos"`
	Expirados     int     `json:"expirados"`
	TaxaConversao float64 `json:"taxaConversao"`
}

// CorretorLeadCount is one row of the per-broker breakdown.
type CorretorLeadCount struct {
	CorretorID  uuid.UUID `json:"corretorId"`
	Nome        string    `json:"nome"`
	Total       int       `json:"total"`
	Convertidos int       `json:"convertidos"`
}

// WebhookClaimRequest is the callback payload from the automation server.
type WebhookClaimRequest struct {
	LeadID     uuid.UUID `json:"leadId" validate:"required"`
	CorretorID uuid.UUID `json:"corretorId" validate:"required"`
	Mensagem   string    `json:"mensagem" validate:"required"`
}

// WebhookClaimResponse acknowledges an automation callback. Claimed is false
// for informational messages that did not attempt a claim.
type WebhookClaimResponse struct {
	Claimed bool          `json:"claimed"`
	Lead    *LeadResponse `json:"lead,omitempty"`
	Message string        `json:"message"`
}
