// Package service implements the lead lifecycle engine: creation, the
// single-assignment claim, status edits and the role-scoped read paths.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	directorydomain "imovel_portal_backend/internal/directory/domain"
	"imovel_portal_backend/internal/events"
	"imovel_portal_backend/internal/leads/domain"
	"imovel_portal_backend/internal/leads/repository"
	"imovel_portal_backend/internal/leads/transport"
	"imovel_portal_backend/platform/apperr"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/logger"
	"imovel_portal_backend/platform/phone"
)

// Claim channels, recorded on the assignment event.
const (
	ViaREST    = "rest"
	ViaWebhook = "webhook"
)

const (
	msgLeadNotFound    = "lead não encontrado"
	msgAlreadyAssigned = "lead já assumido por outro corretor"
	msgForbidden       = "acesso negado"
)

// Store is the persistence surface the engine mutates leads through. All
// writes go through these operations so the status invariants hold; nothing
// edits lead rows directly.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Claim(ctx context.Context, id uuid.UUID, corretorID uuid.UUID) (repository.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	CountByStatus(ctx context.Context, scope domain.Scope) (repository.StatusCounts, error)
	CountByCorretor(ctx context.Context) ([]repository.CorretorCount, error)
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// CorretorDirectory is the narrow read-only view of the user directory the
// engine needs: claim eligibility.
type CorretorDirectory interface {
	// IsActiveCorretor reports whether id refers to an active user holding
	// the CORRETOR role.
	IsActiveCorretor(ctx context.Context, id uuid.UUID) (bool, error)
}

// Actor is the authenticated caller, as seen by the engine.
type Actor struct {
	ID    uuid.UUID
	Email string
	Roles []directorydomain.Role
}

type Service struct {
	store     Store
	directory CorretorDirectory
	bus       events.Bus
	cfg       config.LeadConfig
	log       *logger.Logger
}

func New(store Store, directory CorretorDirectory, bus events.Bus, cfg config.LeadConfig, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		directory: directory,
		bus:       bus,
		cfg:       cfg,
		log:       log,
	}
}

// Create persists a new PENDING lead and raises LeadCreated for the
// notification fan-out. Sink delivery is asynchronous: creation never fails
// or blocks because the automation server is down.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if strings.TrimSpace(req.Nome) == "" || strings.TrimSpace(req.Telefone) == "" || strings.TrimSpace(req.Mensagem) == "" {
		return transport.LeadResponse{}, apperr.Validation("nome, telefone e mensagem são obrigatórios")
	}

	origem := domain.Origin(req.Origem)
	if req.Origem == "" {
		origem = domain.OriginSite
	}
	if !domain.IsKnownOrigin(origem) {
		return transport.LeadResponse{}, apperr.Validation("origem desconhecida")
	}

	params := repository.CreateLeadParams{
		Nome:     strings.TrimSpace(req.Nome),
		Telefone: phone.NormalizeE164(req.Telefone),
		Mensagem: strings.TrimSpace(req.Mensagem),
		ImovelID: req.ImovelID,
		Origem:   string(origem),
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		params.Email = &email
	}

	lead, err := s.store.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		Nome:         lead.Nome,
		Telefone:     lead.Telefone,
		Mensagem:     lead.Mensagem,
		ImovelTitulo: lead.ImovelTitulo,
	})

	return toLeadResponse(lead), nil
}

// Claim is the single-assignment operation for the authenticated REST path.
func (s *Service) Claim(ctx context.Context, leadID uuid.UUID, corretorID uuid.UUID) (transport.LeadResponse, error) {
	return s.claim(ctx, leadID, corretorID, ViaREST)
}

func (s *Service) claim(ctx context.Context, leadID uuid.UUID, corretorID uuid.UUID, via string) (transport.LeadResponse, error) {
	eligible, err := s.directory.IsActiveCorretor(ctx, corretorID)
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to check corretor", err)
	}
	if !eligible {
		return transport.LeadResponse{}, apperr.Forbidden("corretor inativo ou inexistente")
	}

	lead, err := s.store.Claim(ctx, leadID, corretorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
		case errors.Is(err, repository.ErrAlreadyAssigned):
			return transport.LeadResponse{}, apperr.Conflict(msgAlreadyAssigned)
		default:
			return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to claim lead", err)
		}
	}

	s.bus.Publish(ctx, events.LeadAssigned{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		CorretorID: corretorID,
		Via:        via,
	})

	return toLeadResponse(lead), nil
}

// ClaimViaWebhook handles the automation callback. Messages without a claim
// keyword are acknowledged without touching lead state; claim attempts share
// the exact atomic path as the REST claim, so a replayed callback loses the
// race against its own first delivery.
func (s *Service) ClaimViaWebhook(ctx context.Context, req transport.WebhookClaimRequest) (transport.WebhookClaimResponse, error) {
	if !domain.IsClaimMessage(req.Mensagem) {
		return transport.WebhookClaimResponse{
			Claimed: false,
			Message: "mensagem registrada, nenhuma ação executada",
		}, nil
	}

	lead, err := s.claim(ctx, req.LeadID, req.CorretorID, ViaWebhook)
	if err != nil {
		return transport.WebhookClaimResponse{}, err
	}

	return transport.WebhookClaimResponse{
		Claimed: true,
		Lead:    &lead,
		Message: "lead assumido",
	}, nil
}

// Get returns a single lead, applying the same scoping rule as List.
func (s *Service) Get(ctx context.Context, leadID uuid.UUID, actor Actor) (transport.LeadResponse, error) {
	lead, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	if !leadVisibleTo(lead, domain.ScopeFor(actor.Roles, actor.ID, actor.Email)) {
		return transport.LeadResponse{}, apperr.Forbidden(msgForbidden)
	}

	return toLeadResponse(lead), nil
}

// UpdateStatus is the authorized administrative status edit. Backward moves
// are allowed for privileged actors but logged, since they are unusual.
func (s *Service) UpdateStatus(ctx context.Context, leadID uuid.UUID, req transport.UpdateStatusRequest, actor Actor) (transport.LeadResponse, error) {
	target := domain.Status(req.Status)
	if !domain.IsEditableTarget(target) {
		return transport.LeadResponse{}, apperr.Validation("status inválido")
	}

	current, err := s.store.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	if !domain.CanEditStatus(actor.Roles, actor.ID, current.CorretorID) {
		return transport.LeadResponse{}, apperr.Forbidden(msgForbidden)
	}

	// An ASSIGNED lead always has an owner. The claim is the only way to set
	// one, so the edit path refuses to fabricate the state.
	if target == domain.StatusAssigned && current.CorretorID == nil {
		return transport.LeadResponse{}, apperr.Validation("lead sem corretor não pode ser marcado como ASSIGNED")
	}

	if domain.IsBackwardMove(domain.Status(current.Status), target) {
		s.log.BackwardStatusMove(leadID.String(), current.Status, string(target), actor.ID.String())
	}

	lead, err := s.store.UpdateStatus(ctx, leadID, target)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update lead status", err)
	}

	return toLeadResponse(lead), nil
}

// List returns leads visible to the actor, newest first by default.
func (s *Service) List(ctx context.Context, query transport.ListLeadsQuery, actor Actor) (transport.ListLeadsResponse, error) {
	params := repository.ListParams{
		Scope:    domain.ScopeFor(actor.Roles, actor.ID, actor.Email),
		Page:     query.Page,
		Limit:    query.Limit,
		OrderAsc: query.Order == "asc",
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if query.Status != "" {
		status := domain.Status(query.Status)
		params.Status = &status
	}

	leads, total, err := s.store.List(ctx, params)
	if err != nil {
		return transport.ListLeadsResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = toLeadResponse(lead)
	}

	return transport.ListLeadsResponse{
		Items: items,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

// Stats aggregates counts by status and the conversion rate within the
// actor's scope. The rate is zero when there are no leads at all.
func (s *Service) Stats(ctx context.Context, actor Actor) (transport.StatsResponse, error) {
	counts, err := s.store.CountByStatus(ctx, domain.ScopeFor(actor.Roles, actor.ID, actor.Email))
	if err != nil {
		return transport.StatsResponse{}, apperr.Wrap(apperr.KindInternal, "failed to compute stats", err)
	}

	return toStatsResponse(counts), nil
}

// CountByCorretor returns the per-broker lead breakdown (ADMIN/MARKETING).
func (s *Service) CountByCorretor(ctx context.Context) ([]transport.CorretorLeadCount, error) {
	counts, err := s.store.CountByCorretor(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count leads by corretor", err)
	}

	items := make([]transport.CorretorLeadCount, len(counts))
	for i, count := range counts {
		items[i] = transport.CorretorLeadCount{
			CorretorID:  count.CorretorID,
			Nome:        count.Nome,
			Total:       count.Total,
			Convertidos: count.Convertidos,
		}
	}

	return items, nil
}

// ExpireStale moves PENDING leads older than the configured TTL to EXPIRED.
// Called from the scheduled sweep, never from request handling.
func (s *Service) ExpireStale(ctx context.Context) (int64, error) {
	ttl := s.cfg.GetLeadExpiryTTL()
	if ttl <= 0 {
		return 0, nil
	}

	expired, err := s.store.ExpireStale(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.log.Info("expired stale leads", "count", expired, "ttl", ttl.String())
	}
	return expired, nil
}

func leadVisibleTo(lead repository.Lead, scope domain.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.OwnerID != nil:
		return lead.CorretorID != nil && *lead.CorretorID == *scope.OwnerID
	case scope.Email != nil:
		return lead.Email != nil && strings.EqualFold(*lead.Email, *scope.Email)
	default:
		return false
	}
}
