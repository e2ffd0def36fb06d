// Package notification fans domain events out to the configured channels:
// the automation sink (WhatsApp group) and email. Deliveries go through the
// outbox first, so a channel outage delays a notice instead of losing it.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"imovel_portal_backend/internal/email"
	"imovel_portal_backend/internal/events"
	leadsrepo "imovel_portal_backend/internal/leads/repository"
	"imovel_portal_backend/internal/notification/outbox"
	"imovel_portal_backend/internal/notification/sink"
	"imovel_portal_backend/platform/config"
	"imovel_portal_backend/platform/logger"
)

// SinkNotifier posts new-lead payloads to the automation server.
type SinkNotifier interface {
	NotifyNewLead(ctx context.Context, payload sink.Payload) error
}

// LeadReader loads a lead with its expanded broker reference, used to fill
// the assignment email.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
}

// Outbox is the delivery journal the module writes before dispatching.
type Outbox interface {
	Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error)
	ClaimDue(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkRetry(ctx context.Context, rec outbox.Record, lastError string) error
}

type emailNewLeadPayload struct {
	To           string `json:"to"`
	Nome         string `json:"nome"`
	Telefone     string `json:"telefone"`
	Mensagem     string `json:"mensagem"`
	Origem       string `json:"origem"`
	ImovelTitulo string `json:"imovelTitulo,omitempty"`
}

type emailLeadAssignedPayload struct {
	To           string `json:"to"`
	CorretorNome string `json:"corretorNome"`
	LeadNome     string `json:"leadNome"`
}

// Module handles all notification-related event subscriptions.
type Module struct {
	outbox    Outbox
	sink      SinkNotifier
	sender    email.Sender
	leads     LeadReader
	adminAddr string
	log       *logger.Logger
}

// New creates the notification module. sinkClient may be nil when no
// automation server is configured.
func New(box Outbox, sinkClient SinkNotifier, sender email.Sender, leads LeadReader, cfg config.EmailConfig, log *logger.Logger) *Module {
	return &Module{
		outbox:    box,
		sink:      sinkClient,
		sender:    sender,
		leads:     leads,
		adminAddr: cfg.GetAdminNotifyAddress(),
		log:       log,
	}
}

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreatedName, events.HandlerFunc(m.handleLeadCreated))
	bus.Subscribe(events.LeadAssignedName, events.HandlerFunc(m.handleLeadAssigned))
}

func (m *Module) handleLeadCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadCreated)
	if !ok {
		return nil
	}

	if m.sink != nil {
		m.journalAndDispatch(ctx, e.LeadID, outbox.KindSinkNewLead, sink.Payload{
			LeadID:       e.LeadID,
			Nome:         e.Nome,
			Telefone:     e.Telefone,
			Mensagem:     e.Mensagem,
			ImovelTitulo: e.ImovelTitulo,
		})
	}

	if m.adminAddr != "" {
		payload := emailNewLeadPayload{
			To:       m.adminAddr,
			Nome:     e.Nome,
			Telefone: e.Telefone,
			Mensagem: e.Mensagem,
		}
		if e.ImovelTitulo != nil {
			payload.ImovelTitulo = *e.ImovelTitulo
		}
		m.journalAndDispatch(ctx, e.LeadID, outbox.KindEmailNewLead, payload)
	}

	return nil
}

func (m *Module) handleLeadAssigned(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadAssigned)
	if !ok {
		return nil
	}
	if m.adminAddr == "" {
		return nil
	}

	lead, err := m.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load assigned lead: %w", err)
	}

	corretorNome := ""
	if lead.CorretorNome != nil {
		corretorNome = *lead.CorretorNome
	}

	m.journalAndDispatch(ctx, e.LeadID, outbox.KindEmailLeadAssigned, emailLeadAssignedPayload{
		To:           m.adminAddr,
		CorretorNome: corretorNome,
		LeadNome:     lead.Nome,
	})
	return nil
}

// journalAndDispatch records the delivery and attempts it right away. On
// failure the record stays pending; the scheduled worker picks it up later.
func (m *Module) journalAndDispatch(ctx context.Context, leadID uuid.UUID, kind string, payload any) {
	id, err := m.outbox.Insert(ctx, outbox.InsertParams{
		LeadID:  leadID,
		Kind:    kind,
		Payload: payload,
	})
	if err != nil {
		m.log.Error("failed to journal notification", "kind", kind, "leadId", leadID, "error", err)
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		m.log.Error("failed to marshal notification payload", "kind", kind, "error", err)
		return
	}

	if err := m.dispatch(ctx, kind, raw); err != nil {
		m.log.SinkDispatchFailed(leadID.String(), err)
		return
	}

	if err := m.outbox.MarkSucceeded(ctx, id); err != nil {
		m.log.Error("failed to mark notification succeeded", "id", id, "error", err)
	}
}

// DispatchDue drains the outbox: deliveries whose run_at has passed are
// retried. Called from the scheduled worker.
func (m *Module) DispatchDue(ctx context.Context, limit int) (int, error) {
	records, err := m.outbox.ClaimDue(ctx, limit)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, rec := range records {
		if err := m.dispatch(ctx, rec.Kind, rec.Payload); err != nil {
			if retryErr := m.outbox.MarkRetry(ctx, rec, err.Error()); retryErr != nil {
				m.log.Error("failed to reschedule notification", "id", rec.ID, "error", retryErr)
			}
			continue
		}
		if err := m.outbox.MarkSucceeded(ctx, rec.ID); err != nil {
			m.log.Error("failed to mark notification succeeded", "id", rec.ID, "error", err)
			continue
		}
		dispatched++
	}

	return dispatched, nil
}

func (m *Module) dispatch(ctx context.Context, kind string, raw json.RawMessage) error {
	switch kind {
	case outbox.KindSinkNewLead:
		if m.sink == nil {
			return nil
		}
		var payload sink.Payload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode sink payload: %w", err)
		}
		return m.sink.NotifyNewLead(ctx, payload)

	case outbox.KindEmailNewLead:
		var payload emailNewLeadPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode email payload: %w", err)
		}
		return m.sender.SendNewLeadEmail(ctx, payload.To, email.NewLeadNotice{
			Nome:         payload.Nome,
			Telefone:     payload.Telefone,
			Mensagem:     payload.Mensagem,
			Origem:       payload.Origem,
			ImovelTitulo: payload.ImovelTitulo,
		})

	case outbox.KindEmailLeadAssigned:
		var payload emailLeadAssignedPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("decode email payload: %w", err)
		}
		return m.sender.SendLeadAssignedEmail(ctx, payload.To, payload.CorretorNome, payload.LeadNome)

	default:
		return fmt.Errorf("unknown notification kind %q", kind)
	}
}
