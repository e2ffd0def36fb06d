package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"imovel_portal_backend/internal/email"
	"imovel_portal_backend/internal/events"
	leadsrepo "imovel_portal_backend/internal/leads/repository"
	"imovel_portal_backend/internal/notification/outbox"
	"imovel_portal_backend/internal/notification/sink"
	"imovel_portal_backend/platform/logger"
)

type testEmailConfig struct {
	adminAddr string
}

func (c testEmailConfig) GetEmailEnabled() bool         { return true }
func (c testEmailConfig) GetSMTPHost() string           { return "smtp.example.com" }
func (c testEmailConfig) GetSMTPPort() int              { return 587 }
func (c testEmailConfig) GetSMTPUsername() string       { return "" }
func (c testEmailConfig) GetSMTPPassword() string       { return "" }
func (c testEmailConfig) GetEmailFromName() string      { return "Portal" }
func (c testEmailConfig) GetEmailFromAddress() string   { return "portal@example.com" }
func (c testEmailConfig) GetAdminNotifyAddress() string { return c.adminAddr }

type testSink struct {
	calls []sink.Payload
	fail  bool
}

func (s *testSink) NotifyNewLead(_ context.Context, payload sink.Payload) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.calls = append(s.calls, payload)
	return nil
}

type testSender struct {
	newLeadCalls  int
	assignedCalls int
}

func (s *testSender) SendNewLeadEmail(context.Context, string, email.NewLeadNotice) error {
	s.newLeadCalls++
	return nil
}

func (s *testSender) SendLeadAssignedEmail(context.Context, string, string, string) error {
	s.assignedCalls++
	return nil
}

type testLeadReader struct {
	lead leadsrepo.Lead
}

func (r *testLeadReader) GetByID(context.Context, uuid.UUID) (leadsrepo.Lead, error) {
	return r.lead, nil
}

// memOutbox journals deliveries in memory with the same pending/succeeded
// transitions as the SQL repository.
type memOutbox struct {
	records map[uuid.UUID]*outbox.Record
}

func newMemOutbox() *memOutbox {
	return &memOutbox{records: make(map[uuid.UUID]*outbox.Record)}
}

func (m *memOutbox) Insert(_ context.Context, p outbox.InsertParams) (uuid.UUID, error) {
	raw, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	m.records[id] = &outbox.Record{
		ID:      id,
		LeadID:  p.LeadID,
		Kind:    p.Kind,
		Payload: raw,
		RunAt:   time.Now(),
		Status:  outbox.StatusPending,
	}
	return id, nil
}

func (m *memOutbox) ClaimDue(_ context.Context, _ int) ([]outbox.Record, error) {
	var due []outbox.Record
	for _, rec := range m.records {
		if rec.Status == outbox.StatusPending {
			rec.Attempts++
			due = append(due, *rec)
		}
	}
	return due, nil
}

func (m *memOutbox) MarkSucceeded(_ context.Context, id uuid.UUID) error {
	m.records[id].Status = outbox.StatusSucceeded
	return nil
}

func (m *memOutbox) MarkRetry(_ context.Context, rec outbox.Record, _ string) error {
	m.records[rec.ID].Status = outbox.StatusPending
	return nil
}

func (m *memOutbox) countByStatus(status outbox.Status) int {
	count := 0
	for _, rec := range m.records {
		if rec.Status == status {
			count++
		}
	}
	return count
}

func leadCreatedEvent() events.LeadCreated {
	titulo := "Apto Centro"
	return events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       uuid.New(),
		Nome:         "Maria",
		Telefone:     "+5562999990000",
		Mensagem:     "Tenho interesse",
		ImovelTitulo: &titulo,
	}
}

func TestLeadCreatedDispatchesSinkAndEmail(t *testing.T) {
	box := newMemOutbox()
	sinkClient := &testSink{}
	sender := &testSender{}

	m := New(box, sinkClient, sender, &testLeadReader{}, testEmailConfig{adminAddr: "admin@example.com"}, logger.New("development"))

	if err := m.handleLeadCreated(context.Background(), leadCreatedEvent()); err != nil {
		t.Fatalf("handleLeadCreated: %v", err)
	}

	if len(sinkClient.calls) != 1 {
		t.Fatalf("sink calls = %d, want 1", len(sinkClient.calls))
	}
	if sinkClient.calls[0].ImovelTitulo == nil || *sinkClient.calls[0].ImovelTitulo != "Apto Centro" {
		t.Error("sink payload must carry the property title")
	}
	if sender.newLeadCalls != 1 {
		t.Errorf("new-lead emails = %d, want 1", sender.newLeadCalls)
	}
	if got := box.countByStatus(outbox.StatusSucceeded); got != 2 {
		t.Errorf("succeeded outbox records = %d, want 2", got)
	}
}

func TestLeadCreatedFailureStaysPendingAndRetries(t *testing.T) {
	box := newMemOutbox()
	sinkClient := &testSink{fail: true}

	m := New(box, sinkClient, &testSender{}, &testLeadReader{}, testEmailConfig{}, logger.New("development"))

	if err := m.handleLeadCreated(context.Background(), leadCreatedEvent()); err != nil {
		t.Fatalf("handleLeadCreated: %v", err)
	}

	if got := box.countByStatus(outbox.StatusPending); got != 1 {
		t.Fatalf("pending records after failed dispatch = %d, want 1", got)
	}

	// Sink comes back; the scheduled drain delivers the journaled notice.
	sinkClient.fail = false
	dispatched, err := m.DispatchDue(context.Background(), 10)
	if err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}
	if dispatched != 1 {
		t.Fatalf("dispatched = %d, want 1", dispatched)
	}
	if got := box.countByStatus(outbox.StatusSucceeded); got != 1 {
		t.Errorf("succeeded records = %d, want 1", got)
	}
}

func TestLeadCreatedWithoutSinkOrAdminDoesNothing(t *testing.T) {
	box := newMemOutbox()

	m := New(box, nil, &testSender{}, &testLeadReader{}, testEmailConfig{}, logger.New("development"))

	if err := m.handleLeadCreated(context.Background(), leadCreatedEvent()); err != nil {
		t.Fatalf("handleLeadCreated: %v", err)
	}
	if len(box.records) != 0 {
		t.Error("no channels configured, nothing should be journaled")
	}
}

func TestLeadAssignedEmailsAdmin(t *testing.T) {
	box := newMemOutbox()
	sender := &testSender{}
	corretor := "João Corretor"
	reader := &testLeadReader{lead: leadsrepo.Lead{
		ID:           uuid.New(),
		Nome:         "Maria",
		CorretorNome: &corretor,
	}}

	m := New(box, nil, sender, reader, testEmailConfig{adminAddr: "admin@example.com"}, logger.New("development"))

	err := m.handleLeadAssigned(context.Background(), events.LeadAssigned{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     reader.lead.ID,
		CorretorID: uuid.New(),
		Via:        "webhook",
	})
	if err != nil {
		t.Fatalf("handleLeadAssigned: %v", err)
	}

	if sender.assignedCalls != 1 {
		t.Errorf("assigned emails = %d, want 1", sender.assignedCalls)
	}
}
