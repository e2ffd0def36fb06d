package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	directorydomain "imovel_portal_backend/internal/directory/domain"
	"imovel_portal_backend/internal/events"
	"imovel_portal_backend/internal/leads/domain"
	"imovel_portal_backend/internal/leads/repository"
	"imovel_portal_backend/internal/leads/transport"
	"imovel_portal_backend/platform/apperr"
	"imovel_portal_backend/platform/logger"
)

// memStore implements Store with the same conditional-update semantics as
// the SQL repository: the claim checks and sets under one lock, so concurrent
// claims exercise the real race behavior.
type memStore struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*repository.Lead
}

func newMemStore() *memStore {
	return &memStore{leads: make(map[uuid.UUID]*repository.Lead)}
}

func (m *memStore) Create(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead := repository.Lead{
		ID:        uuid.New(),
		Nome:      params.Nome,
		Telefone:  params.Telefone,
		Email:     params.Email,
		Mensagem:  params.Mensagem,
		ImovelID:  params.ImovelID,
		Origem:    params.Origem,
		Status:    string(domain.StatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.leads[lead.ID] = &lead
	return lead, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return *lead, nil
}

func (m *memStore) Claim(_ context.Context, id uuid.UUID, corretorID uuid.UUID) (repository.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	if lead.Status != string(domain.StatusPending) {
		return repository.Lead{}, repository.ErrAlreadyAssigned
	}

	// The SQL repository re-selects through a join to usuarios, so a claimed
	// lead always carries the owning broker's name alongside the id.
	owner := corretorID
	nome := "Corretor Teste"
	lead.Status = string(domain.StatusAssigned)
	lead.CorretorID = &owner
	lead.CorretorNome = &nome
	lead.UpdatedAt = time.Now()
	return *lead, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) (repository.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lead, ok := m.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = string(status)
	lead.UpdatedAt = time.Now()
	return *lead, nil
}

func (m *memStore) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if params.Scope.None {
		return []repository.Lead{}, 0, nil
	}

	matched := make([]repository.Lead, 0)
	for _, lead := range m.leads {
		if !scopeMatches(*lead, params.Scope) {
			continue
		}
		if params.Status != nil && lead.Status != string(*params.Status) {
			continue
		}
		matched = append(matched, *lead)
	}

	sort.Slice(matched, func(i, j int) bool {
		if params.OrderAsc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched, len(matched), nil
}

func (m *memStore) CountByStatus(_ context.Context, scope domain.Scope) (repository.StatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var counts repository.StatusCounts
	if scope.None {
		return counts, nil
	}

	for _, lead := range m.leads {
		if !scopeMatches(*lead, scope) {
			continue
		}
		switch domain.Status(lead.Status) {
		case domain.StatusPending:
			counts.Pending++
		case domain.StatusAssigned:
			counts.Assigned++
		case domain.StatusConverted:
			counts.Converted++
		case domain.StatusExpired:
			counts.Expired++
		}
	}
	return counts, nil
}

func (m *memStore) CountByCorretor(_ context.Context) ([]repository.CorretorCount, error) {
	return []repository.CorretorCount{}, nil
}

func (m *memStore) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired int64
	for _, lead := range m.leads {
		if lead.Status == string(domain.StatusPending) && lead.CreatedAt.Before(cutoff) {
			lead.Status = string(domain.StatusExpired)
			expired++
		}
	}
	return expired, nil
}

func scopeMatches(lead repository.Lead, scope domain.Scope) bool {
	switch {
	case scope.All:
		return true
	case scope.OwnerID != nil:
		return lead.CorretorID != nil && *lead.CorretorID == *scope.OwnerID
	case scope.Email != nil:
		return lead.Email != nil && *lead.Email == *scope.Email
	default:
		return false
	}
}

// memDirectory is a fixed set of active broker ids.
type memDirectory struct {
	active map[uuid.UUID]bool
}

func (d *memDirectory) IsActiveCorretor(_ context.Context, id uuid.UUID) (bool, error) {
	return d.active[id], nil
}

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) byName(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]events.Event, 0)
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type leadTTL time.Duration

func (t leadTTL) GetLeadExpiryTTL() time.Duration { return time.Duration(t) }

func newTestService(ttl time.Duration, activeCorretores ...uuid.UUID) (*Service, *memStore, *memDirectory, *recordingBus) {
	store := newMemStore()
	directory := &memDirectory{active: make(map[uuid.UUID]bool)}
	for _, id := range activeCorretores {
		directory.active[id] = true
	}
	bus := &recordingBus{}
	svc := New(store, directory, bus, leadTTL(ttl), logger.New("development"))
	return svc, store, directory, bus
}

func adminActor() Actor {
	return Actor{ID: uuid.New(), Roles: []directorydomain.Role{directorydomain.RoleAdmin}}
}

func corretorActor(id uuid.UUID) Actor {
	return Actor{ID: id, Roles: []directorydomain.Role{directorydomain.RoleCorretor}}
}

func createPendingLead(t *testing.T, svc *Service) transport.LeadResponse {
	t.Helper()
	lead, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Nome:     "Maria",
		Telefone: "62999990000",
		Mensagem: "Quer apto",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return lead
}

func TestCreateLeadStartsPendingWithoutOwner(t *testing.T) {
	svc, _, _, bus := newTestService(0)

	lead := createPendingLead(t, svc)

	if lead.Status != string(domain.StatusPending) {
		t.Errorf("new lead status = %s, want PENDING", lead.Status)
	}
	if lead.Corretor != nil {
		t.Error("new lead must not have an owning corretor")
	}

	created := bus.byName(events.LeadCreatedName)
	if len(created) != 1 {
		t.Fatalf("expected exactly one LeadCreated event, got %d", len(created))
	}
	payload := created[0].(events.LeadCreated)
	if payload.Nome != "Maria" || payload.LeadID != lead.ID {
		t.Errorf("LeadCreated payload = %+v", payload)
	}
}

func TestCreateLeadRejectsMissingFields(t *testing.T) {
	svc, _, _, _ := newTestService(0)

	tests := []transport.CreateLeadRequest{
		{Telefone: "62999990000", Mensagem: "oi"},
		{Nome: "Maria", Mensagem: "oi"},
		{Nome: "Maria", Telefone: "62999990000"},
		{Nome: "   ", Telefone: "62999990000", Mensagem: "oi"},
	}

	for _, req := range tests {
		if _, err := svc.Create(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
			t.Errorf("Create(%+v) error = %v, want validation error", req, err)
		}
	}
}

func TestCreateLeadDefaultsOriginToSite(t *testing.T) {
	svc, _, _, _ := newTestService(0)

	lead := createPendingLead(t, svc)
	if lead.Origem != string(domain.OriginSite) {
		t.Errorf("default origem = %s, want SITE", lead.Origem)
	}
}

func TestConcurrentClaimsExactlyOneWins(t *testing.T) {
	const claimants = 16

	corretores := make([]uuid.UUID, claimants)
	for i := range corretores {
		corretores[i] = uuid.New()
	}

	svc, store, _, bus := newTestService(0, corretores...)
	lead := createPendingLead(t, svc)

	var wg sync.WaitGroup
	results := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Claim(context.Background(), lead.ID, corretores[i])
			results[i] = err
		}(i)
	}
	wg.Wait()

	winners := make([]uuid.UUID, 0, 1)
	for i, err := range results {
		switch {
		case err == nil:
			winners = append(winners, corretores[i])
		case apperr.Is(err, apperr.KindConflict):
			// race loser, expected
		default:
			t.Fatalf("claimant %d: unexpected error %v", i, err)
		}
	}

	if len(winners) != 1 {
		t.Fatalf("expected exactly one successful claim, got %d", len(winners))
	}

	stored, err := store.GetByID(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != string(domain.StatusAssigned) {
		t.Errorf("final status = %s, want ASSIGNED", stored.Status)
	}
	if stored.CorretorID == nil || *stored.CorretorID != winners[0] {
		t.Error("stored owner must equal the successful claimant")
	}

	if assigned := bus.byName(events.LeadAssignedName); len(assigned) != 1 {
		t.Errorf("expected exactly one LeadAssigned event, got %d", len(assigned))
	}
}

func TestClaimAfterAssignmentReturnsConflict(t *testing.T) {
	b1, b2 := uuid.New(), uuid.New()
	svc, store, _, _ := newTestService(0, b1, b2)
	lead := createPendingLead(t, svc)

	claimed, err := svc.Claim(context.Background(), lead.ID, b1)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if claimed.Status != string(domain.StatusAssigned) || claimed.Corretor == nil || claimed.Corretor.ID != b1 {
		t.Fatalf("first claim result = %+v", claimed)
	}

	if _, err := svc.Claim(context.Background(), lead.ID, b2); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second claim error = %v, want conflict", err)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.CorretorID == nil || *stored.CorretorID != b1 {
		t.Error("losing claim must not change the owner")
	}
}

func TestClaimUnknownLeadReturnsNotFound(t *testing.T) {
	b1 := uuid.New()
	svc, _, _, _ := newTestService(0, b1)

	if _, err := svc.Claim(context.Background(), uuid.New(), b1); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestClaimByInactiveCorretorIsForbidden(t *testing.T) {
	svc, store, _, _ := newTestService(0)
	lead := createPendingLead(t, svc)

	if _, err := svc.Claim(context.Background(), lead.ID, uuid.New()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("error = %v, want forbidden", err)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.Status != string(domain.StatusPending) {
		t.Error("a rejected claim must not change lead state")
	}
}

func TestWebhookNonClaimMessageIsAcknowledgedWithoutStateChange(t *testing.T) {
	b1 := uuid.New()
	svc, store, _, _ := newTestService(0, b1)
	lead := createPendingLead(t, svc)

	resp, err := svc.ClaimViaWebhook(context.Background(), transport.WebhookClaimRequest{
		LeadID:     lead.ID,
		CorretorID: b1,
		Mensagem:   "obrigado, vou pensar",
	})
	if err != nil {
		t.Fatalf("ClaimViaWebhook: %v", err)
	}
	if resp.Claimed {
		t.Error("informational message must not claim the lead")
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.Status != string(domain.StatusPending) || stored.CorretorID != nil {
		t.Error("informational message must not change lead state")
	}
}

func TestWebhookClaimThenReplay(t *testing.T) {
	b1 := uuid.New()
	svc, store, _, _ := newTestService(0, b1)
	lead := createPendingLead(t, svc)

	req := transport.WebhookClaimRequest{
		LeadID:     lead.ID,
		CorretorID: b1,
		Mensagem:   "quero ASSUMIR este lead",
	}

	resp, err := svc.ClaimViaWebhook(context.Background(), req)
	if err != nil {
		t.Fatalf("first webhook claim: %v", err)
	}
	if !resp.Claimed || resp.Lead == nil || resp.Lead.Status != string(domain.StatusAssigned) {
		t.Fatalf("first webhook claim response = %+v", resp)
	}

	// Identical replay loses against the first delivery.
	if _, err := svc.ClaimViaWebhook(context.Background(), req); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("replay error = %v, want conflict", err)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.CorretorID == nil || *stored.CorretorID != b1 {
		t.Error("replay must not change the owner")
	}
}

func TestUpdateStatusAuthorization(t *testing.T) {
	b1, b2 := uuid.New(), uuid.New()
	svc, _, _, _ := newTestService(0, b1, b2)
	lead := createPendingLead(t, svc)

	if _, err := svc.Claim(context.Background(), lead.ID, b1); err != nil {
		t.Fatalf("claim: %v", err)
	}

	converted := transport.UpdateStatusRequest{Status: string(domain.StatusConverted)}

	// Non-owner broker is rejected.
	if _, err := svc.UpdateStatus(context.Background(), lead.ID, converted, corretorActor(b2)); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("non-owner error = %v, want forbidden", err)
	}

	// Admin may edit any lead.
	updated, err := svc.UpdateStatus(context.Background(), lead.ID, converted, adminActor())
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Status != string(domain.StatusConverted) {
		t.Errorf("status = %s, want CONVERTED", updated.Status)
	}

	// Owning broker may also edit.
	if _, err := svc.UpdateStatus(context.Background(), lead.ID, transport.UpdateStatusRequest{Status: string(domain.StatusExpired)}, corretorActor(b1)); err != nil {
		t.Fatalf("owner update: %v", err)
	}
}

func TestUpdateStatusCannotFabricateAssignmentWithoutOwner(t *testing.T) {
	svc, _, _, _ := newTestService(0)
	lead := createPendingLead(t, svc)

	req := transport.UpdateStatusRequest{Status: string(domain.StatusAssigned)}
	if _, err := svc.UpdateStatus(context.Background(), lead.ID, req, adminActor()); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestUpdateStatusUnknownLead(t *testing.T) {
	svc, _, _, _ := newTestService(0)

	req := transport.UpdateStatusRequest{Status: string(domain.StatusConverted)}
	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), req, adminActor()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestListScopingPerRole(t *testing.T) {
	b1, b2 := uuid.New(), uuid.New()
	svc, _, _, _ := newTestService(0, b1, b2)

	mine := createPendingLead(t, svc)
	other := createPendingLead(t, svc)
	if _, err := svc.Claim(context.Background(), mine.ID, b1); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Claim(context.Background(), other.ID, b2); err != nil {
		t.Fatalf("claim: %v", err)
	}

	listed, err := svc.List(context.Background(), transport.ListLeadsQuery{}, corretorActor(b1))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, item := range listed.Items {
		if item.Corretor == nil || item.Corretor.ID != b1 {
			t.Errorf("corretor listing leaked lead %s owned by someone else", item.ID)
		}
	}
	if listed.Total != 1 {
		t.Errorf("corretor sees %d leads, want 1", listed.Total)
	}

	all, err := svc.List(context.Background(), transport.ListLeadsQuery{}, adminActor())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if all.Total != 2 {
		t.Errorf("admin sees %d leads, want 2", all.Total)
	}
}

func TestStatsConversionRate(t *testing.T) {
	b1 := uuid.New()
	svc, _, _, _ := newTestService(0, b1)

	// No leads at all: rate must be zero, not a division by zero.
	stats, err := svc.Stats(context.Background(), adminActor())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.TaxaConversao != 0 {
		t.Fatalf("empty stats = %+v, want zeros", stats)
	}

	first := createPendingLead(t, svc)
	createPendingLead(t, svc)
	if _, err := svc.Claim(context.Background(), first.ID, b1); err != nil {
		t.Fatalf("claim: %v", err)
	}
	req := transport.UpdateStatusRequest{Status: string(domain.StatusConverted)}
	if _, err := svc.UpdateStatus(context.Background(), first.ID, req, adminActor()); err != nil {
		t.Fatalf("update: %v", err)
	}

	stats, err = svc.Stats(context.Background(), adminActor())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Convertidos != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.TaxaConversao != 50 {
		t.Errorf("taxaConversao = %v, want 50", stats.TaxaConversao)
	}
}

func TestExpireStaleHonorsTTL(t *testing.T) {
	svc, store, _, _ := newTestService(time.Hour)
	lead := createPendingLead(t, svc)

	// Fresh lead is untouched.
	expired, err := svc.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if expired != 0 {
		t.Fatalf("expired %d fresh leads", expired)
	}

	// Age the lead past the TTL.
	store.mu.Lock()
	store.leads[lead.ID].CreatedAt = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	expired, err = svc.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}

	stored, _ := store.GetByID(context.Background(), lead.ID)
	if stored.Status != string(domain.StatusExpired) {
		t.Errorf("status = %s, want EXPIRED", stored.Status)
	}
}

func TestExpireStaleDisabledWhenTTLZero(t *testing.T) {
	svc, store, _, _ := newTestService(0)
	lead := createPendingLead(t, svc)

	store.mu.Lock()
	store.leads[lead.ID].CreatedAt = time.Now().Add(-100 * 24 * time.Hour)
	store.mu.Unlock()

	expired, err := svc.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("ExpireStale: %v", err)
	}
	if expired != 0 {
		t.Error("expiry must be disabled when the TTL is zero")
	}
}
