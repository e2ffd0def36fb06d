package events

import "github.com/google/uuid"

// Event names for the leads bounded context.
const (
	LeadCreatedName  = "leads.created"
	LeadAssignedName = "leads.assigned"
)

// LeadCreated is raised after a lead is persisted with status PENDING.
// The notification module fans it out to the automation sink and, when
// enabled, to the admin email channel.
type LeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID
	Nome         string
	Telefone     string
	Mensagem     string
	ImovelTitulo *string
}

// EventName returns the unique event identifier.
func (e LeadCreated) EventName() string { return LeadCreatedName }

// LeadAssigned is raised when a broker wins the claim for a lead.
// Via distinguishes the authenticated REST path from the automation webhook.
type LeadAssigned struct {
	BaseEvent
	LeadID     uuid.UUID
	CorretorID uuid.UUID
	Via        string
}

// EventName returns the unique event identifier.
func (e LeadAssigned) EventName() string { return LeadAssignedName }
