// Package domain provides core business rules for the leads bounded context.
package domain

// Status is the lifecycle state of a lead. A lead holds exactly one status
// at any time.
type Status string

const (
	// StatusPending is the initial state: the lead has no owning broker yet.
	StatusPending Status = "PENDING"
	// StatusAssigned means a broker won the claim and owns the lead.
	StatusAssigned Status = "ASSIGNED"
	// StatusConverted means the owning broker closed the deal.
	StatusConverted Status = "CONVERTED"
	// StatusExpired means the lead sat in PENDING past the expiry TTL.
	StatusExpired Status = "EXPIRED"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusAssigned:  {},
	StatusConverted: {},
	StatusExpired:   {},
}

// IsKnownStatus reports whether the value is one of the closed status set.
func IsKnownStatus(status Status) bool {
	_, ok := knownStatuses[status]
	return ok
}

// statusRank orders statuses along the normal forward progression. EXPIRED
// and CONVERTED are both terminal for the unprivileged flow.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusAssigned:  1,
	StatusConverted: 2,
	StatusExpired:   2,
}

// IsBackwardMove reports whether an administrative status edit moves the
// lead backward in its lifecycle. Such edits are allowed for ADMIN and
// MARKETING but unusual enough to warrant a warning log.
func IsBackwardMove(from, to Status) bool {
	return statusRank[to] < statusRank[from]
}

// AdminEditableTargets are the statuses an authorized actor may set through
// the status-edit path. PENDING is deliberately absent: once a lead leaves
// PENDING it never returns.
var AdminEditableTargets = map[Status]struct{}{
	StatusAssigned:  {},
	StatusConverted: {},
	StatusExpired:   {},
}

// IsEditableTarget reports whether the status may be set via UpdateStatus.
func IsEditableTarget(status Status) bool {
	_, ok := AdminEditableTargets[status]
	return ok
}
