package domain

// Origin tags where a lead came from.
type Origin string

const (
	OriginSite      Origin = "SITE"
	OriginWhatsApp  Origin = "WHATSAPP"
	OriginManual    Origin = "MANUAL"
	OriginAutomacao Origin = "AUTOMACAO"
)

var knownOrigins = map[Origin]struct{}{
	OriginSite:      {},
	OriginWhatsApp:  {},
	OriginManual:    {},
	OriginAutomacao: {},
}

// IsKnownOrigin reports whether the value is one of the closed origin set.
func IsKnownOrigin(origin Origin) bool {
	_, ok := knownOrigins[origin]
	return ok
}
