package domain

import "strings"

// claimKeywords are the tokens a broker reply must contain for the automation
// callback to be treated as a claim attempt. Anything else is an
// informational message and must not change lead state.
var claimKeywords = []string{"assumir", "assumo"}

// IsClaimMessage reports whether a raw broker reply is a claim attempt.
// Matching is case-insensitive containment, so "quero ASSUMIR este lead"
// qualifies.
func IsClaimMessage(raw string) bool {
	lowered := strings.ToLower(raw)
	for _, keyword := range claimKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
