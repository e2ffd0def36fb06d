package repository

import (
	"strings"
	"testing"
)

// The at-most-one-assignment guarantee rests entirely on the claim being a
// single conditional UPDATE. These tests guard the query shape so a refactor
// cannot silently turn it into a read-then-write.

func TestClaimQueryIsConditionalOnPendingStatus(t *testing.T) {
	query := strings.ToLower(claimLeadQuery)

	requiredFragments := []string{
		"update leads",
		"set status = 'assigned'",
		"corretor_id = $2",
		"where id = $1 and status = 'pending'",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected claim query fragment %q to be present", fragment)
		}
	}
}

func TestClaimQuerySetsOwnerAndStatusInOneStatement(t *testing.T) {
	query := strings.ToLower(claimLeadQuery)

	if strings.Contains(query, "select") {
		t.Fatal("claim must not read before writing; the conditional update is the whole check")
	}
	if !strings.Contains(query, "corretor_id") || !strings.Contains(query, "status") {
		t.Fatal("claim must set owner and status atomically in the same statement")
	}
}

func TestExpireQueryOnlyTouchesStalePendingLeads(t *testing.T) {
	query := strings.ToLower(expireStaleQuery)

	requiredFragments := []string{
		"set status = 'expired'",
		"where status = 'pending'",
		"created_at < $1",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected expiry query fragment %q to be present", fragment)
		}
	}
}
