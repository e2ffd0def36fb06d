package domain

import "testing"

func TestIsBackwardMove(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusAssigned, false},
		{StatusAssigned, StatusConverted, false},
		{StatusPending, StatusExpired, false},
		{StatusConverted, StatusAssigned, true},
		{StatusExpired, StatusAssigned, true},
		{StatusAssigned, StatusAssigned, false},
		{StatusConverted, StatusExpired, false},
	}

	for _, tc := range tests {
		if got := IsBackwardMove(tc.from, tc.to); got != tc.want {
			t.Errorf("IsBackwardMove(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsEditableTargetExcludesPending(t *testing.T) {
	if IsEditableTarget(StatusPending) {
		t.Fatal("PENDING must not be reachable through the status-edit path")
	}

	for _, status := range []Status{StatusAssigned, StatusConverted, StatusExpired} {
		if !IsEditableTarget(status) {
			t.Errorf("expected %s to be an editable target", status)
		}
	}
}

func TestIsKnownStatus(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusAssigned, StatusConverted, StatusExpired} {
		if !IsKnownStatus(status) {
			t.Errorf("expected %s to be known", status)
		}
	}

	if IsKnownStatus(Status("NOVO")) {
		t.Error("unknown status value should not be accepted")
	}
}
