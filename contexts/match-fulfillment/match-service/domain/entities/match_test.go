package entities

import (
	"testing"
	"time"
)

func TestApprovable(t *testing.T) {
	cases := []struct {
		status MatchStatus
		want   bool
	}{
		{MatchStatusPendingApproval, true},
		{MatchStatusAccepted, true},
		{MatchStatusClaimed, true},
		{MatchStatusRevoked, false},
		{MatchStatusCanceled, false},
	}
	for _, tc := range cases {
		if got := (Match{Status: tc.status}).Approvable(); got != tc.want {
			t.Fatalf("Approvable() for %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestShareURLPath(t *testing.T) {
	if got := (Match{CampaignCode: "NADIA10"}).ShareURLPath(); got != "/r/NADIA10" {
		t.Fatalf("share path %q", got)
	}
	if got := (Match{}).ShareURLPath(); got != "" {
		t.Fatalf("share path without code must be empty, got %q", got)
	}
}

func TestDeliverableDueAtAddsShippingAllowance(t *testing.T) {
	from := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	got := DeliverableDueAt(from, 7)
	if want := from.Add(21 * 24 * time.Hour); !got.Equal(want) {
		t.Fatalf("due at %v, want %v", got, want)
	}
}
