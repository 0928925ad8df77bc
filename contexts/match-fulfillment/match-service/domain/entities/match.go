package entities

import (
	"strings"
	"time"
)

type MatchStatus string

const (
	MatchStatusPendingApproval MatchStatus = "pending_approval"
	MatchStatusAccepted        MatchStatus = "accepted"
	MatchStatusRevoked         MatchStatus = "revoked"
	MatchStatusCanceled        MatchStatus = "canceled"
	MatchStatusClaimed         MatchStatus = "claimed"
)

// Match is a creator's claim on a brand offer. Rows are never deleted; the
// status advances through brand approval or revocation only.
type Match struct {
	MatchID      string
	OfferID      string
	BrandID      string
	CreatorID    string
	Status       MatchStatus
	CampaignCode string
	AcceptedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m Match) IsAccepted() bool {
	return m.Status == MatchStatusAccepted || m.Status == MatchStatusClaimed
}

// Approvable reports whether the brand can still act on the claim.
func (m Match) Approvable() bool {
	return m.Status == MatchStatusPendingApproval || m.IsAccepted()
}

// ShareURLPath is the creator-facing redirect path for the campaign code.
func (m Match) ShareURLPath() string {
	code := strings.TrimSpace(m.CampaignCode)
	if code == "" {
		return ""
	}
	return "/r/" + code
}

// DeliverableDueAt computes the content deadline: the offer's posting window
// plus a fixed shipping allowance.
func DeliverableDueAt(from time.Time, deadlineDays int) time.Time {
	return from.UTC().Add(time.Duration(deadlineDays+14) * 24 * time.Hour)
}
