package entities

import (
	"strings"
	"time"
)

type DeliverableStatus string

const (
	DeliverableStatusDue            DeliverableStatus = "due"
	DeliverableStatusVerified       DeliverableStatus = "verified"
	DeliverableStatusFailed         DeliverableStatus = "failed"
	DeliverableStatusRepostRequired DeliverableStatus = "repost_required"
)

// Deliverable is the content obligation tied 1:1 to a match. verified and
// failed are terminal; failed may be reopened through repost_required.
type Deliverable struct {
	MatchID              string
	Status               DeliverableStatus
	ExpectedType         string
	DueAt                time.Time
	SubmittedPermalink   string
	SubmittedNote        string
	SubmittedAt          *time.Time
	UsageRightsGrantedAt *time.Time
	VerifiedPermalink    string
	VerifiedAt           *time.Time
	VerifiedBy           string
	FailureReason        string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (d Deliverable) Terminal() bool {
	return d.Status == DeliverableStatusVerified || d.Status == DeliverableStatusFailed
}

func (d Deliverable) Submitted() bool {
	return d.SubmittedAt != nil && strings.TrimSpace(d.SubmittedPermalink) != ""
}

// VerifiableWith reports whether verification can proceed with the given
// permalink under the offer's usage-rights requirement.
func (d Deliverable) VerifiableWith(permalink string, requiresUsageRights bool) bool {
	if d.Status != DeliverableStatusDue {
		return false
	}
	if strings.TrimSpace(permalink) == "" {
		return false
	}
	if requiresUsageRights && d.UsageRightsGrantedAt == nil {
		return false
	}
	return true
}
