package ports

import (
	"context"
	"time"

	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	"magnolia/internal/shared/directory"
)

type MatchRepository interface {
	GetMatch(ctx context.Context, matchID string) (entities.Match, error)
	GetMatchByCode(ctx context.Context, campaignCode string) (entities.Match, error)
	ListMatchesByOffer(ctx context.Context, offerID string) ([]entities.Match, error)
	ListMatchesByCreator(ctx context.Context, creatorID string) ([]entities.Match, error)
	// TransitionStatus is a compare-and-swap on the status column; it reports
	// whether this caller performed the transition.
	TransitionStatus(
		ctx context.Context,
		matchID string,
		from entities.MatchStatus,
		to entities.MatchStatus,
		at time.Time,
	) (bool, error)
	// SetCampaignCode fails with ErrCampaignCodeTaken when the code is
	// already held by another match.
	SetCampaignCode(ctx context.Context, matchID string, code string, at time.Time) error
}

type SubmitDeliverableParams struct {
	MatchID              string
	Permalink            string
	Note                 string
	UsageRightsGrantedAt *time.Time
	SubmittedAt          time.Time
}

type DeliverableRepository interface {
	GetDeliverable(ctx context.Context, matchID string) (entities.Deliverable, error)
	// CreateIfAbsent inserts the deliverable unless one already exists for
	// the match; it reports whether a row was written.
	CreateIfAbsent(ctx context.Context, deliverable entities.Deliverable) (bool, error)
	// SubmitIfOpen is the submission compare-and-swap: it succeeds for an
	// unsubmitted due deliverable or one parked in repost_required, and
	// reports false once another submission has landed.
	SubmitIfOpen(ctx context.Context, params SubmitDeliverableParams) (bool, error)
	Verify(ctx context.Context, matchID string, permalink string, reviewer string, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, matchID string, reason string, at time.Time) (bool, error)
	RequireRepost(ctx context.Context, matchID string, reason string, at time.Time) (bool, error)
	UpdateDueAt(ctx context.Context, matchID string, dueAt time.Time, at time.Time) error
	ListSubmittedOpen(ctx context.Context, limit int) ([]entities.Deliverable, error)
	ListOverdueUnsubmitted(ctx context.Context, before time.Time, limit int) ([]entities.Deliverable, error)
}

// FulfillmentReport mirrors the per-sub-step outcome of the order
// fulfillment runner. Approval surfaces it verbatim to the brand.
type FulfillmentReport struct {
	DiscountCreated bool
	DiscountSkipped bool
	OrderCreated    bool
	OrderSkipped    bool
	ManualShipment  bool
	Errors          []string
}

// FulfillmentRunner is the single code path for discount and order
// side effects, shared between approval and the reconciliation cron.
type FulfillmentRunner interface {
	Run(ctx context.Context, matchID string) (FulfillmentReport, error)
}

// Notifier enqueues a creator-facing message. Callers swallow errors: a
// missed notification never aborts the transition that triggered it.
type Notifier interface {
	Enqueue(ctx context.Context, channel string, to string, messageType string, payload map[string]any) error
}

// PostChecker resolves whether a submitted permalink still serves content.
type PostChecker interface {
	IsLive(ctx context.Context, permalink string) (bool, error)
}

type DirectoryReader interface {
	GetOffer(ctx context.Context, offerID string) (directory.Offer, error)
	GetCreator(ctx context.Context, creatorID string) (directory.Creator, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// CodeGenerator mints candidate campaign codes; uniqueness is enforced by
// the repository, callers retry on ErrCampaignCodeTaken.
type CodeGenerator interface {
	NewCode(ctx context.Context) (string, error)
}
