package unit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	matchservice "magnolia/contexts/match-fulfillment/match-service"
	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	matchports "magnolia/contexts/match-fulfillment/match-service/ports"
	httptransport "magnolia/contexts/match-fulfillment/match-service/transport/http"
	platformdirectory "magnolia/internal/platform/directory"
	"magnolia/internal/shared/directory"
)

type fakeFulfillmentRunner struct {
	mu     sync.Mutex
	calls  int
	report matchports.FulfillmentReport
}

func (r *fakeFulfillmentRunner) Run(_ context.Context, _ string) (matchports.FulfillmentReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.report, nil
}

func (r *fakeFulfillmentRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type stubPostChecker struct {
	live bool
	err  error
}

func (c stubPostChecker) IsLive(_ context.Context, _ string) (bool, error) {
	return c.live, c.err
}

func seedDirectory(offer directory.Offer) *platformdirectory.MemoryStore {
	store := platformdirectory.NewMemoryStore()
	store.SeedOffer(offer)
	store.SeedCreator(directory.Creator{
		CreatorID: "creator-1",
		Name:      "Nadia",
		Email:     "nadia@example.com",
	})
	return store
}

func pendingMatch() []entities.Match {
	created := time.Date(2024, 4, 20, 9, 0, 0, 0, time.UTC)
	return []entities.Match{{
		MatchID:   "match-1",
		OfferID:   "offer-1",
		BrandID:   "brand-1",
		CreatorID: "creator-1",
		Status:    entities.MatchStatusPendingApproval,
		CreatedAt: created,
		UpdatedAt: created,
	}}
}

func newMatchModule(runner *fakeFulfillmentRunner, notifier *recordingNotifier, posts matchports.PostChecker) matchservice.Module {
	return matchservice.NewInMemoryModule(pendingMatch(), matchservice.Dependencies{
		Directory: seedDirectory(directory.Offer{
			OfferID:      "offer-1",
			BrandID:      "brand-1",
			Title:        "Spring Seeding",
			DeadlineDays: 7,
		}),
		Fulfillment:     runner,
		Notifier:        notifier,
		Posts:           posts,
		EnabledChannels: []string{"email"},
	})
}

func TestApproveMatchAcceptsAndProvisions(t *testing.T) {
	ctx := context.Background()
	runner := &fakeFulfillmentRunner{report: matchports.FulfillmentReport{DiscountCreated: true, OrderCreated: true}}
	notifier := &recordingNotifier{}
	module := newMatchModule(runner, notifier, stubPostChecker{live: true})
	approvedAt := module.Store.Now()

	resp, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1")
	if err != nil {
		t.Fatalf("approve match: %v", err)
	}
	if !resp.OK || resp.Match.Status != string(entities.MatchStatusAccepted) {
		t.Fatalf("unexpected approval response: %+v", resp)
	}
	if resp.Match.CampaignCode == "" {
		t.Fatalf("expected campaign code to be assigned")
	}
	if resp.Match.ShareURLPath != "/r/"+resp.Match.CampaignCode {
		t.Fatalf("unexpected share url path %q", resp.Match.ShareURLPath)
	}
	if !resp.Match.DiscountCreated || !resp.Match.OrderCreated {
		t.Fatalf("expected fulfillment side effects in response: %+v", resp.Match)
	}

	deliverable, err := module.Store.GetDeliverable(ctx, "match-1")
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	wantDue := entities.DeliverableDueAt(approvedAt, 7)
	if !deliverable.DueAt.Equal(wantDue) {
		t.Fatalf("deliverable due at %v, want %v", deliverable.DueAt, wantDue)
	}
	if notifier.CountOfType("match_approved") != 1 {
		t.Fatalf("expected one match_approved notification, got %d", notifier.CountOfType("match_approved"))
	}
}

func TestApproveMatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	runner := &fakeFulfillmentRunner{}
	notifier := &recordingNotifier{}
	module := newMatchModule(runner, notifier, stubPostChecker{live: true})

	first, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1")
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	second, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1")
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if second.Match.CampaignCode != first.Match.CampaignCode {
		t.Fatalf("campaign code changed on re-approval: %q vs %q", second.Match.CampaignCode, first.Match.CampaignCode)
	}
	if runner.Calls() != 2 {
		t.Fatalf("fulfillment should run on every approval, got %d calls", runner.Calls())
	}
	if notifier.CountOfType("match_approved") != 1 {
		t.Fatalf("re-approval must not re-notify, got %d messages", notifier.CountOfType("match_approved"))
	}
}

func TestApproveMatchRejectsForeignBrand(t *testing.T) {
	module := newMatchModule(&fakeFulfillmentRunner{}, &recordingNotifier{}, stubPostChecker{live: true})

	_, err := module.Handler.ApproveMatchHandler(context.Background(), "brand-2", "match-1")
	if !errors.Is(err, domainerrors.ErrNotOfferOwner) {
		t.Fatalf("expected ErrNotOfferOwner, got %v", err)
	}
}

func TestApproveRevokedMatchFails(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	module := newMatchModule(&fakeFulfillmentRunner{}, notifier, stubPostChecker{live: true})

	if err := module.Handler.RevokeMatchHandler(ctx, "brand-1", "match-1", httptransport.RevokeMatchRequest{Reason: "out of stock"}); err != nil {
		t.Fatalf("revoke match: %v", err)
	}
	_, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1")
	if !errors.Is(err, domainerrors.ErrMatchNotApprovable) {
		t.Fatalf("expected ErrMatchNotApprovable, got %v", err)
	}
	if notifier.CountOfType("match_revoked") != 1 {
		t.Fatalf("expected one match_revoked notification, got %d", notifier.CountOfType("match_revoked"))
	}
}

func TestSubmitDeliverableSecondSubmissionConflicts(t *testing.T) {
	ctx := context.Background()
	module := newMatchModule(&fakeFulfillmentRunner{}, &recordingNotifier{}, stubPostChecker{live: true})
	if _, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1"); err != nil {
		t.Fatalf("approve match: %v", err)
	}

	req := httptransport.SubmitDeliverableRequest{Permalink: "https://instagram.com/p/abc123"}
	if err := module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1", req); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	err := module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1", req)
	if !errors.Is(err, domainerrors.ErrSubmissionConflict) {
		t.Fatalf("expected ErrSubmissionConflict, got %v", err)
	}
}

func TestSubmitDeliverableValidatesPermalink(t *testing.T) {
	ctx := context.Background()
	module := newMatchModule(&fakeFulfillmentRunner{}, &recordingNotifier{}, stubPostChecker{live: true})
	if _, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1"); err != nil {
		t.Fatalf("approve match: %v", err)
	}

	err := module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1",
		httptransport.SubmitDeliverableRequest{Permalink: "not-a-url"})
	if !errors.Is(err, domainerrors.ErrInvalidPermalink) {
		t.Fatalf("expected ErrInvalidPermalink, got %v", err)
	}
}

func TestSubmitDeliverableEnforcesUsageRights(t *testing.T) {
	ctx := context.Background()
	module := matchservice.NewInMemoryModule(pendingMatch(), matchservice.Dependencies{
		Directory: seedDirectory(directory.Offer{
			OfferID:             "offer-1",
			BrandID:             "brand-1",
			Title:               "Rights Required",
			DeadlineDays:        7,
			RequiresUsageRights: true,
		}),
		Fulfillment:     &fakeFulfillmentRunner{},
		Notifier:        &recordingNotifier{},
		EnabledChannels: []string{"email"},
	})
	if _, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1"); err != nil {
		t.Fatalf("approve match: %v", err)
	}

	err := module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1",
		httptransport.SubmitDeliverableRequest{Permalink: "https://instagram.com/p/abc123"})
	if !errors.Is(err, domainerrors.ErrUsageRightsRequired) {
		t.Fatalf("expected ErrUsageRightsRequired, got %v", err)
	}

	err = module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1",
		httptransport.SubmitDeliverableRequest{Permalink: "https://instagram.com/p/abc123", GrantUsageRights: true})
	if err != nil {
		t.Fatalf("submission with rights grant: %v", err)
	}
	deliverable, err := module.Store.GetDeliverable(ctx, "match-1")
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if deliverable.UsageRightsGrantedAt == nil {
		t.Fatalf("expected usage rights grant to be stamped")
	}
}

func TestVerifyDeliverableIsTerminal(t *testing.T) {
	ctx := context.Background()
	module := newMatchModule(&fakeFulfillmentRunner{}, &recordingNotifier{}, stubPostChecker{live: true})
	if _, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1"); err != nil {
		t.Fatalf("approve match: %v", err)
	}
	if err := module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1",
		httptransport.SubmitDeliverableRequest{Permalink: "https://instagram.com/p/abc123"}); err != nil {
		t.Fatalf("submit deliverable: %v", err)
	}
	if err := module.Handler.VerifyDeliverableHandler(ctx, "brand-1", "match-1",
		httptransport.VerifyDeliverableRequest{Permalink: "https://instagram.com/p/abc123"}); err != nil {
		t.Fatalf("verify deliverable: %v", err)
	}

	deliverable, err := module.Store.GetDeliverable(ctx, "match-1")
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if deliverable.Status != entities.DeliverableStatusVerified {
		t.Fatalf("deliverable status %q, want verified", deliverable.Status)
	}

	err = module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1",
		httptransport.SubmitDeliverableRequest{Permalink: "https://instagram.com/p/other"})
	if !errors.Is(err, domainerrors.ErrDeliverableNotDue) {
		t.Fatalf("expected ErrDeliverableNotDue after verification, got %v", err)
	}
}

func TestVerifierRequiresRepostWhenPostDisappears(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	module := newMatchModule(&fakeFulfillmentRunner{}, notifier, stubPostChecker{live: false})
	if _, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1"); err != nil {
		t.Fatalf("approve match: %v", err)
	}
	if err := module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1",
		httptransport.SubmitDeliverableRequest{Permalink: "https://instagram.com/p/abc123"}); err != nil {
		t.Fatalf("submit deliverable: %v", err)
	}

	report, err := module.Verifier.RunOnce(ctx)
	if err != nil {
		t.Fatalf("verifier run: %v", err)
	}
	if report.Checked != 1 || report.RepostRequired != 1 {
		t.Fatalf("unexpected verifier report: %+v", report)
	}
	deliverable, err := module.Store.GetDeliverable(ctx, "match-1")
	if err != nil {
		t.Fatalf("get deliverable: %v", err)
	}
	if deliverable.Status != entities.DeliverableStatusRepostRequired {
		t.Fatalf("deliverable status %q, want repost_required", deliverable.Status)
	}
	if notifier.CountOfType("repost_required") != 1 {
		t.Fatalf("expected one repost_required notification, got %d", notifier.CountOfType("repost_required"))
	}

	// The reopened deliverable accepts a fresh submission.
	if err := module.Handler.SubmitDeliverableHandler(ctx, "creator-1", "match-1",
		httptransport.SubmitDeliverableRequest{Permalink: "https://instagram.com/p/reposted"}); err != nil {
		t.Fatalf("resubmission after repost: %v", err)
	}
}

func TestVerifierRemindsOverdueUnsubmitted(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	module := newMatchModule(&fakeFulfillmentRunner{}, notifier, stubPostChecker{live: true})
	if _, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1"); err != nil {
		t.Fatalf("approve match: %v", err)
	}

	module.Store.SetNow(module.Store.Now().Add(22 * 24 * time.Hour))
	report, err := module.Verifier.RunOnce(ctx)
	if err != nil {
		t.Fatalf("verifier run: %v", err)
	}
	if report.Reminders != 1 {
		t.Fatalf("expected one overdue reminder, got %d", report.Reminders)
	}
	if notifier.CountOfType("deliverable_overdue") != 1 {
		t.Fatalf("expected one deliverable_overdue notification, got %d", notifier.CountOfType("deliverable_overdue"))
	}
}

type scriptedCodeGenerator struct {
	mu    sync.Mutex
	codes []string
	calls int
}

// NewCode pops the next scripted code; the last one repeats forever.
func (g *scriptedCodeGenerator) NewCode(_ context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

func (g *scriptedCodeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func matchHoldingCode(code string) entities.Match {
	created := time.Date(2024, 4, 18, 9, 0, 0, 0, time.UTC)
	return entities.Match{
		MatchID:      "match-2",
		OfferID:      "offer-1",
		BrandID:      "brand-1",
		CreatorID:    "creator-2",
		Status:       entities.MatchStatusAccepted,
		CampaignCode: code,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestApproveMatchRetriesCollidingCampaignCodes(t *testing.T) {
	ctx := context.Background()
	codes := &scriptedCodeGenerator{codes: []string{"TAKEN123", "FRESH456"}}
	seed := append(pendingMatch(), matchHoldingCode("TAKEN123"))
	module := matchservice.NewInMemoryModule(seed, matchservice.Dependencies{
		Directory: seedDirectory(directory.Offer{
			OfferID:      "offer-1",
			BrandID:      "brand-1",
			Title:        "Spring Seeding",
			DeadlineDays: 7,
		}),
		Codes:           codes,
		EnabledChannels: []string{"email"},
	})

	resp, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1")
	if err != nil {
		t.Fatalf("approve match: %v", err)
	}
	if resp.Match.CampaignCode != "FRESH456" {
		t.Fatalf("campaign code %q, want the post-collision candidate FRESH456", resp.Match.CampaignCode)
	}
	if codes.Calls() != 2 {
		t.Fatalf("expected one retry after the collision, generator called %d times", codes.Calls())
	}

	match, err := module.Store.GetMatchByCode(ctx, "FRESH456")
	if err != nil || match.MatchID != "match-1" {
		t.Fatalf("code lookup after retry: match %+v, err %v", match, err)
	}
}

func TestApproveMatchGivesUpWhenEveryCodeCollides(t *testing.T) {
	ctx := context.Background()
	codes := &scriptedCodeGenerator{codes: []string{"TAKEN123"}}
	seed := append(pendingMatch(), matchHoldingCode("TAKEN123"))
	module := matchservice.NewInMemoryModule(seed, matchservice.Dependencies{
		Directory: seedDirectory(directory.Offer{
			OfferID:      "offer-1",
			BrandID:      "brand-1",
			Title:        "Spring Seeding",
			DeadlineDays: 7,
		}),
		Codes:           codes,
		EnabledChannels: []string{"email"},
	})

	_, err := module.Handler.ApproveMatchHandler(ctx, "brand-1", "match-1")
	if !errors.Is(err, domainerrors.ErrCampaignCodeTaken) {
		t.Fatalf("expected ErrCampaignCodeTaken after exhausted retries, got %v", err)
	}
	if codes.Calls() != 5 {
		t.Fatalf("expected five attempts before giving up, generator called %d times", codes.Calls())
	}
}
