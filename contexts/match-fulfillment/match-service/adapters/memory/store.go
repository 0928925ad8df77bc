package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"
)

// Store is the in-memory adapter backing module tests. It mirrors the
// postgres adapter's compare-and-swap semantics under a mutex.
type Store struct {
	mu sync.Mutex

	matches      map[string]entities.Match
	deliverables map[string]entities.Deliverable
	codes        map[string]string

	codeSeq int
	now     time.Time
}

func NewStore(seed []entities.Match) *Store {
	matches := make(map[string]entities.Match, len(seed))
	codes := make(map[string]string)
	for _, item := range seed {
		matches[item.MatchID] = item
		if strings.TrimSpace(item.CampaignCode) != "" {
			codes[item.CampaignCode] = item.MatchID
		}
	}
	return &Store{
		matches:      matches,
		deliverables: make(map[string]entities.Deliverable),
		codes:        codes,
		now:          time.Now().UTC(),
	}
}

// SetNow pins the clock for deterministic tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codeSeq++
	return fmt.Sprintf("id-%04d", s.codeSeq), nil
}

func (s *Store) NewCode(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codeSeq++
	return fmt.Sprintf("CODE%04d", s.codeSeq), nil
}

func (s *Store) GetMatch(_ context.Context, matchID string) (entities.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.matches[strings.TrimSpace(matchID)]
	if !exists {
		return entities.Match{}, domainerrors.ErrMatchNotFound
	}
	return item, nil
}

func (s *Store) GetMatchByCode(_ context.Context, campaignCode string) (entities.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matchID, exists := s.codes[strings.TrimSpace(campaignCode)]
	if !exists {
		return entities.Match{}, domainerrors.ErrMatchNotFound
	}
	return s.matches[matchID], nil
}

func (s *Store) ListMatchesByOffer(_ context.Context, offerID string) ([]entities.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Match, 0)
	for _, item := range s.matches {
		if item.OfferID == strings.TrimSpace(offerID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) ListMatchesByCreator(_ context.Context, creatorID string) ([]entities.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Match, 0)
	for _, item := range s.matches {
		if item.CreatorID == strings.TrimSpace(creatorID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	matchID string,
	from entities.MatchStatus,
	to entities.MatchStatus,
	at time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.matches[strings.TrimSpace(matchID)]
	if !exists || item.Status != from {
		return false, nil
	}
	item.Status = to
	item.UpdatedAt = at.UTC()
	if to == entities.MatchStatusAccepted {
		acceptedAt := at.UTC()
		item.AcceptedAt = &acceptedAt
	}
	s.matches[item.MatchID] = item
	return true, nil
}

func (s *Store) SetCampaignCode(_ context.Context, matchID string, code string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = strings.TrimSpace(code)
	if holder, exists := s.codes[code]; exists && holder != strings.TrimSpace(matchID) {
		return domainerrors.ErrCampaignCodeTaken
	}
	item, exists := s.matches[strings.TrimSpace(matchID)]
	if !exists || strings.TrimSpace(item.CampaignCode) != "" {
		return domainerrors.ErrMatchNotFound
	}
	item.CampaignCode = code
	item.UpdatedAt = at.UTC()
	s.matches[item.MatchID] = item
	s.codes[code] = item.MatchID
	return nil
}

func (s *Store) GetDeliverable(_ context.Context, matchID string) (entities.Deliverable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.deliverables[strings.TrimSpace(matchID)]
	if !exists {
		return entities.Deliverable{}, domainerrors.ErrDeliverableNotFound
	}
	return item, nil
}

func (s *Store) CreateIfAbsent(_ context.Context, deliverable entities.Deliverable) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.deliverables[deliverable.MatchID]; exists {
		return false, nil
	}
	s.deliverables[deliverable.MatchID] = deliverable
	return true, nil
}

func (s *Store) SubmitIfOpen(_ context.Context, params ports.SubmitDeliverableParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.deliverables[strings.TrimSpace(params.MatchID)]
	if !exists {
		return false, nil
	}
	open := (item.Status == entities.DeliverableStatusDue && item.SubmittedAt == nil) ||
		item.Status == entities.DeliverableStatusRepostRequired
	if !open {
		return false, nil
	}
	submittedAt := params.SubmittedAt.UTC()
	item.Status = entities.DeliverableStatusDue
	item.SubmittedPermalink = strings.TrimSpace(params.Permalink)
	item.SubmittedNote = strings.TrimSpace(params.Note)
	item.SubmittedAt = &submittedAt
	if params.UsageRightsGrantedAt != nil {
		granted := params.UsageRightsGrantedAt.UTC()
		item.UsageRightsGrantedAt = &granted
	}
	item.UpdatedAt = submittedAt
	s.deliverables[item.MatchID] = item
	return true, nil
}

func (s *Store) Verify(_ context.Context, matchID string, permalink string, reviewer string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.deliverables[strings.TrimSpace(matchID)]
	if !exists || item.Status != entities.DeliverableStatusDue {
		return false, nil
	}
	verifiedAt := at.UTC()
	item.Status = entities.DeliverableStatusVerified
	item.VerifiedPermalink = strings.TrimSpace(permalink)
	item.VerifiedAt = &verifiedAt
	item.VerifiedBy = strings.TrimSpace(reviewer)
	item.FailureReason = ""
	item.UpdatedAt = verifiedAt
	s.deliverables[item.MatchID] = item
	return true, nil
}

func (s *Store) MarkFailed(_ context.Context, matchID string, reason string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.deliverables[strings.TrimSpace(matchID)]
	if !exists || item.Status != entities.DeliverableStatusDue {
		return false, nil
	}
	item.Status = entities.DeliverableStatusFailed
	item.FailureReason = strings.TrimSpace(reason)
	item.UpdatedAt = at.UTC()
	s.deliverables[item.MatchID] = item
	return true, nil
}

func (s *Store) RequireRepost(_ context.Context, matchID string, reason string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.deliverables[strings.TrimSpace(matchID)]
	if !exists || item.SubmittedAt == nil {
		return false, nil
	}
	if item.Status != entities.DeliverableStatusDue && item.Status != entities.DeliverableStatusFailed {
		return false, nil
	}
	item.Status = entities.DeliverableStatusRepostRequired
	item.FailureReason = strings.TrimSpace(reason)
	item.UpdatedAt = at.UTC()
	s.deliverables[item.MatchID] = item
	return true, nil
}

func (s *Store) UpdateDueAt(_ context.Context, matchID string, dueAt time.Time, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.deliverables[strings.TrimSpace(matchID)]
	if !exists || item.Terminal() {
		return domainerrors.ErrDeliverableNotFound
	}
	item.DueAt = dueAt.UTC()
	item.UpdatedAt = at.UTC()
	s.deliverables[item.MatchID] = item
	return nil
}

func (s *Store) ListSubmittedOpen(_ context.Context, limit int) ([]entities.Deliverable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Deliverable, 0)
	for _, item := range s.deliverables {
		if item.Status == entities.DeliverableStatusDue && item.SubmittedAt != nil {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].SubmittedAt.Before(*items[j].SubmittedAt)
	})
	return capDeliverables(items, limit), nil
}

func (s *Store) ListOverdueUnsubmitted(_ context.Context, before time.Time, limit int) ([]entities.Deliverable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Deliverable, 0)
	for _, item := range s.deliverables {
		if item.Status == entities.DeliverableStatusDue && item.SubmittedAt == nil && item.DueAt.Before(before.UTC()) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DueAt.Before(items[j].DueAt)
	})
	return capDeliverables(items, limit), nil
}

func capDeliverables(items []entities.Deliverable, limit int) []entities.Deliverable {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
