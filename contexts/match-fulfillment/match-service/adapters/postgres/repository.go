package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"magnolia/contexts/match-fulfillment/match-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/match-service/domain/errors"
	"magnolia/contexts/match-fulfillment/match-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) GetMatch(ctx context.Context, matchID string) (entities.Match, error) {
	var row matchModel
	err := r.db.WithContext(ctx).
		Where("match_id = ?", strings.TrimSpace(matchID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Match{}, domainerrors.ErrMatchNotFound
		}
		return entities.Match{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetMatchByCode(ctx context.Context, campaignCode string) (entities.Match, error) {
	var row matchModel
	err := r.db.WithContext(ctx).
		Where("campaign_code = ?", strings.TrimSpace(campaignCode)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Match{}, domainerrors.ErrMatchNotFound
		}
		return entities.Match{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListMatchesByOffer(ctx context.Context, offerID string) ([]entities.Match, error) {
	var rows []matchModel
	if err := r.db.WithContext(ctx).
		Where("offer_id = ?", strings.TrimSpace(offerID)).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Match, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListMatchesByCreator(ctx context.Context, creatorID string) ([]entities.Match, error) {
	var rows []matchModel
	if err := r.db.WithContext(ctx).
		Where("creator_id = ?", strings.TrimSpace(creatorID)).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Match, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) TransitionStatus(
	ctx context.Context,
	matchID string,
	from entities.MatchStatus,
	to entities.MatchStatus,
	at time.Time,
) (bool, error) {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": at.UTC(),
	}
	if to == entities.MatchStatusAccepted {
		updates["accepted_at"] = at.UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&matchModel{}).
		Where("match_id = ? AND status = ?", strings.TrimSpace(matchID), string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SetCampaignCode(ctx context.Context, matchID string, code string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&matchModel{}).
		Where("match_id = ? AND (campaign_code IS NULL OR campaign_code = '')", strings.TrimSpace(matchID)).
		Updates(map[string]any{
			"campaign_code": strings.TrimSpace(code),
			"updated_at":    at.UTC(),
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrCampaignCodeTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMatchNotFound
	}
	return nil
}

func (r *Repository) GetDeliverable(ctx context.Context, matchID string) (entities.Deliverable, error) {
	var row deliverableModel
	err := r.db.WithContext(ctx).
		Where("match_id = ?", strings.TrimSpace(matchID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Deliverable{}, domainerrors.ErrDeliverableNotFound
		}
		return entities.Deliverable{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateIfAbsent(ctx context.Context, deliverable entities.Deliverable) (bool, error) {
	row := deliverableModelFromEntity(deliverable)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SubmitIfOpen(ctx context.Context, params ports.SubmitDeliverableParams) (bool, error) {
	updates := map[string]any{
		"status":              string(entities.DeliverableStatusDue),
		"submitted_permalink": strings.TrimSpace(params.Permalink),
		"submitted_note":      strings.TrimSpace(params.Note),
		"submitted_at":        params.SubmittedAt.UTC(),
		"updated_at":          params.SubmittedAt.UTC(),
	}
	if params.UsageRightsGrantedAt != nil {
		granted := params.UsageRightsGrantedAt.UTC()
		updates["usage_rights_granted_at"] = granted
	}

	result := r.db.WithContext(ctx).
		Model(&deliverableModel{}).
		Where(
			"match_id = ? AND ((status = ? AND submitted_at IS NULL) OR status = ?)",
			strings.TrimSpace(params.MatchID),
			string(entities.DeliverableStatusDue),
			string(entities.DeliverableStatusRepostRequired),
		).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Verify(
	ctx context.Context,
	matchID string,
	permalink string,
	reviewer string,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&deliverableModel{}).
		Where("match_id = ? AND status = ?", strings.TrimSpace(matchID), string(entities.DeliverableStatusDue)).
		Updates(map[string]any{
			"status":             string(entities.DeliverableStatusVerified),
			"verified_permalink": strings.TrimSpace(permalink),
			"verified_at":        at.UTC(),
			"verified_by":        strings.TrimSpace(reviewer),
			"failure_reason":     "",
			"updated_at":         at.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) MarkFailed(ctx context.Context, matchID string, reason string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&deliverableModel{}).
		Where("match_id = ? AND status = ?", strings.TrimSpace(matchID), string(entities.DeliverableStatusDue)).
		Updates(map[string]any{
			"status":         string(entities.DeliverableStatusFailed),
			"failure_reason": strings.TrimSpace(reason),
			"updated_at":     at.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) RequireRepost(ctx context.Context, matchID string, reason string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&deliverableModel{}).
		Where(
			"match_id = ? AND status IN ? AND submitted_at IS NOT NULL",
			strings.TrimSpace(matchID),
			[]string{string(entities.DeliverableStatusDue), string(entities.DeliverableStatusFailed)},
		).
		Updates(map[string]any{
			"status":         string(entities.DeliverableStatusRepostRequired),
			"failure_reason": strings.TrimSpace(reason),
			"updated_at":     at.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) UpdateDueAt(ctx context.Context, matchID string, dueAt time.Time, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&deliverableModel{}).
		Where(
			"match_id = ? AND status NOT IN ?",
			strings.TrimSpace(matchID),
			[]string{string(entities.DeliverableStatusVerified), string(entities.DeliverableStatusFailed)},
		).
		Updates(map[string]any{
			"due_at":     dueAt.UTC(),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrDeliverableNotFound
	}
	return nil
}

func (r *Repository) ListSubmittedOpen(ctx context.Context, limit int) ([]entities.Deliverable, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []deliverableModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND submitted_at IS NOT NULL", string(entities.DeliverableStatusDue)).
		Order("submitted_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return deliverablesFromRows(rows), nil
}

func (r *Repository) ListOverdueUnsubmitted(ctx context.Context, before time.Time, limit int) ([]entities.Deliverable, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []deliverableModel
	if err := r.db.WithContext(ctx).
		Where(
			"status = ? AND submitted_at IS NULL AND due_at < ?",
			string(entities.DeliverableStatusDue),
			before.UTC(),
		).
		Order("due_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return deliverablesFromRows(rows), nil
}

func deliverablesFromRows(rows []deliverableModel) []entities.Deliverable {
	items := make([]entities.Deliverable, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type matchModel struct {
	MatchID      string     `gorm:"column:match_id;primaryKey"`
	OfferID      string     `gorm:"column:offer_id"`
	BrandID      string     `gorm:"column:brand_id"`
	CreatorID    string     `gorm:"column:creator_id"`
	Status       string     `gorm:"column:status"`
	CampaignCode string     `gorm:"column:campaign_code;uniqueIndex"`
	AcceptedAt   *time.Time `gorm:"column:accepted_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (matchModel) TableName() string {
	return "matches"
}

func (m matchModel) toEntity() entities.Match {
	return entities.Match{
		MatchID:      m.MatchID,
		OfferID:      m.OfferID,
		BrandID:      m.BrandID,
		CreatorID:    m.CreatorID,
		Status:       entities.MatchStatus(m.Status),
		CampaignCode: m.CampaignCode,
		AcceptedAt:   normalizeOptionalTime(m.AcceptedAt),
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type deliverableModel struct {
	MatchID              string     `gorm:"column:match_id;primaryKey"`
	Status               string     `gorm:"column:status"`
	ExpectedType         string     `gorm:"column:expected_type"`
	DueAt                time.Time  `gorm:"column:due_at"`
	SubmittedPermalink   string     `gorm:"column:submitted_permalink"`
	SubmittedNote        string     `gorm:"column:submitted_note"`
	SubmittedAt          *time.Time `gorm:"column:submitted_at"`
	UsageRightsGrantedAt *time.Time `gorm:"column:usage_rights_granted_at"`
	VerifiedPermalink    string     `gorm:"column:verified_permalink"`
	VerifiedAt           *time.Time `gorm:"column:verified_at"`
	VerifiedBy           string     `gorm:"column:verified_by"`
	FailureReason        string     `gorm:"column:failure_reason"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (deliverableModel) TableName() string {
	return "deliverables"
}

func deliverableModelFromEntity(item entities.Deliverable) deliverableModel {
	return deliverableModel{
		MatchID:              strings.TrimSpace(item.MatchID),
		Status:               string(item.Status),
		ExpectedType:         strings.TrimSpace(item.ExpectedType),
		DueAt:                item.DueAt.UTC(),
		SubmittedPermalink:   strings.TrimSpace(item.SubmittedPermalink),
		SubmittedNote:        strings.TrimSpace(item.SubmittedNote),
		SubmittedAt:          normalizeOptionalTime(item.SubmittedAt),
		UsageRightsGrantedAt: normalizeOptionalTime(item.UsageRightsGrantedAt),
		VerifiedPermalink:    strings.TrimSpace(item.VerifiedPermalink),
		VerifiedAt:           normalizeOptionalTime(item.VerifiedAt),
		VerifiedBy:           strings.TrimSpace(item.VerifiedBy),
		FailureReason:        strings.TrimSpace(item.FailureReason),
		CreatedAt:            item.CreatedAt.UTC(),
		UpdatedAt:            item.UpdatedAt.UTC(),
	}
}

func (m deliverableModel) toEntity() entities.Deliverable {
	return entities.Deliverable{
		MatchID:              m.MatchID,
		Status:               entities.DeliverableStatus(m.Status),
		ExpectedType:         m.ExpectedType,
		DueAt:                m.DueAt.UTC(),
		SubmittedPermalink:   m.SubmittedPermalink,
		SubmittedNote:        m.SubmittedNote,
		SubmittedAt:          normalizeOptionalTime(m.SubmittedAt),
		UsageRightsGrantedAt: normalizeOptionalTime(m.UsageRightsGrantedAt),
		VerifiedPermalink:    m.VerifiedPermalink,
		VerifiedAt:           normalizeOptionalTime(m.VerifiedAt),
		VerifiedBy:           m.VerifiedBy,
		FailureReason:        m.FailureReason,
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
