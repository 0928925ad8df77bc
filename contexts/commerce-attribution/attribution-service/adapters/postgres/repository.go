package postgresadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"magnolia/contexts/commerce-attribution/attribution-service/domain/entities"
	"magnolia/contexts/commerce-attribution/attribution-service/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatsRepository reads the attribution source tables with grouped
// aggregates. It owns none of them except redemptions.
type StatsRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStatsRepository(db *gorm.DB, logger *slog.Logger) *StatsRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsRepository{db: db, logger: logger}
}

type countRow struct {
	MatchID string
	Count   int64
}

type moneyRow struct {
	MatchID  string
	Count    int64
	Cents    int64
	Currency string
}

func (r *StatsRepository) StatsByMatch(ctx context.Context, matchIDs []string) (map[string]ports.MatchStats, error) {
	stats := make(map[string]ports.MatchStats, len(matchIDs))
	if len(matchIDs) == 0 {
		return stats, nil
	}

	var clicks []countRow
	if err := r.db.WithContext(ctx).
		Raw(`
			SELECT match_id, COUNT(*) AS count
			FROM link_clicks
			WHERE match_id IN ?
			GROUP BY match_id`, matchIDs).
		Scan(&clicks).
		Error; err != nil {
		return nil, err
	}
	for _, row := range clicks {
		stat := stats[row.MatchID]
		stat.Clicks = row.Count
		stats[row.MatchID] = stat
	}

	var orders []moneyRow
	if err := r.db.WithContext(ctx).
		Raw(`
			SELECT match_id, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS cents, MAX(currency) AS currency
			FROM attributed_orders
			WHERE match_id IN ?
			GROUP BY match_id`, matchIDs).
		Scan(&orders).
		Error; err != nil {
		return nil, err
	}
	for _, row := range orders {
		stat := stats[row.MatchID]
		stat.OrderCount = row.Count
		stat.OrderRevenueCents = row.Cents
		stat.Currency = row.Currency
		stats[row.MatchID] = stat
	}

	var refunds []moneyRow
	if err := r.db.WithContext(ctx).
		Raw(`
			SELECT match_id, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS cents, MAX(currency) AS currency
			FROM attributed_refunds
			WHERE match_id IN ?
			GROUP BY match_id`, matchIDs).
		Scan(&refunds).
		Error; err != nil {
		return nil, err
	}
	for _, row := range refunds {
		stat := stats[row.MatchID]
		stat.RefundCount = row.Count
		stat.RefundTotalCents = row.Cents
		stats[row.MatchID] = stat
	}

	var redemptions []moneyRow
	if err := r.db.WithContext(ctx).
		Raw(`
			SELECT match_id, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS cents, MAX(currency) AS currency
			FROM redemptions
			WHERE match_id IN ?
			GROUP BY match_id`, matchIDs).
		Scan(&redemptions).
		Error; err != nil {
		return nil, err
	}
	for _, row := range redemptions {
		stat := stats[row.MatchID]
		stat.RedemptionCount = row.Count
		stat.RedemptionRevenueCents = row.Cents
		stats[row.MatchID] = stat
	}

	var verified []countRow
	if err := r.db.WithContext(ctx).
		Raw(`
			SELECT match_id, COUNT(*) AS count
			FROM deliverables
			WHERE match_id IN ? AND status = 'verified'
			GROUP BY match_id`, matchIDs).
		Scan(&verified).
		Error; err != nil {
		return nil, err
	}
	for _, row := range verified {
		stat := stats[row.MatchID]
		stat.VerifiedDeliverables = row.Count
		stats[row.MatchID] = stat
	}

	return stats, nil
}

func (r *StatsRepository) RepeatBuyers(ctx context.Context, matchIDs []string) (int64, error) {
	if len(matchIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Raw(`
			SELECT COUNT(*)
			FROM (
				SELECT external_customer_id
				FROM attributed_orders
				WHERE match_id IN ? AND external_customer_id <> '' AND external_customer_id <> '0'
				GROUP BY external_customer_id
				HAVING COUNT(*) >= 2
			) repeat_buyers`, matchIDs).
		Scan(&count).
		Error
	return count, err
}

// RedemptionRepository owns the redemptions table.
type RedemptionRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRedemptionRepository(db *gorm.DB, logger *slog.Logger) *RedemptionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedemptionRepository{db: db, logger: logger}
}

func (r *RedemptionRepository) Insert(ctx context.Context, redemption entities.Redemption) error {
	row := redemptionModel{
		RedemptionID: strings.TrimSpace(redemption.RedemptionID),
		MatchID:      strings.TrimSpace(redemption.MatchID),
		Channel:      strings.TrimSpace(redemption.Channel),
		AmountCents:  redemption.AmountCents,
		Currency:     strings.TrimSpace(redemption.Currency),
		Note:         strings.TrimSpace(redemption.Note),
		CreatedAt:    redemption.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

type redemptionModel struct {
	RedemptionID string    `gorm:"column:redemption_id;primaryKey"`
	MatchID      string    `gorm:"column:match_id;index"`
	Channel      string    `gorm:"column:channel"`
	AmountCents  int64     `gorm:"column:amount_cents"`
	Currency     string    `gorm:"column:currency"`
	Note         string    `gorm:"column:note"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (redemptionModel) TableName() string {
	return "redemptions"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
