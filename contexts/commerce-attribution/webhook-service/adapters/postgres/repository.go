package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"magnolia/contexts/commerce-attribution/webhook-service/domain/entities"
	domainerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"

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

func (r *Repository) InsertIfAbsent(ctx context.Context, order entities.AttributedOrder) (bool, error) {
	row := orderModel{
		MatchID:            strings.TrimSpace(order.MatchID),
		ShopDomain:         strings.TrimSpace(order.ShopDomain),
		ExternalOrderID:    strings.TrimSpace(order.ExternalOrderID),
		ExternalCustomerID: strings.TrimSpace(order.ExternalCustomerID),
		DiscountCode:       strings.TrimSpace(order.DiscountCode),
		Currency:           strings.TrimSpace(order.Currency),
		AmountCents:        order.AmountCents,
		CreatedAt:          order.CreatedAt.UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_domain"}, {Name: "external_order_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) GetByExternalOrder(
	ctx context.Context,
	shopDomain string,
	externalOrderID string,
) (entities.AttributedOrder, error) {
	var row orderModel
	err := r.db.WithContext(ctx).
		Where(
			"shop_domain = ? AND external_order_id = ?",
			strings.TrimSpace(shopDomain),
			strings.TrimSpace(externalOrderID),
		).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AttributedOrder{}, domainerrors.ErrOrderNotFound
		}
		return entities.AttributedOrder{}, err
	}
	return row.toEntity(), nil
}

// RefundRepository covers the attributed_refunds side of ingestion.
type RefundRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRefundRepository(db *gorm.DB, logger *slog.Logger) *RefundRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefundRepository{db: db, logger: logger}
}

func (r *RefundRepository) InsertIfAbsent(ctx context.Context, refund entities.AttributedRefund) (bool, error) {
	row := refundModel{
		MatchID:          strings.TrimSpace(refund.MatchID),
		ShopDomain:       strings.TrimSpace(refund.ShopDomain),
		ExternalRefundID: strings.TrimSpace(refund.ExternalRefundID),
		ExternalOrderID:  strings.TrimSpace(refund.ExternalOrderID),
		Currency:         strings.TrimSpace(refund.Currency),
		AmountCents:      refund.AmountCents,
		CreatedAt:        refund.CreatedAt.UTC(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_domain"}, {Name: "external_refund_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

type orderModel struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID            string    `gorm:"column:match_id;index"`
	ShopDomain         string    `gorm:"column:shop_domain;uniqueIndex:idx_orders_shop_external"`
	ExternalOrderID    string    `gorm:"column:external_order_id;uniqueIndex:idx_orders_shop_external"`
	ExternalCustomerID string    `gorm:"column:external_customer_id"`
	DiscountCode       string    `gorm:"column:discount_code"`
	Currency           string    `gorm:"column:currency"`
	AmountCents        int64     `gorm:"column:amount_cents"`
	CreatedAt          time.Time `gorm:"column:created_at"`
}

func (orderModel) TableName() string {
	return "attributed_orders"
}

func (m orderModel) toEntity() entities.AttributedOrder {
	return entities.AttributedOrder{
		MatchID:            m.MatchID,
		ShopDomain:         m.ShopDomain,
		ExternalOrderID:    m.ExternalOrderID,
		ExternalCustomerID: m.ExternalCustomerID,
		DiscountCode:       m.DiscountCode,
		Currency:           m.Currency,
		AmountCents:        m.AmountCents,
		CreatedAt:          m.CreatedAt.UTC(),
	}
}

type refundModel struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	MatchID          string    `gorm:"column:match_id;index"`
	ShopDomain       string    `gorm:"column:shop_domain;uniqueIndex:idx_refunds_shop_external"`
	ExternalRefundID string    `gorm:"column:external_refund_id;uniqueIndex:idx_refunds_shop_external"`
	ExternalOrderID  string    `gorm:"column:external_order_id"`
	Currency         string    `gorm:"column:currency"`
	AmountCents      int64     `gorm:"column:amount_cents"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (refundModel) TableName() string {
	return "attributed_refunds"
}
