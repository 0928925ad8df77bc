package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"magnolia/contexts/match-fulfillment/fulfillment-service/domain/entities"
	domainerrors "magnolia/contexts/match-fulfillment/fulfillment-service/domain/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var nonTerminalStatuses = []string{
	string(entities.OrderStatusPending),
	string(entities.OrderStatusDraftCreated),
	string(entities.OrderStatusError),
}

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

func (r *Repository) GetByMatch(ctx context.Context, matchID string) (entities.OrderFulfillmentRecord, error) {
	var row recordModel
	err := r.db.WithContext(ctx).
		Where("match_id = ?", strings.TrimSpace(matchID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OrderFulfillmentRecord{}, domainerrors.ErrRecordNotFound
		}
		return entities.OrderFulfillmentRecord{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetByExternalOrder(
	ctx context.Context,
	shopDomain string,
	externalOrderID string,
) (entities.OrderFulfillmentRecord, error) {
	var row recordModel
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
			return entities.OrderFulfillmentRecord{}, domainerrors.ErrRecordNotFound
		}
		return entities.OrderFulfillmentRecord{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateIfAbsent(
	ctx context.Context,
	record entities.OrderFulfillmentRecord,
) (entities.OrderFulfillmentRecord, error) {
	row := recordModelFromEntity(record)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "match_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return entities.OrderFulfillmentRecord{}, result.Error
	}
	// Re-read so a lost insert race still hands the caller the stored row.
	return r.GetByMatch(ctx, record.MatchID)
}

func (r *Repository) SetDraftCreated(ctx context.Context, recordID string, draftID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&recordModel{}).
		Where(
			"record_id = ? AND status IN ?",
			strings.TrimSpace(recordID),
			[]string{string(entities.OrderStatusPending), string(entities.OrderStatusError)},
		).
		Updates(map[string]any{
			"status":            string(entities.OrderStatusDraftCreated),
			"external_draft_id": strings.TrimSpace(draftID),
			"error":             "",
			"updated_at":        at.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SetCompleted(ctx context.Context, recordID string, externalOrderID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&recordModel{}).
		Where(
			"record_id = ? AND status = ?",
			strings.TrimSpace(recordID),
			string(entities.OrderStatusDraftCreated),
		).
		Updates(map[string]any{
			"status":            string(entities.OrderStatusCompleted),
			"external_order_id": strings.TrimSpace(externalOrderID),
			"error":             "",
			"updated_at":        at.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SetFulfilled(
	ctx context.Context,
	recordID string,
	trackingNumber string,
	trackingURL string,
	at time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&recordModel{}).
		Where(
			"record_id = ? AND status = ?",
			strings.TrimSpace(recordID),
			string(entities.OrderStatusCompleted),
		).
		Updates(map[string]any{
			"status":          string(entities.OrderStatusFulfilled),
			"tracking_number": strings.TrimSpace(trackingNumber),
			"tracking_url":    strings.TrimSpace(trackingURL),
			"updated_at":      at.UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SetError(ctx context.Context, recordID string, message string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&recordModel{}).
		Where(
			"record_id = ? AND status IN ?",
			strings.TrimSpace(recordID),
			nonTerminalStatuses,
		).
		Updates(map[string]any{
			"status":     string(entities.OrderStatusError),
			"error":      strings.TrimSpace(message),
			"updated_at": at.UTC(),
		})
	return result.Error
}

func (r *Repository) ListRetryable(ctx context.Context, limit int) ([]entities.OrderFulfillmentRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []recordModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", nonTerminalStatuses).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.OrderFulfillmentRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type DiscountRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewDiscountRepository(db *gorm.DB, logger *slog.Logger) *DiscountRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscountRepository{db: db, logger: logger}
}

func (r *DiscountRepository) GetByMatch(ctx context.Context, matchID string) (entities.MatchDiscount, error) {
	var row discountModel
	err := r.db.WithContext(ctx).
		Where("match_id = ?", strings.TrimSpace(matchID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.MatchDiscount{}, domainerrors.ErrRecordNotFound
		}
		return entities.MatchDiscount{}, err
	}
	return row.toEntity(), nil
}

func (r *DiscountRepository) CreateIfAbsent(ctx context.Context, discount entities.MatchDiscount) (bool, error) {
	row := discountModel{
		MatchID:                strings.TrimSpace(discount.MatchID),
		ShopDomain:             strings.TrimSpace(discount.ShopDomain),
		Code:                   strings.TrimSpace(discount.Code),
		ExternalPriceRuleID:    strings.TrimSpace(discount.ExternalPriceRuleID),
		ExternalDiscountCodeID: strings.TrimSpace(discount.ExternalDiscountCodeID),
		CreatedAt:              discount.CreatedAt.UTC(),
	}
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

func (r *DiscountRepository) ListAcceptedMatchesMissingDiscount(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	var matchIDs []string
	err := r.db.WithContext(ctx).
		Raw(`
			SELECT m.match_id
			FROM matches m
			LEFT JOIN match_discounts d ON d.match_id = m.match_id
			WHERE m.status = 'accepted' AND d.match_id IS NULL
			ORDER BY m.accepted_at ASC
			LIMIT ?`, limit).
		Scan(&matchIDs).
		Error
	if err != nil {
		return nil, err
	}
	return matchIDs, nil
}

type ShipmentRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewShipmentRepository(db *gorm.DB, logger *slog.Logger) *ShipmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShipmentRepository{db: db, logger: logger}
}

func (r *ShipmentRepository) GetByMatch(ctx context.Context, matchID string) (entities.ManualShipment, error) {
	var row shipmentModel
	err := r.db.WithContext(ctx).
		Where("match_id = ?", strings.TrimSpace(matchID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ManualShipment{}, domainerrors.ErrRecordNotFound
		}
		return entities.ManualShipment{}, err
	}
	return row.toEntity(), nil
}

func (r *ShipmentRepository) CreateIfAbsent(ctx context.Context, shipment entities.ManualShipment) (bool, error) {
	row := shipmentModel{
		ShipmentID: strings.TrimSpace(shipment.ShipmentID),
		MatchID:    strings.TrimSpace(shipment.MatchID),
		Reason:     strings.TrimSpace(shipment.Reason),
		Status:     string(shipment.Status),
		CreatedAt:  shipment.CreatedAt.UTC(),
	}
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

type recordModel struct {
	RecordID        string    `gorm:"column:record_id;primaryKey"`
	MatchID         string    `gorm:"column:match_id;uniqueIndex"`
	ShopDomain      string    `gorm:"column:shop_domain"`
	Status          string    `gorm:"column:status"`
	ExternalDraftID string    `gorm:"column:external_draft_id"`
	ExternalOrderID string    `gorm:"column:external_order_id;index"`
	TrackingNumber  string    `gorm:"column:tracking_number"`
	TrackingURL     string    `gorm:"column:tracking_url"`
	Error           string    `gorm:"column:error"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (recordModel) TableName() string {
	return "order_fulfillment_records"
}

func recordModelFromEntity(item entities.OrderFulfillmentRecord) recordModel {
	return recordModel{
		RecordID:        strings.TrimSpace(item.RecordID),
		MatchID:         strings.TrimSpace(item.MatchID),
		ShopDomain:      strings.TrimSpace(item.ShopDomain),
		Status:          string(item.Status),
		ExternalDraftID: strings.TrimSpace(item.ExternalDraftID),
		ExternalOrderID: strings.TrimSpace(item.ExternalOrderID),
		TrackingNumber:  strings.TrimSpace(item.TrackingNumber),
		TrackingURL:     strings.TrimSpace(item.TrackingURL),
		Error:           strings.TrimSpace(item.Error),
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func (m recordModel) toEntity() entities.OrderFulfillmentRecord {
	return entities.OrderFulfillmentRecord{
		RecordID:        m.RecordID,
		MatchID:         m.MatchID,
		ShopDomain:      m.ShopDomain,
		Status:          entities.OrderStatus(m.Status),
		ExternalDraftID: m.ExternalDraftID,
		ExternalOrderID: m.ExternalOrderID,
		TrackingNumber:  m.TrackingNumber,
		TrackingURL:     m.TrackingURL,
		Error:           m.Error,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type discountModel struct {
	MatchID                string    `gorm:"column:match_id;primaryKey"`
	ShopDomain             string    `gorm:"column:shop_domain"`
	Code                   string    `gorm:"column:code;index"`
	ExternalPriceRuleID    string    `gorm:"column:external_price_rule_id"`
	ExternalDiscountCodeID string    `gorm:"column:external_discount_code_id"`
	CreatedAt              time.Time `gorm:"column:created_at"`
}

func (discountModel) TableName() string {
	return "match_discounts"
}

func (m discountModel) toEntity() entities.MatchDiscount {
	return entities.MatchDiscount{
		MatchID:                m.MatchID,
		ShopDomain:             m.ShopDomain,
		Code:                   m.Code,
		ExternalPriceRuleID:    m.ExternalPriceRuleID,
		ExternalDiscountCodeID: m.ExternalDiscountCodeID,
		CreatedAt:              m.CreatedAt.UTC(),
	}
}

type shipmentModel struct {
	ShipmentID string    `gorm:"column:shipment_id;primaryKey"`
	MatchID    string    `gorm:"column:match_id;uniqueIndex"`
	Reason     string    `gorm:"column:reason"`
	Status     string    `gorm:"column:status"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (shipmentModel) TableName() string {
	return "manual_shipments"
}

func (m shipmentModel) toEntity() entities.ManualShipment {
	return entities.ManualShipment{
		ShipmentID: m.ShipmentID,
		MatchID:    m.MatchID,
		Reason:     m.Reason,
		Status:     entities.ShipmentStatus(m.Status),
		CreatedAt:  m.CreatedAt.UTC(),
	}
}
