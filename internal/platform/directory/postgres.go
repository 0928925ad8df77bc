package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	shareddirectory "magnolia/internal/shared/directory"

	"gorm.io/gorm"
)

// Repository reads the CRUD-owned tables through gorm. The pipeline treats
// these rows as foreign state: reads plus the one subscription update.
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

func (r *Repository) GetOffer(ctx context.Context, offerID string) (shareddirectory.Offer, error) {
	var row offerModel
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", strings.TrimSpace(offerID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shareddirectory.Offer{}, shareddirectory.ErrOfferNotFound
		}
		return shareddirectory.Offer{}, err
	}
	return row.toView(), nil
}

func (r *Repository) ListOffersByBrand(ctx context.Context, brandID string) ([]shareddirectory.Offer, error) {
	var rows []offerModel
	if err := r.db.WithContext(ctx).
		Where("brand_id = ?", strings.TrimSpace(brandID)).
		Order("offer_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]shareddirectory.Offer, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toView())
	}
	return items, nil
}

func (r *Repository) GetBrand(ctx context.Context, brandID string) (shareddirectory.Brand, error) {
	var row brandModel
	err := r.db.WithContext(ctx).
		Where("brand_id = ?", strings.TrimSpace(brandID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shareddirectory.Brand{}, shareddirectory.ErrBrandNotFound
		}
		return shareddirectory.Brand{}, err
	}
	return row.toView(), nil
}

func (r *Repository) GetCreator(ctx context.Context, creatorID string) (shareddirectory.Creator, error) {
	var row creatorModel
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", strings.TrimSpace(creatorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shareddirectory.Creator{}, shareddirectory.ErrCreatorNotFound
		}
		return shareddirectory.Creator{}, err
	}
	return row.toView(), nil
}

func (r *Repository) ListCreators(ctx context.Context) ([]shareddirectory.Creator, error) {
	var rows []creatorModel
	if err := r.db.WithContext(ctx).Order("creator_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]shareddirectory.Creator, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toView())
	}
	return items, nil
}

func (r *Repository) StoreByBrand(ctx context.Context, brandID string) (shareddirectory.StoreConfig, error) {
	var row storeConfigModel
	err := r.db.WithContext(ctx).
		Where("brand_id = ?", strings.TrimSpace(brandID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shareddirectory.StoreConfig{}, shareddirectory.ErrStoreNotFound
		}
		return shareddirectory.StoreConfig{}, err
	}
	return row.toView(), nil
}

func (r *Repository) StoreByDomain(ctx context.Context, shopDomain string) (shareddirectory.StoreConfig, error) {
	var row storeConfigModel
	err := r.db.WithContext(ctx).
		Where("shop_domain = ?", strings.TrimSpace(shopDomain)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shareddirectory.StoreConfig{}, shareddirectory.ErrStoreNotFound
		}
		return shareddirectory.StoreConfig{}, err
	}
	return row.toView(), nil
}

func (r *Repository) UpdateSubscription(
	ctx context.Context,
	brandID string,
	status string,
	plan string,
	updatedAt time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&storeConfigModel{}).
		Where("brand_id = ?", strings.TrimSpace(brandID)).
		Updates(map[string]any{
			"subscription_status": strings.TrimSpace(status),
			"subscription_plan":   strings.TrimSpace(plan),
			"updated_at":          updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shareddirectory.ErrStoreNotFound
	}
	return nil
}

type offerModel struct {
	OfferID             string   `gorm:"column:offer_id;primaryKey"`
	BrandID             string   `gorm:"column:brand_id"`
	Title               string   `gorm:"column:title"`
	DeadlineDays        int      `gorm:"column:deadline_days"`
	RequiresUsageRights bool     `gorm:"column:requires_usage_rights"`
	FulfillmentMode     string   `gorm:"column:fulfillment_mode"`
	CTAURL              string   `gorm:"column:cta_url"`
	SeedCostCents       int64    `gorm:"column:seed_cost_cents"`
	Currency            string   `gorm:"column:currency"`
	ProductIDs          []string `gorm:"column:product_ids;type:text[]"`
}

func (offerModel) TableName() string {
	return "offers"
}

func (m offerModel) toView() shareddirectory.Offer {
	return shareddirectory.Offer{
		OfferID:             m.OfferID,
		BrandID:             m.BrandID,
		Title:               m.Title,
		DeadlineDays:        m.DeadlineDays,
		RequiresUsageRights: m.RequiresUsageRights,
		FulfillmentMode:     shareddirectory.FulfillmentMode(m.FulfillmentMode),
		CTAURL:              m.CTAURL,
		SeedCostCents:       m.SeedCostCents,
		Currency:            m.Currency,
		ProductIDs:          append([]string(nil), m.ProductIDs...),
	}
}

type brandModel struct {
	BrandID       string `gorm:"column:brand_id;primaryKey"`
	Name          string `gorm:"column:name"`
	WebsiteURL    string `gorm:"column:website_url"`
	StreetAddress string `gorm:"column:street_address"`
	PostalCode    string `gorm:"column:postal_code"`
	City          string `gorm:"column:city"`
	Country       string `gorm:"column:country"`
}

func (brandModel) TableName() string {
	return "brands"
}

func (m brandModel) toView() shareddirectory.Brand {
	return shareddirectory.Brand{
		BrandID:       m.BrandID,
		Name:          m.Name,
		WebsiteURL:    m.WebsiteURL,
		StreetAddress: m.StreetAddress,
		PostalCode:    m.PostalCode,
		City:          m.City,
		Country:       m.Country,
	}
}

type creatorModel struct {
	CreatorID string `gorm:"column:creator_id;primaryKey"`
	Name      string `gorm:"column:name"`
	Email     string `gorm:"column:email"`
	Phone     string `gorm:"column:phone"`
	WhatsApp  string `gorm:"column:whatsapp"`
	Handle    string `gorm:"column:handle"`
}

func (creatorModel) TableName() string {
	return "creators"
}

func (m creatorModel) toView() shareddirectory.Creator {
	return shareddirectory.Creator{
		CreatorID: m.CreatorID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		WhatsApp:  m.WhatsApp,
		Handle:    m.Handle,
	}
}

type storeConfigModel struct {
	BrandID            string    `gorm:"column:brand_id;primaryKey"`
	ShopDomain         string    `gorm:"column:shop_domain"`
	AccessToken        string    `gorm:"column:access_token"`
	WebhookSecret      string    `gorm:"column:webhook_secret"`
	SubscriptionStatus string    `gorm:"column:subscription_status"`
	SubscriptionPlan   string    `gorm:"column:subscription_plan"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (storeConfigModel) TableName() string {
	return "store_configs"
}

func (m storeConfigModel) toView() shareddirectory.StoreConfig {
	return shareddirectory.StoreConfig{
		BrandID:            m.BrandID,
		ShopDomain:         m.ShopDomain,
		AccessToken:        m.AccessToken,
		WebhookSecret:      m.WebhookSecret,
		SubscriptionStatus: m.SubscriptionStatus,
		SubscriptionPlan:   m.SubscriptionPlan,
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}
