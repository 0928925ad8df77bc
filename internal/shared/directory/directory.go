package directory

import (
	"context"
	"errors"
	"time"
)

// Package directory exposes read-only views of records owned by the CRUD
// layer (offers, brands, creators, store integrations). Pipeline modules
// consume these by name only and never write them.

var (
	ErrOfferNotFound   = errors.New("offer not found")
	ErrBrandNotFound   = errors.New("brand not found")
	ErrCreatorNotFound = errors.New("creator not found")
	ErrStoreNotFound   = errors.New("store config not found")
)

type FulfillmentMode string

const (
	FulfillmentModeAutomatic FulfillmentMode = "automatic"
	FulfillmentModeManual    FulfillmentMode = "manual"
)

// Offer carries the typed offer terms the pipeline reads. Ad hoc metadata
// keys from offer creation are validated into these fields at the CRUD
// boundary, not re-parsed per read site.
type Offer struct {
	OfferID             string
	BrandID             string
	Title               string
	DeadlineDays        int
	RequiresUsageRights bool
	FulfillmentMode     FulfillmentMode
	CTAURL              string
	SeedCostCents       int64
	Currency            string
	ProductIDs          []string
}

type Brand struct {
	BrandID       string
	Name          string
	WebsiteURL    string
	StreetAddress string
	PostalCode    string
	City          string
	Country       string
}

type Creator struct {
	CreatorID string
	Name      string
	Email     string
	Phone     string
	WhatsApp  string
	Handle    string
}

// AddressFor returns the creator's contact address on a notification
// channel, or empty when none is on file.
func (c Creator) AddressFor(channel string) string {
	switch channel {
	case "email":
		return c.Email
	case "sms":
		return c.Phone
	case "whatsapp":
		return c.WhatsApp
	default:
		return ""
	}
}

// StoreConfig is the commerce integration for a brand's shop. Absence of a
// row means the brand has no integration and fulfillment falls back to
// manual shipment.
type StoreConfig struct {
	BrandID            string
	ShopDomain         string
	AccessToken        string
	WebhookSecret      string
	SubscriptionStatus string
	SubscriptionPlan   string
	UpdatedAt          time.Time
}

type Reader interface {
	GetOffer(ctx context.Context, offerID string) (Offer, error)
	ListOffersByBrand(ctx context.Context, brandID string) ([]Offer, error)
	GetBrand(ctx context.Context, brandID string) (Brand, error)
	GetCreator(ctx context.Context, creatorID string) (Creator, error)
	ListCreators(ctx context.Context) ([]Creator, error)
	StoreByBrand(ctx context.Context, brandID string) (StoreConfig, error)
	StoreByDomain(ctx context.Context, shopDomain string) (StoreConfig, error)
}

// StoreWriter covers the single directory mutation owned by the pipeline:
// subscription webhooks updating the store's billing state.
type StoreWriter interface {
	UpdateSubscription(ctx context.Context, brandID string, status string, plan string, updatedAt time.Time) error
}
