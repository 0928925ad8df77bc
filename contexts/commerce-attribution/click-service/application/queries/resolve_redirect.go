package queries

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	application "magnolia/contexts/commerce-attribution/click-service/application"
	"magnolia/contexts/commerce-attribution/click-service/domain/entities"
	domainerrors "magnolia/contexts/commerce-attribution/click-service/domain/errors"
	"magnolia/contexts/commerce-attribution/click-service/ports"
	"magnolia/internal/shared/directory"
)

type ResolveRedirectQuery struct {
	Code      string
	IP        string
	UserAgent string
	Referer   string
}

type ResolveRedirectResult struct {
	Location string
	// Limited means the caller exceeded the per-IP window; nothing was
	// recorded.
	Limited bool
}

// ResolveRedirectUseCase turns /r/{code} into a destination URL and records
// the click. The destination falls through a fixed chain so a shared link
// never dead-ends: product deep link, offer CTA, brand website, map search
// from the brand's postal address, home.
type ResolveRedirectUseCase struct {
	Clicks    ports.ClickRepository
	Matches   ports.MatchReader
	Directory ports.DirectoryReader
	Products  ports.ProductLinks
	Limiter   ports.RateLimiter
	Clock     ports.Clock
	IDs       ports.IDGenerator
	// HomeURL is the safe default for unknown codes and exhausted chains.
	HomeURL string
	Logger  *slog.Logger
}

func (uc ResolveRedirectUseCase) Execute(ctx context.Context, query ResolveRedirectQuery) (ResolveRedirectResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	if uc.Limiter != nil && !uc.Limiter.Allow(strings.TrimSpace(query.IP)) {
		return ResolveRedirectResult{Limited: true}, nil
	}

	match, err := uc.Matches.GetByCode(ctx, strings.TrimSpace(query.Code))
	if err != nil {
		if errors.Is(err, domainerrors.ErrMatchNotFound) {
			return ResolveRedirectResult{Location: uc.HomeURL}, nil
		}
		return ResolveRedirectResult{}, err
	}

	uc.recordClick(ctx, match, query)

	offer, err := uc.Directory.GetOffer(ctx, match.OfferID)
	if err != nil {
		return ResolveRedirectResult{}, err
	}
	brand, err := uc.Directory.GetBrand(ctx, offer.BrandID)
	if err != nil {
		return ResolveRedirectResult{}, err
	}

	store, err := uc.Directory.StoreByBrand(ctx, offer.BrandID)
	hasStore := err == nil
	if err != nil && !errors.Is(err, directory.ErrStoreNotFound) {
		return ResolveRedirectResult{}, err
	}

	destination := uc.resolveDestination(ctx, offer, brand, store, hasStore)
	location := decorate(destination, match.CampaignCode, hasStore)

	logger.Info("campaign code resolved",
		"event", "click_resolved",
		"module", "commerce-attribution/click-service",
		"layer", "application",
		"match_id", match.MatchID,
		"code", match.CampaignCode,
	)
	return ResolveRedirectResult{Location: location}, nil
}

func (uc ResolveRedirectUseCase) recordClick(ctx context.Context, match ports.ClickMatch, query ResolveRedirectQuery) {
	logger := application.ResolveLogger(uc.Logger)

	clickID, err := uc.IDs.NewID(ctx)
	if err != nil {
		logger.Warn("click id generation failed",
			"event", "click_record_failed",
			"module", "commerce-attribution/click-service",
			"layer", "application",
			"match_id", match.MatchID,
			"error", err.Error(),
		)
		return
	}
	if err := uc.Clicks.Append(ctx, entities.LinkClick{
		ClickID:   clickID,
		MatchID:   match.MatchID,
		Code:      match.CampaignCode,
		IPHash:    hashIP(query.IP),
		UserAgent: query.UserAgent,
		Referer:   query.Referer,
		CreatedAt: uc.Clock.Now().UTC(),
	}); err != nil {
		// The redirect still happens; losing one click beats breaking the
		// visitor's request.
		logger.Warn("click append failed",
			"event", "click_record_failed",
			"module", "commerce-attribution/click-service",
			"layer", "application",
			"match_id", match.MatchID,
			"error", err.Error(),
		)
	}
}

func (uc ResolveRedirectUseCase) resolveDestination(
	ctx context.Context,
	offer directory.Offer,
	brand directory.Brand,
	store directory.StoreConfig,
	hasStore bool,
) string {
	if hasStore && len(offer.ProductIDs) > 0 {
		link, err := uc.Products.ProductURL(ctx, store, offer.ProductIDs[0])
		if err == nil && link != "" {
			return link
		}
		// Catalog lookup failures fall back to the shop root, not further
		// down the chain.
		return "https://" + store.ShopDomain
	}
	if parsesAsURL(offer.CTAURL) {
		return offer.CTAURL
	}
	if parsesAsURL(brand.WebsiteURL) {
		return brand.WebsiteURL
	}
	if address := postalAddress(brand); address != "" {
		return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
	}
	return uc.HomeURL
}

func decorate(destination string, code string, hasStore bool) string {
	parsed, err := url.Parse(destination)
	if err != nil {
		return destination
	}
	values := parsed.Query()
	values.Set("utm_source", "creator")
	values.Set("utm_medium", "referral")
	values.Set("utm_campaign", code)
	values.Set("ref", code)
	if hasStore {
		values.Set("discount", code)
	}
	parsed.RawQuery = values.Encode()
	return parsed.String()
}

func parsesAsURL(raw string) bool {
	value := strings.TrimSpace(raw)
	if value == "" {
		return false
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func postalAddress(brand directory.Brand) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{brand.StreetAddress, brand.PostalCode, brand.City, brand.Country} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ip)))
	return hex.EncodeToString(sum[:])
}
