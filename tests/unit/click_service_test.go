package unit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	clickservice "magnolia/contexts/commerce-attribution/click-service"
	"magnolia/contexts/commerce-attribution/click-service/application/queries"
	clickerrors "magnolia/contexts/commerce-attribution/click-service/domain/errors"
	clickports "magnolia/contexts/commerce-attribution/click-service/ports"
	platformdirectory "magnolia/internal/platform/directory"
	"magnolia/internal/shared/directory"
)

type stubClickMatches struct{}

func (stubClickMatches) GetByCode(_ context.Context, code string) (clickports.ClickMatch, error) {
	if code != "NADIA10" {
		return clickports.ClickMatch{}, clickerrors.ErrMatchNotFound
	}
	return clickports.ClickMatch{MatchID: "match-1", OfferID: "offer-1", CampaignCode: "NADIA10"}, nil
}

type stubProductLinks struct {
	fail bool
}

func (p stubProductLinks) ProductURL(_ context.Context, store directory.StoreConfig, productID string) (string, error) {
	if p.fail {
		return "", errors.New("catalog unavailable")
	}
	return "https://" + store.ShopDomain + "/products/" + productID, nil
}

func clickDirectory(offer directory.Offer, brand directory.Brand, withStore bool) *platformdirectory.MemoryStore {
	dir := platformdirectory.NewMemoryStore()
	dir.SeedOffer(offer)
	dir.SeedBrand(brand)
	if withStore {
		dir.SeedStore(directory.StoreConfig{BrandID: brand.BrandID, ShopDomain: "brand-one.example-shop.com"})
	}
	return dir
}

func newClickModule(dir *platformdirectory.MemoryStore, products clickports.ProductLinks, ratePerMinute int) clickservice.Module {
	return clickservice.NewInMemoryModule(clickservice.Dependencies{
		Matches:       stubClickMatches{},
		Directory:     dir,
		Products:      products,
		HomeURL:       "https://magnolia.example.com",
		RatePerMinute: ratePerMinute,
	})
}

func resolve(t *testing.T, module clickservice.Module, code string, ip string) queries.ResolveRedirectResult {
	t.Helper()
	result, err := module.Resolve.Execute(context.Background(), queries.ResolveRedirectQuery{
		Code: code,
		IP:   ip,
	})
	if err != nil {
		t.Fatalf("resolve redirect: %v", err)
	}
	return result
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse location %q: %v", raw, err)
	}
	return parsed
}

func TestRedirectPrefersProductDeepLink(t *testing.T) {
	dir := clickDirectory(
		directory.Offer{OfferID: "offer-1", BrandID: "brand-1", ProductIDs: []string{"prod-1"}},
		directory.Brand{BrandID: "brand-1"},
		true,
	)
	module := newClickModule(dir, stubProductLinks{}, 0)

	result := resolve(t, module, "NADIA10", "203.0.113.7")
	location := mustParse(t, result.Location)
	if location.Host != "brand-one.example-shop.com" || !strings.HasPrefix(location.Path, "/products/") {
		t.Fatalf("unexpected destination: %s", result.Location)
	}
	params := location.Query()
	if params.Get("utm_campaign") != "NADIA10" || params.Get("ref") != "NADIA10" || params.Get("discount") != "NADIA10" {
		t.Fatalf("missing tracking params: %s", result.Location)
	}
	if clicks := module.Store.Clicks(); len(clicks) != 1 || clicks[0].MatchID != "match-1" {
		t.Fatalf("expected one recorded click, got %+v", module.Store.Clicks())
	}
}

func TestRedirectFallsBackToShopRootOnCatalogFailure(t *testing.T) {
	dir := clickDirectory(
		directory.Offer{OfferID: "offer-1", BrandID: "brand-1", ProductIDs: []string{"prod-1"}},
		directory.Brand{BrandID: "brand-1"},
		true,
	)
	module := newClickModule(dir, stubProductLinks{fail: true}, 0)

	result := resolve(t, module, "NADIA10", "203.0.113.7")
	location := mustParse(t, result.Location)
	if location.Host != "brand-one.example-shop.com" || location.Path != "" {
		t.Fatalf("expected shop root fallback, got %s", result.Location)
	}
}

func TestRedirectFallsBackToCTAWithoutStore(t *testing.T) {
	dir := clickDirectory(
		directory.Offer{OfferID: "offer-1", BrandID: "brand-1", CTAURL: "https://landing.example.com/spring"},
		directory.Brand{BrandID: "brand-1", WebsiteURL: "https://brand-one.example.com"},
		false,
	)
	module := newClickModule(dir, stubProductLinks{}, 0)

	result := resolve(t, module, "NADIA10", "203.0.113.7")
	location := mustParse(t, result.Location)
	if location.Host != "landing.example.com" {
		t.Fatalf("expected CTA fallback, got %s", result.Location)
	}
	// No store integration means no provisioned discount to reference.
	if location.Query().Get("discount") != "" {
		t.Fatalf("discount param must not appear without a store: %s", result.Location)
	}
}

func TestRedirectFallsBackToWebsiteThenMaps(t *testing.T) {
	dir := clickDirectory(
		directory.Offer{OfferID: "offer-1", BrandID: "brand-1"},
		directory.Brand{BrandID: "brand-1", WebsiteURL: "https://brand-one.example.com"},
		false,
	)
	module := newClickModule(dir, stubProductLinks{}, 0)
	result := resolve(t, module, "NADIA10", "203.0.113.7")
	if mustParse(t, result.Location).Host != "brand-one.example.com" {
		t.Fatalf("expected website fallback, got %s", result.Location)
	}

	dir = clickDirectory(
		directory.Offer{OfferID: "offer-1", BrandID: "brand-1"},
		directory.Brand{
			BrandID:       "brand-1",
			StreetAddress: "Torstrasse 1",
			PostalCode:    "10119",
			City:          "Berlin",
			Country:       "DE",
		},
		false,
	)
	module = newClickModule(dir, stubProductLinks{}, 0)
	result = resolve(t, module, "NADIA10", "203.0.113.7")
	location := mustParse(t, result.Location)
	if location.Host != "www.google.com" || !strings.Contains(location.Query().Get("query"), "Torstrasse 1") {
		t.Fatalf("expected maps search fallback, got %s", result.Location)
	}
}

func TestRedirectUnknownCodeGoesHome(t *testing.T) {
	dir := clickDirectory(directory.Offer{OfferID: "offer-1", BrandID: "brand-1"}, directory.Brand{BrandID: "brand-1"}, false)
	module := newClickModule(dir, stubProductLinks{}, 0)

	result := resolve(t, module, "NO-SUCH-CODE", "203.0.113.7")
	if result.Location != "https://magnolia.example.com" {
		t.Fatalf("unknown code must go home, got %s", result.Location)
	}
	if len(module.Store.Clicks()) != 0 {
		t.Fatalf("unknown code must not record clicks")
	}
}

func TestRedirectRateLimitsPerIP(t *testing.T) {
	dir := clickDirectory(
		directory.Offer{OfferID: "offer-1", BrandID: "brand-1", CTAURL: "https://landing.example.com/spring"},
		directory.Brand{BrandID: "brand-1"},
		false,
	)
	module := newClickModule(dir, stubProductLinks{}, 2)

	resolve(t, module, "NADIA10", "203.0.113.7")
	resolve(t, module, "NADIA10", "203.0.113.7")
	limited := resolve(t, module, "NADIA10", "203.0.113.7")
	if !limited.Limited {
		t.Fatalf("third request in window should be limited")
	}
	if len(module.Store.Clicks()) != 2 {
		t.Fatalf("limited request must not record a click, got %d", len(module.Store.Clicks()))
	}

	// Another caller is unaffected.
	other := resolve(t, module, "NADIA10", "198.51.100.9")
	if other.Limited {
		t.Fatalf("rate limit must be per IP")
	}
}

func TestHandleRedirectWritesFoundAndTooManyRequests(t *testing.T) {
	dir := clickDirectory(
		directory.Offer{OfferID: "offer-1", BrandID: "brand-1", CTAURL: "https://landing.example.com/spring"},
		directory.Brand{BrandID: "brand-1"},
		false,
	)
	module := newClickModule(dir, stubProductLinks{}, 1)

	req := httptest.NewRequest(http.MethodGet, "/r/NADIA10", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	recorder := httptest.NewRecorder()
	module.Handler.HandleRedirect(recorder, req, "NADIA10")
	if recorder.Code != http.StatusFound {
		t.Fatalf("status %d, want 302", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); !strings.HasPrefix(location, "https://landing.example.com/spring") {
		t.Fatalf("unexpected Location header: %s", location)
	}

	recorder = httptest.NewRecorder()
	module.Handler.HandleRedirect(recorder, req, "NADIA10")
	if recorder.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", recorder.Code)
	}
}
