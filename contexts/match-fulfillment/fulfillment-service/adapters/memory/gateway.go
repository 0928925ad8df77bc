package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"magnolia/contexts/match-fulfillment/fulfillment-service/ports"
	"magnolia/internal/shared/directory"
)

// FakeGateway stands in for the commerce platform in tests. Failure flags
// make individual calls fail so retry paths can be exercised.
type FakeGateway struct {
	mu sync.Mutex

	FailPriceRule    bool
	FailDiscountCode bool
	FailDraftOrder   bool
	FailComplete     bool

	PriceRuleCalls int
	DraftCalls     int
	CompleteCalls  int

	seq int
}

func (g *FakeGateway) CreatePriceRule(
	_ context.Context,
	_ directory.StoreConfig,
	_ string,
	_ string,
) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.PriceRuleCalls++
	if g.FailPriceRule {
		return "", errors.New("price rule rejected")
	}
	g.seq++
	return fmt.Sprintf("rule-%04d", g.seq), nil
}

func (g *FakeGateway) CreateDiscountCode(
	_ context.Context,
	_ directory.StoreConfig,
	_ string,
	_ string,
) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailDiscountCode {
		return "", errors.New("discount code rejected")
	}
	g.seq++
	return fmt.Sprintf("dcode-%04d", g.seq), nil
}

func (g *FakeGateway) CreateDraftOrder(
	_ context.Context,
	_ directory.StoreConfig,
	_ ports.DraftOrderInput,
) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.DraftCalls++
	if g.FailDraftOrder {
		return "", errors.New("draft order rejected")
	}
	g.seq++
	return fmt.Sprintf("draft-%04d", g.seq), nil
}

func (g *FakeGateway) CompleteDraftOrder(
	_ context.Context,
	_ directory.StoreConfig,
	draftID string,
) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CompleteCalls++
	if g.FailComplete {
		return "", errors.New("draft completion rejected")
	}
	return "order-for-" + draftID, nil
}

func (g *FakeGateway) ProductURL(
	_ context.Context,
	store directory.StoreConfig,
	productID string,
) (string, error) {
	return "https://" + store.ShopDomain + "/products/product-" + productID, nil
}
