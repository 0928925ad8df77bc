package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"magnolia/contexts/match-fulfillment/fulfillment-service/ports"
	"magnolia/internal/shared/directory"
)

const apiVersion = "2024-01"

// Gateway talks to the commerce platform admin API with the per-store
// access token. Every call runs under the client timeout so a slow platform
// cannot stall approval.
type Gateway struct {
	client          *http.Client
	discountPercent int
	logger          *slog.Logger
}

func NewGateway(timeout time.Duration, discountPercent int, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if discountPercent <= 0 {
		discountPercent = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client:          &http.Client{Timeout: timeout},
		discountPercent: discountPercent,
		logger:          logger,
	}
}

func (g *Gateway) CreatePriceRule(
	ctx context.Context,
	store directory.StoreConfig,
	title string,
	code string,
) (string, error) {
	body := map[string]any{
		"price_rule": map[string]any{
			"title":              title + " / " + code,
			"target_type":        "line_item",
			"target_selection":   "all",
			"allocation_method":  "across",
			"value_type":         "percentage",
			"value":              "-" + strconv.Itoa(g.discountPercent) + ".0",
			"customer_selection": "all",
			"starts_at":          time.Now().UTC().Format(time.RFC3339),
		},
	}
	var out struct {
		PriceRule struct {
			ID int64 `json:"id"`
		} `json:"price_rule"`
	}
	if err := g.do(ctx, store, http.MethodPost, "price_rules.json", body, &out); err != nil {
		return "", err
	}
	return strconv.FormatInt(out.PriceRule.ID, 10), nil
}

func (g *Gateway) CreateDiscountCode(
	ctx context.Context,
	store directory.StoreConfig,
	priceRuleID string,
	code string,
) (string, error) {
	body := map[string]any{
		"discount_code": map[string]any{"code": code},
	}
	var out struct {
		DiscountCode struct {
			ID int64 `json:"id"`
		} `json:"discount_code"`
	}
	path := "price_rules/" + priceRuleID + "/discount_codes.json"
	if err := g.do(ctx, store, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return strconv.FormatInt(out.DiscountCode.ID, 10), nil
}

func (g *Gateway) CreateDraftOrder(
	ctx context.Context,
	store directory.StoreConfig,
	draft ports.DraftOrderInput,
) (string, error) {
	lineItems := make([]map[string]any, 0, len(draft.ProductIDs))
	for _, productID := range draft.ProductIDs {
		lineItems = append(lineItems, map[string]any{
			"product_id": productID,
			"quantity":   1,
		})
	}
	body := map[string]any{
		"draft_order": map[string]any{
			"line_items": lineItems,
			"note":       draft.Note,
			"tags":       "seeding," + draft.MatchID,
		},
	}
	var out struct {
		DraftOrder struct {
			ID int64 `json:"id"`
		} `json:"draft_order"`
	}
	if err := g.do(ctx, store, http.MethodPost, "draft_orders.json", body, &out); err != nil {
		return "", err
	}
	return strconv.FormatInt(out.DraftOrder.ID, 10), nil
}

func (g *Gateway) CompleteDraftOrder(
	ctx context.Context,
	store directory.StoreConfig,
	draftID string,
) (string, error) {
	var out struct {
		DraftOrder struct {
			OrderID int64 `json:"order_id"`
		} `json:"draft_order"`
	}
	path := "draft_orders/" + draftID + "/complete.json?payment_pending=true"
	if err := g.do(ctx, store, http.MethodPut, path, nil, &out); err != nil {
		return "", err
	}
	return strconv.FormatInt(out.DraftOrder.OrderID, 10), nil
}

func (g *Gateway) ProductURL(
	ctx context.Context,
	store directory.StoreConfig,
	productID string,
) (string, error) {
	var out struct {
		Product struct {
			Handle string `json:"handle"`
		} `json:"product"`
	}
	if err := g.do(ctx, store, http.MethodGet, "products/"+productID+".json", nil, &out); err != nil {
		return "", err
	}
	if out.Product.Handle == "" {
		return "", fmt.Errorf("product %s has no handle", productID)
	}
	return "https://" + store.ShopDomain + "/products/" + out.Product.Handle, nil
}

func (g *Gateway) do(
	ctx context.Context,
	store directory.StoreConfig,
	method string,
	path string,
	body any,
	out any,
) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	url := "https://" + store.ShopDomain + "/admin/api/" + apiVersion + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Commerce-Access-Token", store.AccessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Warn("commerce api call failed",
			"event", "commerce_api_error",
			"module", "match-fulfillment/fulfillment-service",
			"layer", "adapter",
			"shop_domain", store.ShopDomain,
			"path", path,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("commerce api %s %s: status %d: %s", method, path, resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
