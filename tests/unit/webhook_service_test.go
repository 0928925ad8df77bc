package unit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	webhookservice "magnolia/contexts/commerce-attribution/webhook-service"
	webhookhttp "magnolia/contexts/commerce-attribution/webhook-service/adapters/http"
	webhookerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"
	webhookports "magnolia/contexts/commerce-attribution/webhook-service/ports"
	httptransport "magnolia/contexts/commerce-attribution/webhook-service/transport/http"
	platformdirectory "magnolia/internal/platform/directory"
	"magnolia/internal/shared/directory"
)

const (
	testShopDomain = "brand-one.example-shop.com"
	testSecret     = "webhook-secret"
)

type stubWebhookMatches struct{}

func (stubWebhookMatches) GetByCode(_ context.Context, code string) (webhookports.MatchRef, error) {
	if code != "NADIA10" {
		return webhookports.MatchRef{}, webhookerrors.ErrMatchNotFound
	}
	return webhookports.MatchRef{MatchID: "match-1", CreatorID: "creator-1"}, nil
}

func (stubWebhookMatches) GetByID(_ context.Context, matchID string) (webhookports.MatchRef, error) {
	if matchID != "match-1" {
		return webhookports.MatchRef{}, webhookerrors.ErrMatchNotFound
	}
	return webhookports.MatchRef{MatchID: "match-1", CreatorID: "creator-1"}, nil
}

type stubFulfillmentMarker struct {
	updated bool
	known   bool
}

func (m stubFulfillmentMarker) MarkFulfilled(
	_ context.Context, _ string, _ string, _ string, _ string,
) (string, bool, error) {
	if !m.known {
		return "", false, webhookerrors.ErrOrderNotFound
	}
	return "match-1", m.updated, nil
}

type recordingRescheduler struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingRescheduler) RescheduleFromFulfillment(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, matchID)
	return nil
}

func webhookDirectory() *platformdirectory.MemoryStore {
	dir := platformdirectory.NewMemoryStore()
	dir.SeedStore(directory.StoreConfig{
		BrandID:       "brand-1",
		ShopDomain:    testShopDomain,
		WebhookSecret: testSecret,
	})
	dir.SeedCreator(directory.Creator{CreatorID: "creator-1", Name: "Nadia", Email: "nadia@example.com"})
	return dir
}

func newWebhookModule(marker webhookports.FulfillmentMarker, rescheduler webhookports.DeliverableRescheduler, notifier webhookports.Notifier) webhookservice.Module {
	dir := webhookDirectory()
	return webhookservice.NewInMemoryModule(webhookservice.Dependencies{
		Matches:         stubWebhookMatches{},
		Fulfillment:     marker,
		Rescheduler:     rescheduler,
		Notifier:        notifier,
		Directory:       dir,
		Stores:          dir,
		EnabledChannels: []string{"email"},
	})
}

func postWebhook(t *testing.T, module webhookservice.Module, topic string, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/commerce/"+topic, bytes.NewReader(body))
	req.Header.Set(webhookhttp.HeaderShopDomain, testShopDomain)
	req.Header.Set(webhookhttp.HeaderSignature, signature)
	recorder := httptest.NewRecorder()
	module.Handler.HandleWebhook(recorder, req, topic)
	return recorder
}

func decodeWebhookResponse(t *testing.T, recorder *httptest.ResponseRecorder) httptransport.WebhookResponse {
	t.Helper()
	var resp httptransport.WebhookResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode webhook response: %v", err)
	}
	return resp
}

func orderBody(orderID int64, code string) []byte {
	return []byte(`{
		"id": ` + jsonInt(orderID) + `,
		"total_price": "120.00",
		"currency": "EUR",
		"customer": {"id": 9001},
		"discount_codes": [{"code": "` + code + `"}]
	}`)
}

func jsonInt(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}

func TestOrderWebhookAttributesByDiscountCode(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := orderBody(1001, "NADIA10")

	recorder := postWebhook(t, module, webhookhttp.TopicOrdersCreate, body, webhookhttp.ComputeSignature(testSecret, body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", recorder.Code, recorder.Body.String())
	}
	resp := decodeWebhookResponse(t, recorder)
	if !resp.OK || resp.Attributed == nil || !*resp.Attributed || resp.Deduped {
		t.Fatalf("unexpected response: %+v", resp)
	}

	orders := module.Store.Orders()
	if len(orders) != 1 {
		t.Fatalf("expected one attributed order, got %d", len(orders))
	}
	if orders[0].MatchID != "match-1" || orders[0].AmountCents != 12000 || orders[0].Currency != "EUR" {
		t.Fatalf("unexpected attributed order: %+v", orders[0])
	}
}

func TestOrderWebhookRejectsBadSignature(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := orderBody(1001, "NADIA10")

	recorder := postWebhook(t, module, webhookhttp.TopicOrdersCreate, body, webhookhttp.ComputeSignature("wrong-secret", body))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", recorder.Code)
	}
	if len(module.Store.Orders()) != 0 {
		t.Fatalf("rejected webhook must not write rows")
	}
}

func TestOrderWebhookDedupesRedelivery(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := orderBody(1001, "NADIA10")
	signature := webhookhttp.ComputeSignature(testSecret, body)

	postWebhook(t, module, webhookhttp.TopicOrdersCreate, body, signature)
	recorder := postWebhook(t, module, webhookhttp.TopicOrdersCreate, body, signature)
	resp := decodeWebhookResponse(t, recorder)
	if !resp.Deduped {
		t.Fatalf("expected redelivery to dedupe: %+v", resp)
	}
	if len(module.Store.Orders()) != 1 {
		t.Fatalf("redelivery must not duplicate rows, got %d", len(module.Store.Orders()))
	}
}

func TestOrderWebhookToleratesUnknownCode(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := orderBody(1002, "SOMEONE-ELSES-SALE")

	recorder := postWebhook(t, module, webhookhttp.TopicOrdersCreate, body, webhookhttp.ComputeSignature(testSecret, body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 for unmatched codes", recorder.Code)
	}
	resp := decodeWebhookResponse(t, recorder)
	if resp.Attributed == nil || *resp.Attributed {
		t.Fatalf("unmatched code must not attribute: %+v", resp)
	}
	if len(module.Store.Orders()) != 0 {
		t.Fatalf("unmatched order must not be stored")
	}
}

func TestRefundWebhookBeforeOrderIsTolerated(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := []byte(`{"id": 501, "order_id": 9999, "transactions": [{"amount": "20.00", "currency": "EUR"}]}`)

	recorder := postWebhook(t, module, webhookhttp.TopicRefundsCreate, body, webhookhttp.ComputeSignature(testSecret, body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", recorder.Code)
	}
	resp := decodeWebhookResponse(t, recorder)
	if resp.Attributed == nil || *resp.Attributed {
		t.Fatalf("refund without attributed order must not attribute: %+v", resp)
	}
	if len(module.Store.Refunds().All()) != 0 {
		t.Fatalf("unattributed refund must not be stored")
	}
}

func TestRefundWebhookSumsTransactionsInCents(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	order := orderBody(1001, "NADIA10")
	postWebhook(t, module, webhookhttp.TopicOrdersCreate, order, webhookhttp.ComputeSignature(testSecret, order))

	refund := []byte(`{"id": 501, "order_id": 1001, "transactions": [
		{"amount": "19.99", "currency": "EUR"},
		{"amount": "0.02", "currency": "EUR"}
	]}`)
	recorder := postWebhook(t, module, webhookhttp.TopicRefundsCreate, refund, webhookhttp.ComputeSignature(testSecret, refund))
	resp := decodeWebhookResponse(t, recorder)
	if resp.Attributed == nil || !*resp.Attributed {
		t.Fatalf("expected refund attribution: %+v", resp)
	}

	refunds := module.Store.Refunds().All()
	if len(refunds) != 1 {
		t.Fatalf("expected one refund row, got %d", len(refunds))
	}
	if refunds[0].AmountCents != 2001 || refunds[0].MatchID != "match-1" {
		t.Fatalf("unexpected refund row: %+v", refunds[0])
	}
}

func TestFulfillmentWebhookReschedulesAndNotifies(t *testing.T) {
	rescheduler := &recordingRescheduler{}
	notifier := &recordingNotifier{}
	module := newWebhookModule(stubFulfillmentMarker{known: true, updated: true}, rescheduler, notifier)
	body := []byte(`{"order_id": 1001, "tracking_number": "TRACK-1", "tracking_url": "https://carrier.example.com/TRACK-1"}`)

	recorder := postWebhook(t, module, webhookhttp.TopicFulfillmentsCreate, body, webhookhttp.ComputeSignature(testSecret, body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", recorder.Code, recorder.Body.String())
	}
	if len(rescheduler.calls) != 1 || rescheduler.calls[0] != "match-1" {
		t.Fatalf("expected deliverable reschedule for match-1, got %v", rescheduler.calls)
	}
	if notifier.CountOfType("order_shipped") != 1 {
		t.Fatalf("expected one order_shipped notification, got %d", notifier.CountOfType("order_shipped"))
	}
}

func TestFulfillmentWebhookReplayDoesNotReschedule(t *testing.T) {
	rescheduler := &recordingRescheduler{}
	module := newWebhookModule(stubFulfillmentMarker{known: true, updated: false}, rescheduler, &recordingNotifier{})
	body := []byte(`{"order_id": 1001, "tracking_number": "TRACK-1"}`)

	recorder := postWebhook(t, module, webhookhttp.TopicFulfillmentsCreate, body, webhookhttp.ComputeSignature(testSecret, body))
	resp := decodeWebhookResponse(t, recorder)
	if !resp.Deduped {
		t.Fatalf("expected replayed fulfillment to report deduped: %+v", resp)
	}
	if len(rescheduler.calls) != 0 {
		t.Fatalf("replay must not reschedule, got %v", rescheduler.calls)
	}
}

func TestSubscriptionWebhookUpdatesStoreConfig(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := []byte(`{"status": "ACTIVE", "plan_name": "growth", "metadata": {"brand_id": ""}}`)

	recorder := postWebhook(t, module, webhookhttp.TopicSubscriptionUpdated, body, webhookhttp.ComputeSignature(testSecret, body))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", recorder.Code, recorder.Body.String())
	}
	resp := decodeWebhookResponse(t, recorder)
	if resp.Updated == nil || !*resp.Updated {
		t.Fatalf("expected subscription update: %+v", resp)
	}
}

func TestWebhookUnknownTopicIs404(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := []byte(`{}`)

	recorder := postWebhook(t, module, "carts-create", body, webhookhttp.ComputeSignature(testSecret, body))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", recorder.Code)
	}
}

func TestWebhookMissingStoreConfigIs500(t *testing.T) {
	module := newWebhookModule(stubFulfillmentMarker{}, &recordingRescheduler{}, &recordingNotifier{})
	body := orderBody(1001, "NADIA10")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/commerce/orders-create", bytes.NewReader(body))
	req.Header.Set(webhookhttp.HeaderShopDomain, "unknown-shop.example.com")
	req.Header.Set(webhookhttp.HeaderSignature, webhookhttp.ComputeSignature(testSecret, body))
	recorder := httptest.NewRecorder()
	module.Handler.HandleWebhook(recorder, req, webhookhttp.TopicOrdersCreate)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", recorder.Code)
	}
	var errResp httptransport.ErrorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "store_config_missing" {
		t.Fatalf("error code %q, want store_config_missing", errResp.Code)
	}
}
