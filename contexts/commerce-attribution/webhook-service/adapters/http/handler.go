package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"magnolia/contexts/commerce-attribution/webhook-service/application/commands"
	domainerrors "magnolia/contexts/commerce-attribution/webhook-service/domain/errors"
	"magnolia/contexts/commerce-attribution/webhook-service/ports"
	httptransport "magnolia/contexts/commerce-attribution/webhook-service/transport/http"
	"magnolia/internal/shared/directory"
)

const (
	HeaderShopDomain = "X-Shop-Domain"
	HeaderSignature  = "X-Commerce-Hmac-Sha256"

	TopicOrdersCreate        = "orders-create"
	TopicRefundsCreate       = "refunds-create"
	TopicFulfillmentsCreate  = "fulfillments-create"
	TopicSubscriptionUpdated = "subscription-updated"

	maxBodyBytes = 1 << 20
)

type Handler struct {
	IngestOrder        commands.IngestOrderUseCase
	IngestRefund       commands.IngestRefundUseCase
	IngestFulfillment  commands.IngestFulfillmentUseCase
	IngestSubscription commands.IngestSubscriptionUseCase
	Directory          ports.DirectoryReader
	Logger             *slog.Logger
}

// HandleWebhook verifies the signature over the raw body, then dispatches
// on topic. The body is read in full before any parsing.
func (h Handler) HandleWebhook(w http.ResponseWriter, r *http.Request, topic string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "body_unreadable", "could not read request body")
		return
	}

	shopDomain := r.Header.Get(HeaderShopDomain)
	store, err := h.Directory.StoreByDomain(r.Context(), shopDomain)
	if err != nil {
		if errors.Is(err, directory.ErrStoreNotFound) {
			h.writeError(w, http.StatusInternalServerError, "store_config_missing", "no store config for shop domain")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if !VerifySignature(store.WebhookSecret, body, r.Header.Get(HeaderSignature)) {
		h.log().Warn("webhook signature rejected",
			"event", "webhook_signature_rejected",
			"module", "commerce-attribution/webhook-service",
			"layer", "adapter",
			"shop_domain", shopDomain,
			"topic", topic,
		)
		h.writeError(w, http.StatusUnauthorized, "signature_mismatch", "webhook signature mismatch")
		return
	}

	switch topic {
	case TopicOrdersCreate:
		h.handleOrder(w, r, shopDomain, body)
	case TopicRefundsCreate:
		h.handleRefund(w, r, shopDomain, body)
	case TopicFulfillmentsCreate:
		h.handleFulfillment(w, r, shopDomain, body)
	case TopicSubscriptionUpdated:
		h.handleSubscription(w, r, shopDomain, body)
	default:
		h.writeError(w, http.StatusNotFound, "unknown_topic", "unknown webhook topic")
	}
}

func (h Handler) handleOrder(w http.ResponseWriter, r *http.Request, shopDomain string, body []byte) {
	var payload httptransport.OrderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "payload_invalid", "malformed order payload")
		return
	}
	codes := make([]string, 0, len(payload.DiscountCodes))
	for _, dc := range payload.DiscountCodes {
		codes = append(codes, dc.Code)
	}
	result, err := h.IngestOrder.Execute(r.Context(), commands.IngestOrderCommand{
		ShopDomain:         shopDomain,
		ExternalOrderID:    strconv.FormatInt(payload.ID, 10),
		ExternalCustomerID: strconv.FormatInt(payload.Customer.ID, 10),
		Currency:           payload.Currency,
		TotalPrice:         payload.TotalPrice,
		DiscountCodes:      codes,
	})
	h.writeIngestResult(w, result, err)
}

func (h Handler) handleRefund(w http.ResponseWriter, r *http.Request, shopDomain string, body []byte) {
	var payload httptransport.RefundPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "payload_invalid", "malformed refund payload")
		return
	}
	amounts := make([]string, 0, len(payload.Transactions))
	currency := ""
	for _, tx := range payload.Transactions {
		amounts = append(amounts, tx.Amount)
		if currency == "" {
			currency = tx.Currency
		}
	}
	result, err := h.IngestRefund.Execute(r.Context(), commands.IngestRefundCommand{
		ShopDomain:       shopDomain,
		ExternalRefundID: strconv.FormatInt(payload.ID, 10),
		ExternalOrderID:  strconv.FormatInt(payload.OrderID, 10),
		Currency:         currency,
		Amounts:          amounts,
	})
	h.writeIngestResult(w, result, err)
}

func (h Handler) handleFulfillment(w http.ResponseWriter, r *http.Request, shopDomain string, body []byte) {
	var payload httptransport.FulfillmentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "payload_invalid", "malformed fulfillment payload")
		return
	}
	result, err := h.IngestFulfillment.Execute(r.Context(), commands.IngestFulfillmentCommand{
		ShopDomain:      shopDomain,
		ExternalOrderID: strconv.FormatInt(payload.OrderID, 10),
		TrackingNumber:  payload.TrackingNumber,
		TrackingURL:     payload.TrackingURL,
	})
	h.writeIngestResult(w, result, err)
}

func (h Handler) handleSubscription(w http.ResponseWriter, r *http.Request, shopDomain string, body []byte) {
	var payload httptransport.SubscriptionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeError(w, http.StatusBadRequest, "payload_invalid", "malformed subscription payload")
		return
	}
	result, err := h.IngestSubscription.Execute(r.Context(), commands.IngestSubscriptionCommand{
		ShopDomain: shopDomain,
		BrandID:    payload.Metadata.BrandID,
		Status:     payload.Status,
		Plan:       payload.PlanName,
	})
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	updated := result.Updated
	h.writeJSON(w, http.StatusOK, httptransport.WebhookResponse{OK: true, Updated: &updated})
}

func (h Handler) writeIngestResult(w http.ResponseWriter, result commands.IngestResult, err error) {
	if err != nil {
		h.writeCommandError(w, err)
		return
	}
	attributed := result.Attributed
	h.writeJSON(w, http.StatusOK, httptransport.WebhookResponse{
		OK:         true,
		Attributed: &attributed,
		Deduped:    result.Deduped,
	})
}

func (h Handler) writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrPayloadInvalid):
		h.writeError(w, http.StatusBadRequest, "payload_invalid", err.Error())
	case errors.Is(err, domainerrors.ErrStoreConfigMissing):
		h.writeError(w, http.StatusInternalServerError, "store_config_missing", err.Error())
	default:
		// 5xx so the platform's retry policy redelivers.
		h.writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func (h Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h Handler) writeError(w http.ResponseWriter, status int, code string, message string) {
	h.writeJSON(w, status, httptransport.ErrorResponse{Code: code, Message: message})
}

func (h Handler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
