package webhook

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shopifyoauth/internal/api"
	"shopifyoauth/internal/metrics"
	"shopifyoauth/pkg/shopify"
)

// maxBodyBytes caps webhook payloads read into memory.
const maxBodyBytes = 1 << 20

// Delivery is a verified webhook.
type Delivery struct {
	Topic   string
	Shop    string
	EventID string
	Body    []byte
}

// Receiver is called for every verified delivery. Errors are logged; Shopify
// still receives a 200 so it does not retry.
type Receiver func(ctx context.Context, d Delivery) error

type Handler struct {
	Secret   string
	Log      *zap.SugaredLogger
	Metrics  *metrics.Metrics
	Receiver Receiver
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Prefer Shopify's topic header; fall back to route param.
	topic := strings.TrimSpace(r.Header.Get("X-Shopify-Topic"))
	if topic == "" {
		topic = chi.URLParam(r, "topic")
	}
	topic = NormalizeTopic(topic)

	shopDomain := strings.TrimSpace(r.Header.Get("X-Shopify-Shop-Domain"))
	hmacHeader := strings.TrimSpace(r.Header.Get(shopify.WebhookHMACHeader))
	eventID := strings.TrimSpace(r.Header.Get("X-Shopify-Webhook-Id"))
	if eventID == "" {
		eventID = strings.TrimSpace(r.Header.Get("X-Shopify-Event-Id"))
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid body")
		return
	}

	verified := shopify.VerifyWebhook(body, hmacHeader, h.Secret)
	if h.Metrics != nil {
		h.Metrics.ObserveWebhook(topic, verified)
	}
	if !verified {
		h.Log.Warnw("webhook signature rejected", "shop", shopDomain, "topic", topic)
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid webhook signature")
		return
	}

	h.Log.Infow("webhook received", "shop", shopDomain, "topic", topic, "event_id", eventID)
	if h.Receiver != nil {
		d := Delivery{Topic: topic, Shop: shopDomain, EventID: eventID, Body: body}
		if err := h.Receiver(r.Context(), d); err != nil {
			h.Log.Errorw("webhook receiver failed", "shop", shopDomain, "topic", topic, "err", err)
		}
	}

	// Shopify expects a 200 quickly.
	w.WriteHeader(http.StatusOK)
}

// NormalizeTopic converts Shopify topics ("orders/paid", "app/uninstalled")
// into a stable internal form ("orders_paid", "app_uninstalled").
func NormalizeTopic(topic string) string {
	t := strings.TrimSpace(strings.ToLower(topic))
	t = strings.NewReplacer("/", "_", ".", "_", "-", "_").Replace(t)
	for strings.Contains(t, "__") {
		t = strings.ReplaceAll(t, "__", "_")
	}
	return strings.Trim(t, "_")
}
