package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopifyoauth/pkg/shopify"
)

func TestNormalizeTopic(t *testing.T) {
	tests := map[string]string{
		"orders/paid":        "orders_paid",
		"App/Uninstalled":    "app_uninstalled",
		" shop.update ":      "shop_update",
		"customers--redact/": "customers_redact",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTopic(in), in)
	}
}

func TestHandler(t *testing.T) {
	body := []byte(`{"id":1}`)

	var got []Delivery
	h := Handler{
		Secret: "hush",
		Log:    zap.NewNop().Sugar(),
		Receiver: func(ctx context.Context, d Delivery) error {
			got = append(got, d)
			return nil
		},
	}

	newReq := func(sig string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/v1/webhooks/shopify/app_uninstalled", bytes.NewReader(body))
		r.Header.Set("X-Shopify-Topic", "app/uninstalled")
		r.Header.Set("X-Shopify-Shop-Domain", "qux.myshopify.com")
		r.Header.Set("X-Shopify-Webhook-Id", "evt-1")
		r.Header.Set(shopify.WebhookHMACHeader, sig)
		return r
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newReq(shopify.SignWebhook(body, "hush")))
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, got, 1)
	assert.Equal(t, Delivery{Topic: "app_uninstalled", Shop: "qux.myshopify.com", EventID: "evt-1", Body: body}, got[0])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, newReq(shopify.SignWebhook(body, "other")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Len(t, got, 1)
}
