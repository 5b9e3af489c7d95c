package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// WebhookHMACHeader carries base64(HMAC_SHA256(body)) on webhook deliveries.
const WebhookHMACHeader = "X-Shopify-Hmac-Sha256"

// VerifyWebhook verifies a webhook body against its signature header using
// the shared secret.
func (c *Client) VerifyWebhook(body []byte, hmacHeader string) bool {
	return VerifyWebhook(body, hmacHeader, c.sharedSecret)
}

// VerifyWebhook verifies a webhook body with an explicit secret, for apps
// whose webhook secret differs from the OAuth shared secret.
func VerifyWebhook(body []byte, hmacHeader, secret string) bool {
	if hmacHeader == "" || secret == "" {
		return false
	}
	given, err := base64.StdEncoding.DecodeString(hmacHeader)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hmac.Equal(mac.Sum(nil), given)
}

// SignWebhook returns the header value Shopify would send for body.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
