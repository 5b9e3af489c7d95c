package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const accessTokenPath = "/admin/oauth/access_token"

// AssociatedUser is present on online (per-user) access tokens.
type AssociatedUser struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AccountOwner  bool   `json:"account_owner"`
	Locale        string `json:"locale"`
	Collaborator  bool   `json:"collaborator"`
}

// AccessToken is the payload returned by the access token endpoint. Raw holds
// the response body exactly as received; fields whose JSON type does not match
// are left zero.
type AccessToken struct {
	AccessToken         string          `json:"access_token"`
	Scope               string          `json:"scope"`
	ExpiresIn           int64           `json:"expires_in,omitempty"`
	AssociatedUserScope string          `json:"associated_user_scope,omitempty"`
	AssociatedUser      *AssociatedUser `json:"associated_user,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Online reports whether the token is a per-user token.
func (t *AccessToken) Online() bool {
	return t.AssociatedUser != nil || t.ExpiresIn > 0
}

// Field order matches the documented request body.
type accessTokenRequest struct {
	ClientSecret string `json:"client_secret"`
	ClientID     string `json:"client_id"`
	Code         string `json:"code"`
}

// ExchangeToken trades an authorization code for an access token on shop,
// which is used as the request host verbatim.
//
// Exactly one request is made and redirects are not followed. Failures are reported as *TimeoutError,
// *ResponseError, *DecodeError, or the transport error unchanged.
func (c *Client) ExchangeToken(ctx context.Context, shop, code string) (*AccessToken, error) {
	body, err := json.Marshal(accessTokenRequest{
		ClientSecret: c.sharedSecret,
		ClientID:     c.apiKey,
		Code:         code,
	})
	if err != nil {
		return nil, err
	}

	timedOut := &TimeoutError{Shop: shop, Timeout: c.timeout}
	ctx, cancel := context.WithTimeoutCause(ctx, c.timeout, timedOut)
	defer cancel()

	u := "https://" + shop + accessTokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log := c.log.With(zap.String("shop", shop))
	log.Debug("shopify: requesting access token")
	start := time.Now()

	// Redirects are returned, not followed, so the secret is only ever posted
	// to shop.
	hc := *c.httpClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := hc.Do(req)
	if err != nil {
		if context.Cause(ctx) == timedOut {
			log.Debug("shopify: access token request timed out", zap.Duration("elapsed", time.Since(start)))
			return nil, timedOut
		}
		log.Debug("shopify: access token request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	// Token payloads are small; buffer the whole body before classifying.
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		if context.Cause(ctx) == timedOut {
			log.Debug("shopify: access token response timed out", zap.Duration("elapsed", time.Since(start)))
			return nil, timedOut
		}
		return nil, err
	}

	log.Debug("shopify: access token response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if !json.Valid(b) {
		return nil, &DecodeError{StatusCode: resp.StatusCode, Body: string(b), Err: errors.New("invalid json")}
	}

	// Any valid JSON is a success. Typed fields are filled best-effort; Raw is
	// authoritative.
	var t AccessToken
	if err := json.Unmarshal(b, &t); err != nil {
		log.Debug("shopify: access token payload partially decoded", zap.Error(err))
	}
	t.Raw = json.RawMessage(b)
	return &t, nil
}

// AccessTokenString performs ExchangeToken and returns only the access_token
// field.
func (c *Client) AccessTokenString(ctx context.Context, shop, code string) (string, error) {
	t, err := c.ExchangeToken(ctx, shop, code)
	if err != nil {
		return "", err
	}
	if t.AccessToken == "" {
		return "", fmt.Errorf("shopify: access token response has no access_token")
	}
	return t.AccessToken, nil
}
