package shopify

import (
	"net/url"
	"strings"
)

// AuthorizationRequest is the resolved form of one authorize redirect.
type AuthorizationRequest struct {
	Shop       string
	Scopes     []string
	State      string
	AccessMode string
	URL        string
}

// AuthURLOption overrides a client default for a single redirect.
type AuthURLOption func(*AuthorizationRequest)

// WithScopes overrides the client's default scopes.
func WithScopes(scopes ...string) AuthURLOption {
	return func(r *AuthorizationRequest) {
		r.Scopes = scopes
	}
}

// WithState uses the given nonce instead of generating one.
func WithState(state string) AuthURLOption {
	return func(r *AuthorizationRequest) {
		r.State = state
	}
}

// WithAccessMode overrides the client's default access mode.
func WithAccessMode(mode string) AuthURLOption {
	return func(r *AuthorizationRequest) {
		r.AccessMode = mode
	}
}

// NormalizeShop returns the shop's myshopify.com host. Names that already end
// with the suffix are returned unchanged; nothing else is validated.
func NormalizeShop(shop string) string {
	if strings.HasSuffix(shop, ShopDomainSuffix) {
		return shop
	}
	return shop + ShopDomainSuffix
}

// AuthRequest resolves scopes, state and access mode for shop and builds the
// authorize URL. Callers that need to remember the state should use this
// rather than AuthURL.
func (c *Client) AuthRequest(shop string, opts ...AuthURLOption) AuthorizationRequest {
	r := AuthorizationRequest{
		Shop:       NormalizeShop(shop),
		Scopes:     c.scopes,
		AccessMode: c.accessMode,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if len(r.Scopes) == 0 {
		r.Scopes = c.scopes
	}
	if r.State == "" {
		r.State = GenerateNonce()
	}
	r.Scopes = append([]string(nil), r.Scopes...)

	q := url.Values{}
	q.Set("scope", strings.Join(r.Scopes, ","))
	q.Set("state", r.State)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("client_id", c.apiKey)
	if r.AccessMode != "" {
		q.Add("grant_options[]", r.AccessMode)
	}

	u := url.URL{
		Scheme:   "https",
		Host:     r.Shop,
		Path:     "/admin/oauth/authorize",
		RawQuery: q.Encode(),
	}
	r.URL = u.String()
	return r
}

// AuthURL returns the URL the merchant is redirected to in order to grant the
// app access to shop.
func (c *Client) AuthURL(shop string, opts ...AuthURLOption) string {
	return c.AuthRequest(shop, opts...).URL
}
