// Package shopify implements the app side of Shopify's OAuth authorization
// code grant: building the authorize redirect, verifying the signed callback,
// and exchanging the authorization code for an access token.
//
// A Client is safe for concurrent use. It holds only immutable credentials and
// the HTTP client used for the token exchange.
package shopify

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// ShopDomainSuffix is appended to bare shop names.
	ShopDomainSuffix = ".myshopify.com"

	// DefaultScope is requested when no scopes are configured.
	DefaultScope = "read_content"

	// DefaultTimeout bounds a single access token exchange.
	DefaultTimeout = 60 * time.Second

	// AccessModePerUser requests an online, user scoped access token.
	AccessModePerUser = "per-user"
)

// Options configure a Client. APIKey, SharedSecret and RedirectURI are
// required.
type Options struct {
	APIKey       string
	SharedSecret string
	RedirectURI  string

	// Scopes requested by AuthURL when none are passed explicitly.
	Scopes []string

	// AccessMode is sent as grant_options[] when non-empty. Empty means an
	// offline (shop level) token.
	AccessMode string

	// Timeout bounds connect, response headers and body of the token exchange.
	Timeout time.Duration

	// HTTPClient carries the transport / connection pool for the token exchange.
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Client performs the OAuth helper operations for one Shopify app.
type Client struct {
	apiKey       string
	sharedSecret string
	redirectURI  string

	scopes     []string
	accessMode string
	timeout    time.Duration

	httpClient *http.Client
	log        *zap.Logger
}

// NewClient validates opts and returns a Client. A *ConfigError is returned
// when a required option is missing.
func NewClient(opts Options) (*Client, error) {
	switch {
	case opts.APIKey == "":
		return nil, &ConfigError{Option: "APIKey"}
	case opts.SharedSecret == "":
		return nil, &ConfigError{Option: "SharedSecret"}
	case opts.RedirectURI == "":
		return nil, &ConfigError{Option: "RedirectURI"}
	}

	c := &Client{
		apiKey:       opts.APIKey,
		sharedSecret: opts.SharedSecret,
		redirectURI:  opts.RedirectURI,
		scopes:       append([]string(nil), opts.Scopes...),
		accessMode:   opts.AccessMode,
		timeout:      opts.Timeout,
		httpClient:   opts.HTTPClient,
		log:          opts.Logger,
	}
	if len(c.scopes) == 0 {
		c.scopes = []string{DefaultScope}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: http.DefaultTransport}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// APIKey returns the app's client id.
func (c *Client) APIKey() string {
	return c.apiKey
}

// Scopes returns a copy of the default scopes.
func (c *Client) Scopes() []string {
	return append([]string(nil), c.scopes...)
}

// Timeout returns the configured exchange timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// GenerateNonce is a convenience wrapper around the package level function.
func (c *Client) GenerateNonce() string {
	return GenerateNonce()
}
