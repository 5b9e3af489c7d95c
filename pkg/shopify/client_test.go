package shopify

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey      = "foo"
	testSecret      = "bar"
	testRedirectURI = "https://example.com/callback"
)

var hex32 = regexp.MustCompile(`^[0-9a-f]{32}$`)

func newTestClient(t *testing.T, mutate ...func(*Options)) *Client {
	t.Helper()
	opts := Options{
		APIKey:       testAPIKey,
		SharedSecret: testSecret,
		RedirectURI:  testRedirectURI,
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingRequiredOption(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		option string
	}{
		{"api key", Options{SharedSecret: "s", RedirectURI: "r"}, "APIKey"},
		{"shared secret", Options{APIKey: "k", RedirectURI: "r"}, "SharedSecret"},
		{"redirect uri", Options{APIKey: "k", SharedSecret: "s"}, "RedirectURI"},
		{"everything", Options{}, "APIKey"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.opts)
			assert.Nil(t, c)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingCredential)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.option, cerr.Option)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := newTestClient(t)
	assert.Equal(t, []string{DefaultScope}, c.Scopes())
	assert.Equal(t, DefaultTimeout, c.Timeout())
	assert.Equal(t, testAPIKey, c.APIKey())
	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.log)
}

func TestNewClient_CopiesScopes(t *testing.T) {
	scopes := []string{"read_products"}
	c := newTestClient(t, func(o *Options) { o.Scopes = scopes })
	scopes[0] = "write_orders"
	assert.Equal(t, []string{"read_products"}, c.Scopes())
}

func TestGenerateNonce(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		nonce := GenerateNonce()
		require.Regexp(t, hex32, nonce)
		seen[nonce] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestAuthURL_Defaults(t *testing.T) {
	c := newTestClient(t)

	u, err := url.Parse(c.AuthURL("qux"))
	require.NoError(t, err)

	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "qux.myshopify.com", u.Host)
	assert.Equal(t, "/admin/oauth/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, DefaultScope, q.Get("scope"))
	assert.Regexp(t, hex32, q.Get("state"))
	assert.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	assert.Equal(t, testAPIKey, q.Get("client_id"))
	_, hasGrant := q["grant_options[]"]
	assert.False(t, hasGrant)
}

func TestAuthURL_SuffixNotDuplicated(t *testing.T) {
	c := newTestClient(t)

	a, err := url.Parse(c.AuthURL("qux"))
	require.NoError(t, err)
	b, err := url.Parse(c.AuthURL("qux.myshopify.com"))
	require.NoError(t, err)

	assert.Equal(t, a.Host, b.Host)
	assert.Equal(t, "qux.myshopify.com", NormalizeShop("qux.myshopify.com"))
}

func TestAuthURL_Overrides(t *testing.T) {
	c := newTestClient(t, func(o *Options) {
		o.Scopes = []string{"read_products"}
		o.AccessMode = "offline"
	})

	u, err := url.Parse(c.AuthURL("qux",
		WithScopes("read_content", "write_content"),
		WithState("42"),
		WithAccessMode(AccessModePerUser),
	))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "read_content,write_content", q.Get("scope"))
	assert.Equal(t, "42", q.Get("state"))
	assert.Equal(t, []string{AccessModePerUser}, q["grant_options[]"])
	assert.True(t, strings.Contains(u.RawQuery, "grant_options%5B%5D=per-user"))
}

func TestAuthURL_ClientDefaultsApply(t *testing.T) {
	c := newTestClient(t, func(o *Options) {
		o.Scopes = []string{"read_products", "write_orders"}
		o.AccessMode = AccessModePerUser
	})

	q, err := url.ParseQuery(strings.SplitN(c.AuthURL("qux"), "?", 2)[1])
	require.NoError(t, err)
	assert.Equal(t, "read_products,write_orders", q.Get("scope"))
	assert.Equal(t, AccessModePerUser, q.Get("grant_options[]"))
}

func TestAuthRequest_ReportsState(t *testing.T) {
	c := newTestClient(t)

	r := c.AuthRequest("qux")
	assert.Equal(t, "qux.myshopify.com", r.Shop)
	assert.Regexp(t, hex32, r.State)
	assert.Contains(t, r.URL, "state="+r.State)
	assert.NotEqual(t, r.State, c.AuthRequest("qux").State)
}
