package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopifyoauth/pkg/shopify"
)

// clearEnv blanks every variable Load reads so the host environment does not
// leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for name := range envKeys {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	for _, name := range []string{"PORT", "CONFIG_FILE"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{shopify.DefaultScope}, cfg.Shopify.Scopes)
	assert.Equal(t, shopify.DefaultTimeout, cfg.Shopify.Timeout)
	assert.Empty(t, cfg.Shopify.AccessMode)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
	t.Setenv("SHOPIFY_SCOPES", "read_products, write_orders,")
	t.Setenv("SHOPIFY_ACCESS_MODE", shopify.AccessModePerUser)
	t.Setenv("SHOPIFY_TIMEOUT", "5s")
	t.Setenv("PUBLIC_BASE_URL", "https://app.example.com/")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, []string{"read_products", "write_orders"}, cfg.Shopify.Scopes)
	assert.Equal(t, 5*time.Second, cfg.Shopify.Timeout)
	assert.Equal(t, "https://app.example.com/v1/auth/callback", cfg.Shopify.RedirectURL)
	assert.Equal(t, "secret", cfg.Shopify.WebhookSecret)

	opts := cfg.ShopifyOptions()
	assert.Equal(t, "key", opts.APIKey)
	assert.Equal(t, "secret", opts.SharedSecret)
	assert.Equal(t, shopify.AccessModePerUser, opts.AccessMode)

	c, err := shopify.NewClient(opts)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Timeout())
}

func TestLoad_HTTPAddrBeatsPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", "127.0.0.1:7000")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTPAddr)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
shopify:
  apiKey: file-key
  apiSecret: file-secret
  redirectURL: https://file.example.com/cb
  scopes: read_content,write_content
  timeout: 30s
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SHOPIFY_API_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Shopify.APIKey)
	assert.Equal(t, "file-secret", cfg.Shopify.APISecret)
	assert.Equal(t, "https://file.example.com/cb", cfg.Shopify.RedirectURL)
	assert.Equal(t, []string{"read_content", "write_content"}, cfg.Shopify.Scopes)
	assert.Equal(t, 30*time.Second, cfg.Shopify.Timeout)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPIFY_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_EmptyEnvKeepsDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHOPIFY_TIMEOUT", "")
	t.Setenv("SHOPIFY_SCOPES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, shopify.DefaultTimeout, cfg.Shopify.Timeout)
	assert.Equal(t, []string{shopify.DefaultScope}, cfg.Shopify.Scopes)
}
