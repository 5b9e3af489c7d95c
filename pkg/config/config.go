package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"shopifyoauth/pkg/shopify"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	// PublicBaseURL is the externally reachable URL for this backend. When set
	// and SHOPIFY_REDIRECT_URL is not, the redirect defaults to
	// {PublicBaseURL}/v1/auth/callback.
	PublicBaseURL string

	Shopify ShopifyConfig
}

type ShopifyConfig struct {
	APIKey      string
	APISecret   string
	Scopes      []string
	RedirectURL string
	AccessMode  string
	Timeout     time.Duration

	// WebhookSecret verifies webhook deliveries. Falls back to APISecret.
	WebhookSecret string
}

// envKeys maps environment variables onto config keys. Variables not listed
// here are ignored.
var envKeys = map[string]string{
	"APP_ENV":                "app.env",
	"HTTP_ADDR":              "http.addr",
	"PUBLIC_BASE_URL":        "public.baseURL",
	"SHOPIFY_API_KEY":        "shopify.apiKey",
	"SHOPIFY_API_SECRET":     "shopify.apiSecret",
	"SHOPIFY_SCOPES":         "shopify.scopes",
	"SHOPIFY_REDIRECT_URL":   "shopify.redirectURL",
	"SHOPIFY_ACCESS_MODE":    "shopify.accessMode",
	"SHOPIFY_TIMEOUT":        "shopify.timeout",
	"SHOPIFY_WEBHOOK_SECRET": "shopify.webhookSecret",
}

var defaults = map[string]any{
	"app.env":         "dev",
	"http.addr":       ":8081",
	"shopify.scopes":  shopify.DefaultScope,
	"shopify.timeout": shopify.DefaultTimeout.String(),
}

// Load reads configuration from, in increasing precedence: built-in defaults,
// the YAML file named by CONFIG_FILE, and the environment. A .env file in the
// working directory is loaded into the environment first.
func Load() (Config, error) {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	if os.Getenv("HTTP_ADDR") == "" {
		if port := os.Getenv("PORT"); port != "" {
			_ = k.Set("http.addr", ":"+port)
		}
	}

	// Empty variables are skipped so they don't mask defaults or the file.
	envProvider := env.ProviderWithValue("", ".", func(name, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envKeys[name], value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (Config, error) {
	timeout, err := time.ParseDuration(k.String("shopify.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHOPIFY_TIMEOUT %q: %w", k.String("shopify.timeout"), err)
	}

	cfg := Config{
		AppEnv:        k.String("app.env"),
		HTTPAddr:      k.String("http.addr"),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(k.String("public.baseURL")), "/"),
		Shopify: ShopifyConfig{
			APIKey:        k.String("shopify.apiKey"),
			APISecret:     k.String("shopify.apiSecret"),
			Scopes:        splitList(k.String("shopify.scopes")),
			RedirectURL:   k.String("shopify.redirectURL"),
			AccessMode:    k.String("shopify.accessMode"),
			Timeout:       timeout,
			WebhookSecret: k.String("shopify.webhookSecret"),
		},
	}
	if cfg.Shopify.RedirectURL == "" && cfg.PublicBaseURL != "" {
		cfg.Shopify.RedirectURL = cfg.PublicBaseURL + "/v1/auth/callback"
	}
	if cfg.Shopify.WebhookSecret == "" {
		cfg.Shopify.WebhookSecret = cfg.Shopify.APISecret
	}
	return cfg, nil
}

// ShopifyOptions maps the config onto client options.
func (c Config) ShopifyOptions() shopify.Options {
	return shopify.Options{
		APIKey:       c.Shopify.APIKey,
		SharedSecret: c.Shopify.APISecret,
		RedirectURI:  c.Shopify.RedirectURL,
		Scopes:       c.Shopify.Scopes,
		AccessMode:   c.Shopify.AccessMode,
		Timeout:      c.Shopify.Timeout,
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
