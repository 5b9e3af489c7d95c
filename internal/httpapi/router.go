package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shopifyoauth/internal/api"
	"shopifyoauth/internal/auth"
	"shopifyoauth/internal/metrics"
	"shopifyoauth/internal/webhook"
	"shopifyoauth/pkg/config"
	"shopifyoauth/pkg/shopify"
)

type Dependencies struct {
	Cfg      config.Config
	Client   *shopify.Client
	Log      *zap.SugaredLogger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	OnToken   auth.TokenHandler
	OnWebhook webhook.Receiver
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	authHandlers := auth.Handlers{
		Client:        deps.Client,
		Log:           deps.Log,
		Metrics:       deps.Metrics,
		OnToken:       deps.OnToken,
		SecureCookies: deps.Cfg.AppEnv == "prod",
	}
	webhookHandler := webhook.Handler{
		Secret:   deps.Cfg.Shopify.WebhookSecret,
		Log:      deps.Log,
		Metrics:  deps.Metrics,
		Receiver: deps.OnWebhook,
	}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Get("/auth/install", authHandlers.Install)
		r.Get("/auth/callback", authHandlers.Callback)

		// Embedded app requests authenticated by Shopify session tokens.
		r.Group(func(r chi.Router) {
			r.Use(api.ShopifySessionAuth(deps.Client, deps.Log, nil))
			r.Get("/session", api.Session)
		})

		r.Post("/webhooks/shopify/{topic}", webhookHandler.ServeHTTP)
	})

	return r
}
