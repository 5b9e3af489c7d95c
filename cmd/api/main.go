package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"shopifyoauth/internal/httpapi"
	"shopifyoauth/internal/metrics"
	"shopifyoauth/internal/webhook"
	"shopifyoauth/pkg/config"
	"shopifyoauth/pkg/logger"
	"shopifyoauth/pkg/shopify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	sugar := logger.New(cfg.AppEnv)
	defer func() { _ = sugar.Sync() }()

	opts := cfg.ShopifyOptions()
	opts.Logger = sugar.Desugar().Named("shopify")
	client, err := shopify.NewClient(opts)
	if err != nil {
		sugar.Fatalw("shopify client", "err", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:      cfg,
		Client:   client,
		Log:      sugar,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		// Token persistence belongs to the embedding app; this service only
		// records that the install happened.
		OnToken: func(ctx context.Context, shop string, token *shopify.AccessToken) error {
			sugar.Infow("access token issued", "shop", shop, "scope", token.Scope, "online", token.Online())
			return nil
		},
		OnWebhook: func(ctx context.Context, d webhook.Delivery) error {
			if d.Topic == "app_uninstalled" {
				sugar.Infow("app uninstalled", "shop", d.Shop)
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sugar.Infow("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("http serve", "err", err)
	}
	sugar.Info("stopped gracefully")
}
