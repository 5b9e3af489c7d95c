package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopifyoauth/internal/api"
	"shopifyoauth/internal/metrics"
	"shopifyoauth/pkg/shopify"
)

const stateCookie = "oauth_state"

// TokenHandler receives the access token after a successful install. The app
// owns persistence; returning an error fails the callback.
type TokenHandler func(ctx context.Context, shop string, token *shopify.AccessToken) error

type Handlers struct {
	Client  *shopify.Client
	Log     *zap.SugaredLogger
	Metrics *metrics.Metrics
	OnToken TokenHandler

	// SecureCookies marks the state cookie Secure. Enable behind TLS.
	SecureCookies bool
}

func (h Handlers) Install(w http.ResponseWriter, r *http.Request) {
	shopDomain := strings.TrimSpace(r.URL.Query().Get("shop"))
	if shopDomain == "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing shop")
		return
	}

	req := h.Client.AuthRequest(shopDomain)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    req.State,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.SecureCookies,
	})

	h.Log.Infow("redirecting to shopify authorize", "shop", req.Shop, "scopes", req.Scopes)
	http.Redirect(w, r, req.URL, http.StatusFound)
}

func (h Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	shopDomain := strings.TrimSpace(qs.Get("shop"))
	code := strings.TrimSpace(qs.Get("code"))

	if shopDomain == "" || code == "" {
		h.observe("invalid_request")
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "missing shop or code")
		return
	}

	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || subtle.ConstantTimeCompare([]byte(c.Value), []byte(qs.Get("state"))) != 1 {
		h.observe("invalid_state")
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid oauth state")
		return
	}

	if !h.Client.ValidateHMAC(qs) {
		h.observe("invalid_hmac")
		h.Log.Warnw("callback hmac rejected", "shop", shopDomain)
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "invalid hmac")
		return
	}

	start := time.Now()
	token, err := h.Client.ExchangeToken(r.Context(), shopDomain, code)
	if h.Metrics != nil {
		h.Metrics.ObserveExchange(err, time.Since(start))
	}
	if err != nil {
		h.observe("exchange_failed")
		h.writeExchangeError(w, shopDomain, err)
		return
	}

	if h.OnToken != nil {
		if err := h.OnToken(r.Context(), shopDomain, token); err != nil {
			h.observe("token_handler_failed")
			h.Log.Errorw("token handler failed", "shop", shopDomain, "err", err)
			api.WriteError(w, http.StatusInternalServerError, api.CodeInternal, "failed to store access token")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.SecureCookies,
	})

	h.observe("installed")
	h.Log.Infow("shop installed", "shop", shopDomain, "scope", token.Scope, "online", token.Online())
	_, _ = w.Write([]byte("installed"))
}

func (h Handlers) writeExchangeError(w http.ResponseWriter, shopDomain string, err error) {
	var rerr *shopify.ResponseError
	var derr *shopify.DecodeError
	switch {
	case errors.Is(err, shopify.ErrTimeout):
		h.Log.Warnw("token exchange timed out", "shop", shopDomain, "err", err)
		api.WriteError(w, http.StatusGatewayTimeout, api.CodeUpstreamTimeout, "token exchange timed out")
	case errors.As(err, &rerr):
		h.Log.Errorw("token exchange rejected", "shop", shopDomain, "status", rerr.StatusCode, "body", rerr.Body)
		api.WriteError(w, http.StatusBadGateway, api.CodeUpstreamFailed, "token exchange failed")
	case errors.As(err, &derr):
		h.Log.Errorw("token exchange returned invalid json", "shop", shopDomain, "body", derr.Body)
		api.WriteError(w, http.StatusBadGateway, api.CodeUpstreamFailed, "token exchange failed")
	default:
		h.Log.Errorw("token exchange transport error", "shop", shopDomain, "err", err)
		api.WriteError(w, http.StatusBadGateway, api.CodeUpstreamFailed, "token exchange failed")
	}
}

func (h Handlers) observe(result string) {
	if h.Metrics != nil {
		h.Metrics.ObserveCallback(result)
	}
}
