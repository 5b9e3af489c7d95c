package api

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopifyoauth/pkg/shopify"
)

// ShopifySessionAuth validates Shopify embedded session tokens and attaches
// the verified session to the request context.
//
// Expected header:
// - Authorization: Bearer <JWT>
func ShopifySessionAuth(client *shopify.Client, log *zap.SugaredLogger, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(authz) < 7 || !strings.EqualFold(authz[:7], "bearer ") {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing session token")
				return
			}

			vs, err := client.VerifySessionToken(strings.TrimSpace(authz[7:]), now())
			if err != nil {
				log.Debugw("session token rejected", "err", err)
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid session token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), vs)))
		})
	}
}

// Session reports the verified session for the request.
func Session(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	if s == nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "missing session")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"shop":       s.ShopDomain,
		"user_id":    s.UserID,
		"expires_at": s.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
