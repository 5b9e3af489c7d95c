package shopify

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SessionTokenClaims struct {
	jwt.RegisteredClaims

	// Shopify uses custom claims; we only rely on a few.
	Dest string `json:"dest,omitempty"` // e.g. https://{shop}
	Sid  string `json:"sid,omitempty"`
}

type VerifiedSession struct {
	ShopDomain string
	UserID     string
	SessionID  string
	ExpiresAt  time.Time
}

// VerifySessionToken verifies an embedded app session token (JWT, HS256)
// signed with the app's shared secret. The audience must contain the API key.
func (c *Client) VerifySessionToken(tokenString string, now time.Time) (*VerifiedSession, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	claims := &SessionTokenClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(c.sharedSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if !slices.Contains([]string(claims.Audience), c.apiKey) {
		return nil, fmt.Errorf("audience mismatch")
	}

	shopDomain := extractShopFromClaims(claims)
	if shopDomain == "" {
		return nil, fmt.Errorf("missing shop in token")
	}

	return &VerifiedSession{
		ShopDomain: shopDomain,
		UserID:     claims.Subject,
		SessionID:  claims.Sid,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

func extractShopFromClaims(c *SessionTokenClaims) string {
	// Prefer dest: "https://{shop}"
	if s := trimShopURL(c.Dest); s != "" {
		return s
	}
	// Fallback: iss is https://{shop}/admin
	return strings.TrimSuffix(trimShopURL(c.Issuer), "/admin")
}

func trimShopURL(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.TrimSuffix(s, "/")
}
