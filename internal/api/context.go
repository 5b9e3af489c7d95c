package api

import (
	"context"

	"shopifyoauth/pkg/shopify"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func WithSession(ctx context.Context, s *shopify.VerifiedSession) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

func SessionFromContext(ctx context.Context) *shopify.VerifiedSession {
	s, _ := ctx.Value(ctxKeySession).(*shopify.VerifiedSession)
	return s
}
