package shopify

import (
	"crypto/rand"
	"encoding/hex"
)

const nonceBytes = 16

// GenerateNonce returns 32 hex characters drawn from crypto/rand. It is used
// as the OAuth state parameter.
func GenerateNonce() string {
	b := make([]byte, nonceBytes)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
