package shopify

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingCredential is matched by every *ConfigError.
	ErrMissingCredential = errors.New("shopify: missing required option")

	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = errors.New("shopify: request timed out")
)

// ConfigError is returned by NewClient when a required option is empty.
type ConfigError struct {
	Option string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("shopify: missing required option %q", e.Option)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingCredential
}

// TimeoutError reports that the access token request did not complete within
// the configured timeout. It never carries a status code or body.
type TimeoutError struct {
	Shop    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("shopify: access token request to %s timed out after %s", e.Shop, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ResponseError is returned when the access token endpoint answers with a
// status other than 200. Body holds the raw response text.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("shopify: access token request failed: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("shopify: access token request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// DecodeError is returned when a 200 response carries a body that is not a
// JSON access token payload.
type DecodeError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("shopify: decode access token response failed: %v body=%s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
