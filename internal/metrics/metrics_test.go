package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"shopifyoauth/pkg/shopify"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{&shopify.TimeoutError{Shop: "a", Timeout: time.Second}, OutcomeTimeout},
		{&shopify.ResponseError{StatusCode: 400, Body: "err"}, OutcomeRemote},
		{&shopify.DecodeError{StatusCode: 200, Body: "foo", Err: errors.New("bad")}, OutcomeDecode},
		{errors.New("connection reset"), OutcomeTransport},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveExchange(nil, 10*time.Millisecond)
	m.ObserveExchange(&shopify.ResponseError{StatusCode: 400}, time.Millisecond)
	m.ObserveExchange(&shopify.ResponseError{StatusCode: 500}, time.Millisecond)
	m.ObserveCallback("installed")
	m.ObserveWebhook("app/uninstalled", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.exchanges.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.exchanges.WithLabelValues(OutcomeRemote)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callbacks.WithLabelValues("installed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.webhooks.WithLabelValues("app/uninstalled", "true")))
}
