package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"shopifyoauth/pkg/shopify"
)

// Exchange outcomes, used as the "outcome" label.
const (
	OutcomeSuccess   = "success"
	OutcomeTimeout   = "timeout"
	OutcomeRemote    = "remote_error"
	OutcomeDecode    = "decode_error"
	OutcomeTransport = "transport_error"
)

type Metrics struct {
	exchanges        *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
	callbacks        *prometheus.CounterVec
	webhooks         *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		exchanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopify_oauth",
			Name:      "token_exchanges_total",
			Help:      "Access token exchanges by outcome.",
		}, []string{"outcome"}),
		exchangeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopify_oauth",
			Name:      "token_exchange_duration_seconds",
			Help:      "Access token exchange latency by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopify_oauth",
			Name:      "callbacks_total",
			Help:      "OAuth callbacks by result.",
		}, []string{"result"}),
		webhooks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopify_oauth",
			Name:      "webhooks_total",
			Help:      "Webhook deliveries by topic and verification result.",
		}, []string{"topic", "verified"}),
	}
}

// Outcome classifies an ExchangeToken error.
func Outcome(err error) string {
	var (
		rerr *shopify.ResponseError
		derr *shopify.DecodeError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, shopify.ErrTimeout):
		return OutcomeTimeout
	case errors.As(err, &rerr):
		return OutcomeRemote
	case errors.As(err, &derr):
		return OutcomeDecode
	default:
		return OutcomeTransport
	}
}

func (m *Metrics) ObserveExchange(err error, d time.Duration) {
	outcome := Outcome(err)
	m.exchanges.WithLabelValues(outcome).Inc()
	m.exchangeDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveCallback(result string) {
	m.callbacks.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveWebhook(topic string, verified bool) {
	v := "false"
	if verified {
		v = "true"
	}
	m.webhooks.WithLabelValues(topic, v).Inc()
}
