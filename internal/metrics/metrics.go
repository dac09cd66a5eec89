package metrics

import (
	"time"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics provides observability for the HTTP layer and the request lifecycle.
// Every method is safe on a nil receiver.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	RequestEvents    *prometheus.CounterVec
	PaymentAttempts  *prometheus.CounterVec
	SLABreaches      prometheus.Gauge
	LoginRateLimited prometheus.Counter
	LiveClients      prometheus.Gauge
}

// New registers all metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eduverify_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eduverify_http_request_duration_seconds",
			Help:    "HTTP request latency including simulated delays",
			Buckets: latencyBuckets,
		}, []string{"method", "route"}),
		RequestEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eduverify_request_events_total",
			Help: "Verification request lifecycle events by type",
		}, []string{"type"}),
		PaymentAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eduverify_payment_attempts_total",
			Help: "Simulated payment attempts by outcome",
		}, []string{"status"}),
		SLABreaches: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eduverify_sla_breaches",
			Help: "In-progress requests past their due date at the last SLA check",
		}),
		LoginRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "eduverify_login_rate_limited_total",
			Help: "Login attempts rejected by the rate limiter",
		}),
		LiveClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eduverify_live_clients",
			Help: "Connected live update clients",
		}),
	}
}

// ObserveHTTP records one served HTTP request
func (m *Metrics) ObserveHTTP(method, route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// Publish counts lifecycle events, so Metrics can sit behind an event publisher
func (m *Metrics) Publish(event model.RequestEvent) {
	if m == nil {
		return
	}
	m.RequestEvents.WithLabelValues(string(event.Type)).Inc()
}

func (m *Metrics) IncrementPaymentAttempt(status string) {
	if m == nil {
		return
	}
	m.PaymentAttempts.WithLabelValues(status).Inc()
}

func (m *Metrics) SetSLABreaches(n int) {
	if m == nil {
		return
	}
	m.SLABreaches.Set(float64(n))
}

func (m *Metrics) IncrementLoginRateLimited() {
	if m == nil {
		return
	}
	m.LoginRateLimited.Inc()
}

func (m *Metrics) SetLiveClients(n int) {
	if m == nil {
		return
	}
	m.LiveClients.Set(float64(n))
}
