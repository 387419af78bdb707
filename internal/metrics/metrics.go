// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	ContactSubmissions   *prometheus.CounterVec
	VerificationFailures *prometheus.CounterVec
	NewsletterChanges    *prometheus.CounterVec
	Events               *prometheus.CounterVec
	RateLimited          *prometheus.CounterVec
}

// New registers the collectors on a fresh registry so tests and multiple
// apps in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		ContactSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matifood",
			Name:      "contact_submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"result"}),
		VerificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matifood",
			Name:      "verification_failures_total",
			Help:      "Bot verification failures by reason.",
		}, []string{"reason"}),
		NewsletterChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matifood",
			Name:      "newsletter_changes_total",
			Help:      "Newsletter subscribe and unsubscribe operations.",
		}, []string{"action"}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matifood",
			Name:      "analytics_events_total",
			Help:      "Tracked analytics events by name.",
		}, []string{"event"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matifood",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limiter.",
		}, []string{"limiter"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
