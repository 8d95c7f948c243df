package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Success marks a prediction that returned a value.
	Success = "success"
	// Rejected marks a prediction refused by the fit guards.
	Rejected = "rejected"
)

// Observer is the process wide metrics collector.
var Observer = &Metrics{
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(
		Observer.prometheus.Transitions,
		Observer.prometheus.Predictions,
		Observer.prometheus.Fit,
		Observer.prometheus.Members,
	)
}

type Metrics struct {
	prometheus Prometheus
}

// Transition counts a training status transition.
func (m *Metrics) Transition(status string) {
	m.prometheus.Transitions.WithLabelValues(status).Inc()
}

// Predict counts a prediction with the given outcome.
func (m *Metrics) Predict(outcome string) {
	m.prometheus.Predictions.WithLabelValues(outcome).Inc()
}

// Fit records the duration of a fit.
func (m *Metrics) Fit(d time.Duration) {
	m.prometheus.Fit.Observe(d.Seconds())
}

// Members sets the number of registered ensemble members.
func (m *Metrics) Members(n int) {
	m.prometheus.Members.Set(float64(n))
}

// Handler exposes the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
