package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "representer"

// Prometheus holds the prometheus collectors of the service.
type Prometheus struct {
	Transitions *prometheus.CounterVec
	Predictions *prometheus.CounterVec
	Fit         prometheus.Histogram
	Members     prometheus.Gauge
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "training status transitions",
			}, []string{"status"}),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "ensemble predictions by outcome",
			}, []string{"outcome"}),
		Fit: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fit_seconds",
				Help:      "duration of ensemble fits",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			}),
		Members: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "members",
				Help:      "registered ensemble members",
			}),
	}
}
