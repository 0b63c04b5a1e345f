package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "netintel"

// Metrics holds the Prometheus collectors for the API. All methods are no-ops on nil.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	TrafficAnalyses  prometheus.Counter
	RiskScore        prometheus.Histogram
	AlertsGenerated  *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
}

// New registers every collector on a fresh registry so several instances can coexist.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		TrafficAnalyses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traffic_analyses_total",
			Help:      "Traffic samples scored",
		}),
		RiskScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of traffic risk scores",
			Buckets:   []float64{0, 20, 30, 50, 80, 100, 130, 180},
		}),
		AlertsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_generated_total",
			Help:      "Alerts raised by severity",
		}, []string{"severity"}),
		ProviderRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Calls to external embedding and guidance providers by outcome",
		}, []string{"provider", "outcome"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) ObserveAnalysis(riskScore int) {
	if m == nil {
		return
	}
	m.TrafficAnalyses.Inc()
	m.RiskScore.Observe(float64(riskScore))
}

func (m *Metrics) AlertRaised(severity string) {
	if m == nil {
		return
	}
	m.AlertsGenerated.WithLabelValues(severity).Inc()
}

// ProviderCall records an outbound provider request; outcome is "ok" or "error".
func (m *Metrics) ProviderCall(provider string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
}
