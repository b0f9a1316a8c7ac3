package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is nil-safe: every method is a no-op on a nil receiver so components can be
// built without instrumentation in tests.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	tierOutcomes       *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	cacheLookups       *prometheus.CounterVec
	cacheErrors        *prometheus.CounterVec
	inferenceLatency   *prometheus.HistogramVec
	poolQueueDepth     prometheus.Gauge
	poolRejected       *prometheus.CounterVec
	retentionDeleted   prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "HTTP requests currently being served.",
		}),
		tierOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_tier_outcomes_total",
			Help:      "Tier results by tier and outcome (found, empty, failed).",
		}, []string{"tier", "outcome"}),
		generationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_generation_duration_seconds",
			Help:      "End-to-end generation latency by the algorithm that answered.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"algorithm"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_cache_lookups_total",
			Help:      "Cache lookups by key family and result (hit, miss).",
		}, []string{"family", "result"}),
		cacheErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_cache_errors_total",
			Help:      "Cache store failures by operation.",
		}, []string{"op"}),
		inferenceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_request_duration_seconds",
			Help:      "Inference call latency by status.",
			Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30},
		}, []string{"status"}),
		poolQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_queue_depth",
			Help:      "Tasks waiting in the worker pool queue.",
		}),
		poolRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_rejected_total",
			Help:      "Tasks rejected because the worker pool queue was full.",
		}, []string{"kind"}),
		retentionDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_deleted_total",
			Help:      "Recommendation rows removed by retention sweeps.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ObserveTier(tier, outcome string) {
	if m == nil {
		return
	}
	m.tierOutcomes.WithLabelValues(tier, outcome).Inc()
}

func (m *Metrics) ObserveGeneration(algorithm string, d time.Duration) {
	if m == nil {
		return
	}
	m.generationDuration.WithLabelValues(algorithm).Observe(d.Seconds())
}

func (m *Metrics) ObserveCache(family string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(family, result).Inc()
}

func (m *Metrics) CacheError(op string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveInference(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.inferenceLatency.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.poolQueueDepth.Set(float64(n))
}

func (m *Metrics) PoolRejected(kind string) {
	if m == nil {
		return
	}
	m.poolRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) RetentionDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.retentionDeleted.Add(float64(n))
}
