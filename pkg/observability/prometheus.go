package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
)

const namespace = "mdbook_svg"

// PrometheusHooks implements RenderHooks, CacheHooks and HTTPHooks with
// Prometheus collectors registered on one registry.
type PrometheusHooks struct {
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	views          *prometheus.CounterVec
	builds         *prometheus.CounterVec
	buildDuration  prometheus.Histogram
	cacheOps       *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestTime    *prometheus.HistogramVec
}

// NewPrometheusHooks registers the collectors on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "total",
			Help:      "Total number of diagram renders by backend and result code.",
		}, []string{"backend", "code"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "The duration of diagram renders.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"backend"}),
		views: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "views_total",
			Help:      "Total number of views produced by successful renders.",
		}, []string{"backend"}),
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "total",
			Help:      "Total number of preprocessor builds by result code.",
		}, []string{"code"}),
		buildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "The duration of preprocessor builds.",
		}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Total number of cache operations by key type and outcome.",
		}, []string{"key_type", "op"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Total number of bytes written to the cache.",
		}, []string{"key_type"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of preview server requests.",
		}, []string{"method", "route", "status"}),
		requestTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "The duration of preview server requests.",
		}, []string{"method", "route"}),
	}
}

func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func (h *PrometheusHooks) OnRenderStart(context.Context, string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, backend string, views int, d time.Duration, err error) {
	h.renders.WithLabelValues(backend, resultCode(err)).Inc()
	h.renderDuration.WithLabelValues(backend).Observe(d.Seconds())
	if err == nil {
		h.views.WithLabelValues(backend).Add(float64(views))
	}
}

func (h *PrometheusHooks) OnBuildStart(context.Context, int) {}

func (h *PrometheusHooks) OnBuildComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.builds.WithLabelValues(resultCode(err)).Inc()
	h.buildDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ RenderHooks = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)
