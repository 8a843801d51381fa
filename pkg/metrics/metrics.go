package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ieltsly/speaking-results/internal/common/config"
)

// Metrics holds the Prometheus collectors for the gateway and the
// result-fetch pipeline.
type Metrics struct {
	registry    *prometheus.Registry
	namespace   string
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	proxyCnt    *prometheus.CounterVec
	fetchCnt    *prometheus.CounterVec
	fetchDur    *prometheus.HistogramVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// New builds a registry with the standard process and Go collectors
// plus the gateway-specific metrics.
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	if ns == "" {
		ns = "speaking_results"
	}
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	r.MustRegister(httpReqCnt, httpDur)

	proxyCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "proxy_requests_total"}, []string{"status"})
	r.MustRegister(proxyCnt)

	fetchCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "session_fetch_total"}, []string{"outcome"})
	fetchDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "session_fetch_duration_seconds", Buckets: cfg.Buckets}, []string{"outcome"})
	r.MustRegister(fetchCnt, fetchDur)

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "result_cache_hits_total"})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "result_cache_misses_total"})
	r.MustRegister(cacheHits, cacheMisses)

	return &Metrics{
		registry:    r,
		namespace:   ns,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		proxyCnt:    proxyCnt,
		fetchCnt:    fetchCnt,
		fetchDur:    fetchDur,
		cacheHits:   cacheHits,
		cacheMisses: cacheMisses,
	}
}

// ObserveHTTP records one handled HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, dur time.Duration) {
	s := strconv.Itoa(status)
	m.httpReqCnt.WithLabelValues(method, route, s).Inc()
	m.httpDur.WithLabelValues(method, route, s).Observe(dur.Seconds())
}

// ObserveProxy records one proxied upstream response.
func (m *Metrics) ObserveProxy(status int) {
	m.proxyCnt.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveFetch records one session fetch by outcome: "ok" or the
// failure kind.
func (m *Metrics) ObserveFetch(outcome string, dur time.Duration) {
	m.fetchCnt.WithLabelValues(outcome).Inc()
	m.fetchDur.WithLabelValues(outcome).Observe(dur.Seconds())
}

// CacheHit increments the cache hit counter.
func (m *Metrics) CacheHit() { m.cacheHits.Inc() }

// CacheMiss increments the cache miss counter.
func (m *Metrics) CacheMiss() { m.cacheMisses.Inc() }

// Handler returns a gin handler serving the registry.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
