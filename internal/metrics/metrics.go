package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starlink_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starlink_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	frameDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starlink_frame_duration_seconds",
			Help:    "Wall time spent producing one rendered frame.",
			Buckets: []float64{.001, .002, .004, .008, .016, .033, .066, .1, .25},
		},
	)

	refreshDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starlink_position_refresh_duration_seconds",
			Help:    "Wall time spent rebuilding the position cache.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	objectsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "starlink_objects_total",
		Help: "Catalog records accepted at ingestion.",
	})

	objectsCached = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "starlink_objects_cached",
		Help: "Objects in the current position cache generation.",
	})

	objectsVisible = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "starlink_objects_visible",
		Help: "Objects on the front hemisphere in the last frame.",
	})

	trajectoryCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starlink_trajectory_cache_total",
			Help: "Trajectory validity cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	tleElementCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "starlink_tle_element_count",
		Help: "Element sets in the active TLE dataset.",
	})

	tleAgeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "starlink_tle_age_seconds",
		Help: "Age of the active TLE dataset since fetch.",
	})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		frameDurationSeconds,
		refreshDurationSeconds,
		objectsTotal,
		objectsCached,
		objectsVisible,
		trajectoryCacheTotal,
		tleElementCount,
		tleAgeSeconds,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFrame records the wall time of one rendered frame and the number
// of front-hemisphere objects it drew.
func ObserveFrame(d time.Duration, visible int) {
	frameDurationSeconds.Observe(d.Seconds())
	objectsVisible.Set(float64(visible))
}

// ObservePositionRefresh records a position cache rebuild.
func ObservePositionRefresh(d time.Duration, cached int) {
	refreshDurationSeconds.Observe(d.Seconds())
	objectsCached.Set(float64(cached))
}

// SetObjectsTotal records the catalog size after ingestion.
func SetObjectsTotal(n int) {
	objectsTotal.Set(float64(n))
}

// TrajectoryCacheHit counts a memoized validity verdict reuse.
func TrajectoryCacheHit() {
	trajectoryCacheTotal.WithLabelValues("hit").Inc()
}

// TrajectoryCacheMiss counts a validity recomputation.
func TrajectoryCacheMiss() {
	trajectoryCacheTotal.WithLabelValues("miss").Inc()
}

// SetTLEDataset records the size of the active dataset.
func SetTLEDataset(count int) {
	tleElementCount.Set(float64(count))
}

// SetTLEAge records the age of the active dataset in seconds.
func SetTLEAge(seconds float64) {
	tleAgeSeconds.Set(seconds)
}

// knownRoutes are the exact paths the server registers. Anything else is
// collapsed into a single label so scanners cannot inflate cardinality.
var knownRoutes = map[string]bool{
	"/healthz":                     true,
	"/readyz":                      true,
	"/metrics":                     true,
	"/api/v1/stats":                true,
	"/api/v1/control/speed":        true,
	"/api/v1/control/autorotate":   true,
	"/api/v1/control/trajectories": true,
}

// normalizeRoute maps a request path to a bounded metric label.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/api/v1/groups/") && strings.HasSuffix(path, "/toggle") {
		return "/api/v1/groups/{bucket}/toggle"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
