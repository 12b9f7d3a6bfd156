package api

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shekharupadhyay/live-typing-board/internal/queue"
)

// metrics bundles the Prometheus collectors for the HTTP surface.
type metrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	queueDepth prometheus.GaugeFunc
}

func newMetrics(reg prometheus.Registerer, listenAddr string, q *queue.RequestQueueManager) *metrics {
	labels := prometheus.Labels{"listen_addr": listenAddr}

	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "typing_board_http_requests_total",
				Help:        "Total count of HTTP requests received.",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "typing_board_http_request_duration_seconds",
				Help:        "Histogram of request durations.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "typing_board_http_inflight_requests",
			Help:        "Number of requests currently being handled.",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(m.requests, m.duration, m.inFlight)

	if q != nil {
		m.queueDepth = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "typing_board_request_queue_depth",
				Help:        "Jobs waiting in the request queue channel.",
				ConstLabels: labels,
			},
			func() float64 {
				return float64(len(q.JobQueue))
			},
		)
		reg.MustRegister(m.queueDepth)
	}

	return m
}

// metricsHandler exposes /metrics using the shared registry.
func (m *metrics) metricsHandler() http.Handler {
	return promhttp.Handler()
}

// instrument wraps the provided handler with request counters and
// duration histograms.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		normalizedPath := sanitizePath(r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start).Seconds()

		statusLabel := strconv.Itoa(rec.status)
		labels := []string{r.Method, normalizedPath, statusLabel}

		m.requests.WithLabelValues(labels...).Inc()
		m.duration.WithLabelValues(labels...).Observe(elapsed)
	})
}

// sanitizePath reduces label cardinality by collapsing long paths.
func sanitizePath(p string) string {
	clean := path.Clean(p)
	if clean == "" || clean == "." {
		return "/"
	}

	segments := strings.Split(clean, "/")
	out := segments
	if len(segments) > 4 {
		out = append(segments[:4], "...")
	}

	res := strings.Join(out, "/")
	if !strings.HasPrefix(res, "/") {
		res = "/" + res
	}

	return res
}

// statusRecorder captures the final status code for metrics purposes.
// It must keep Hijacker support intact or websocket upgrades break.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("statusRecorder: underlying ResponseWriter does not support hijacking")
}
