package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	decisionsTotal *prometheus.CounterVec
	ledgerWritten  *prometheus.CounterVec
	ledgerDropped  prometheus.Counter
}

// NewMetrics menginisialisasi registry beserta metrik HTTP dan ledger.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warden_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_authz_decisions_total",
		Help: "Jumlah keputusan otorisasi berdasarkan hasil dan alasan.",
	}, []string{"allowed", "reason"})
	written := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_ledger_entries_total",
		Help: "Jumlah entri ledger yang tertulis berdasarkan status integritas.",
	}, []string{"integrity"})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warden_ledger_dropped_total",
		Help: "Jumlah keputusan yang gagal masuk ledger.",
	})
	registry.MustRegister(requests, duration, decisions, written, dropped)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		decisionsTotal:  decisions,
		ledgerWritten:   written,
		ledgerDropped:   dropped,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Decision mencatat satu keputusan otorisasi.
func (m *Metrics) Decision(allowed bool, reason string) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(strconv.FormatBool(allowed), reason).Inc()
}

// EntryWritten memenuhi ledger.Stats.
func (m *Metrics) EntryWritten(integrityOK bool) {
	if m == nil {
		return
	}
	m.ledgerWritten.WithLabelValues(strconv.FormatBool(integrityOK)).Inc()
}

// EntryDropped memenuhi ledger.Stats.
func (m *Metrics) EntryDropped() {
	if m == nil {
		return
	}
	m.ledgerDropped.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
