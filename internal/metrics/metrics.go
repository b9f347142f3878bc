package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/mock-auction/internal/auction"
)

// Transaction results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected" // validation failure, state unchanged
	ResultError    = "error"
)

// Metrics holds every collector, registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	transactions  *prometheus.CounterVec
	txDuration    *prometheus.HistogramVec
	flushes       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	wsClients     prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates and registers all collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auction_transactions_total",
				Help: "Auction transactions by operation and result.",
			},
			[]string{"op", "result"},
		),
		txDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auction_transaction_duration_seconds",
				Help:    "Duration of auction transactions by operation.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"op"},
		),
		flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auction_persist_flushes_total",
				Help: "Snapshot saves by result.",
			},
			[]string{"result"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auction_notifications_total",
				Help: "Sale notifications per client by outcome.",
			},
			[]string{"outcome"},
		),
		wsClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "auction_ws_clients",
				Help: "Connected notification clients.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by path/method/code.",
			},
			[]string{"path", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests by path/method/code.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method", "code"},
		),
	}

	m.registry.MustRegister(
		m.transactions,
		m.txDuration,
		m.flushes,
		m.notifications,
		m.wsClients,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTransaction implements auction.Observer.
func (m *Metrics) ObserveTransaction(op auction.Op, start time.Time, err error) {
	result := ResultOK
	switch {
	case err == nil:
	case auction.IsValidation(err):
		result = ResultRejected
	default:
		result = ResultError
	}
	m.transactions.WithLabelValues(string(op), result).Inc()
	m.txDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
}

// ObserveFlush implements writer.FlushObserver.
func (m *Metrics) ObserveFlush(err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.flushes.WithLabelValues(result).Inc()
}

// ObserveNotification implements notify.HubObserver.
func (m *Metrics) ObserveNotification(delivered, dropped int) {
	m.notifications.WithLabelValues("delivered").Add(float64(delivered))
	m.notifications.WithLabelValues("dropped").Add(float64(dropped))
}

// SetClients implements notify.HubObserver.
func (m *Metrics) SetClients(n int) {
	m.wsClients.Set(float64(n))
}

// Middleware counts requests by matched route pattern. Unmatched requests
// share one label to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(rec.status)
		m.httpRequests.WithLabelValues(path, r.Method, code).Inc()
		m.httpDuration.WithLabelValues(path, r.Method, code).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes websocket upgrades through to the underlying writer.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
