package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "costume_rental"

// Metrics holds every collector the service exports. Each instance registers
// against its own registerer so tests can build isolated copies.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RentalsRegistered prometheus.Counter
	RentalsReturned   prometheus.Counter
	PenaltiesAssessed prometheus.Counter
	OperationFailures *prometheus.CounterVec
	PenaltyRate       prometheus.Gauge

	RentalsMarkedOverdue prometheus.Counter
	JobRuns              *prometheus.CounterVec
	JobDuration          *prometheus.HistogramVec
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: gatherer,

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RentalsRegistered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_registered_total",
			Help:      "Rental orders successfully registered",
		}),
		RentalsReturned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_returned_total",
			Help:      "Rental orders successfully returned",
		}),
		PenaltiesAssessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalties_assessed_total",
			Help:      "Sum of late penalties computed at return",
		}),
		OperationFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_failures_total",
				Help:      "Failed ledger and lifecycle operations by error kind",
			},
			[]string{"operation", "kind"},
		),
		PenaltyRate: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "penalty_per_day",
			Help:      "Currently configured penalty per late day",
		}),

		RentalsMarkedOverdue: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rentals_marked_overdue_total",
			Help:      "Rentals moved from ACTIVE to OVERDUE by the sweep",
		}),
		JobRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Scheduled job executions by outcome",
			},
			[]string{"job", "status"},
		),
		JobDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Duration of scheduled jobs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job"},
		),
	}
}

func (m *Metrics) RecordReturn(penalty decimal.Decimal) {
	m.RentalsReturned.Inc()
	m.PenaltiesAssessed.Add(penalty.InexactFloat64())
}

func (m *Metrics) RecordFailure(operation, kind string) {
	m.OperationFailures.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) SetPenaltyRate(rate decimal.Decimal) {
	m.PenaltyRate.Set(rate.InexactFloat64())
}

// RecordJob counts one job execution. status is "success", "failed" or
// "panic".
func (m *Metrics) RecordJob(job, status string, elapsed time.Duration) {
	m.JobRuns.WithLabelValues(job, status).Inc()
	m.JobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by route template,
// so /rentals/17 and /rentals/18 share one series.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
