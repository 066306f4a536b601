package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Registration metrics
	PatientsCreated          prometheus.Counter
	PatientsUpdated          prometheus.Counter
	PatientsDeleted          prometheus.Counter
	MedicalRecordAllocations *prometheus.CounterVec
	TicketsRendered          prometheus.Counter

	// Session metrics
	LoginAttempts *prometheus.CounterVec
}

// NewMetrics creates all application metrics on a dedicated registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		// Registration metrics
		PatientsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_created_total",
			Help:      "Total number of registered patients",
		}),
		PatientsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_updated_total",
			Help:      "Total number of patient updates",
		}),
		PatientsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patients_deleted_total",
			Help:      "Total number of deleted patients",
		}),
		MedicalRecordAllocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "medical_record_allocations_total",
			Help:      "Total number of medical record number allocations",
		}, []string{"status"}),
		TicketsRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_rendered_total",
			Help:      "Total number of rendered E-Tickets",
		}),

		// Session metrics
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of operator login attempts",
		}, []string{"status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Status labels shared by outcome counters.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)
