package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so several instances can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	patientsRegistered     prometheus.Counter
	appointmentsBooked     prometheus.Counter
	prescriptionsDispensed *prometheus.CounterVec
	operationFailures      *prometheus.CounterVec
	triageDepth            prometheus.Gauge
	arrivalLedgerSize      prometheus.Gauge

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector creates and registers the clinic metrics. withRuntime adds the
// Go runtime and process collectors.
func NewCollector(withRuntime bool) *Collector {
	c := &Collector{
		patientsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_patients_registered_total",
			Help: "Total number of registered patients",
		}),
		appointmentsBooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinic_appointments_booked_total",
			Help: "Total number of booked appointments",
		}),
		prescriptionsDispensed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_prescriptions_dispensed_total",
			Help: "Total number of dispensed prescriptions",
		}, []string{"medication"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_operation_failures_total",
			Help: "Total number of rejected clinic operations",
		}, []string{"operation", "reason"}),
		triageDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clinic_triage_queue_depth",
			Help: "Number of entries in the triage queue",
		}),
		arrivalLedgerSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clinic_arrival_ledger_size",
			Help: "Number of entries in the arrival ledger",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		c.patientsRegistered,
		c.appointmentsBooked,
		c.prescriptionsDispensed,
		c.operationFailures,
		c.triageDepth,
		c.arrivalLedgerSize,
		c.httpRequestsTotal,
		c.httpRequestDuration,
	)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) PatientRegistered() { c.patientsRegistered.Inc() }

func (c *Collector) AppointmentBooked() { c.appointmentsBooked.Inc() }

func (c *Collector) PrescriptionDispensed(medication string) {
	c.prescriptionsDispensed.WithLabelValues(medication).Inc()
}

func (c *Collector) OperationFailed(operation, reason string) {
	c.operationFailures.WithLabelValues(operation, reason).Inc()
}

func (c *Collector) QueueSizes(triage, arrivals int) {
	c.triageDepth.Set(float64(triage))
	c.arrivalLedgerSize.Set(float64(arrivals))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Middleware records request counts and latency per route template, so
// /patients/P001 and /patients/P002 share a series.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method
			c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
