package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	CallsDialed        prometheus.Counter
	CallsConnected     prometheus.Counter
	AppointmentsBooked prometheus.Counter
	LeadsSkippedDNC    prometheus.Counter
	ChatRequests       prometheus.Counter
	PaywallDenials     prometheus.Counter
	CampaignsLoaded    *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		CallsDialed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dialer_calls_dialed_total",
			Help: "Total number of outbound calls dialed",
		}),
		CallsConnected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dialer_calls_connected_total",
			Help: "Total number of calls that connected",
		}),
		AppointmentsBooked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dialer_appointments_booked_total",
			Help: "Total number of appointments booked by the dialer",
		}),
		LeadsSkippedDNC: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dialer_leads_skipped_dnc_total",
			Help: "Total number of leads skipped for do-not-call",
		}),
		ChatRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agent_chat_requests_total",
			Help: "Total number of agent chat turns requested",
		}),
		PaywallDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agent_paywall_denials_total",
			Help: "Total number of chat turns denied by the quota gate",
		}),
		CampaignsLoaded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campaigns_loaded_total",
				Help: "Total number of campaign loads by source",
			},
			[]string{"source"},
		),
	}
}

// Middleware creates an Echo middleware that records HTTP metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // Use route pattern, not actual path

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)

			return err
		}
	}
}

// RecordOutcome increments the dialer counters for a classified call
func (m *Metrics) RecordOutcome(connected, appointment bool) {
	if connected {
		m.CallsConnected.Inc()
	}
	if appointment {
		m.AppointmentsBooked.Inc()
	}
}
