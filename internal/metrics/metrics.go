package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LoginsTotal     *prometheus.CounterVec
	SessionsIssued  prometheus.Counter
	SessionsRevoked prometheus.Counter
	SweepDeleted    *prometheus.CounterVec
	UploadsTotal    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "album_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "album_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "album_auth_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		SessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "album_sessions_issued_total",
			Help: "Sessions issued on login or registration",
		}),
		SessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "album_sessions_revoked_total",
			Help: "Sessions revoked explicitly",
		}),
		SweepDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "album_sweep_deleted_total",
				Help: "Rows removed by the periodic sweep",
			},
			[]string{"kind"},
		),
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "album_uploads_total",
				Help: "File uploads by kind and result",
			},
			[]string{"kind", "result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.SessionsIssued,
		m.SessionsRevoked,
		m.SweepDeleted,
		m.UploadsTotal,
	)

	return m
}

// New returns metrics on a private registry. Tests use it to avoid
// duplicate registration on the default registry.
func New() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
