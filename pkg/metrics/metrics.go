package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections prometheus.Gauge
	DBInUse           prometheus.Gauge
	DBIdle            prometheus.Gauge
	DBWaitCount       prometheus.Gauge

	// Фоновый обход слотов
	SweepRuns          prometheus.Counter
	SweepUpcomingSlots prometheus.Gauge
	SweepOpenSeats     *prometheus.GaugeVec
}

// New регистрирует метрики в стандартном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer регистрирует метрики в переданном реестре (используется в тестах)
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}),
		DBInUse: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),
		DBIdle: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}),
		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),

		SweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Name:        "sweep_runs_total",
			Help:        "Number of completed slot sweeps",
			ConstLabels: constLabels,
		}),
		SweepUpcomingSlots: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "sweep_upcoming_slots",
			Help:        "Slots starting within the sweep lookahead",
			ConstLabels: constLabels,
		}),
		SweepOpenSeats: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "sweep_open_makeup_seats",
			Help:        "Remaining makeup seats within the sweep lookahead",
			ConstLabels: constLabels,
		}, []string{"class_band"}),
	}
}
