package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "corail"

// Задержки API и внешних вызовов: от 5 мс до 10 с
var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var (
	// RequestsTotal - HTTP запросы по шаблону маршрута и роли вызывающего
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Количество HTTP запросов",
		},
		[]string{"method", "route", "status", "role"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Длительность HTTP запросов в секундах",
			Buckets:   latencyBuckets,
		},
		[]string{"method", "route"},
	)

	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Запросы в обработке",
		},
	)

	// ExternalRequestsTotal - вызовы fcm, green_api, firebase_certs, amqp
	ExternalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "external",
			Name:      "requests_total",
			Help:      "Количество запросов к внешним сервисам",
		},
		[]string{"service", "status"},
	)

	ExternalRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "external",
			Name:      "request_duration_seconds",
			Help:      "Длительность запросов к внешним сервисам в секундах",
			Buckets:   latencyBuckets,
		},
		[]string{"service"},
	)

	// RideEventsTotal - published, claimed, completed, cancelled, deleted
	RideEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ride_events_total",
			Help:      "Операции с поездками маркетплейса",
		},
		[]string{"event"},
	)
)

// PrometheusMiddleware собирает метрики HTTP. Маршрут берется из шаблона gin,
// чтобы id поездок не раздували число серий.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		role := c.GetString(ContextRole)
		if role == "" {
			role = "anonymous"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), role).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// TrackExternalRequest учитывает вызов внешнего сервиса; status - HTTP код или "error"
func TrackExternalRequest(service string, status string, duration time.Duration) {
	ExternalRequestsTotal.WithLabelValues(service, status).Inc()
	ExternalRequestDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func TrackRideEvent(event string) {
	RideEventsTotal.WithLabelValues(event).Inc()
}
