// Package metrics содержит метрики Prometheus для мониторинга сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal считает HTTP-запросы по методу, шаблону маршрута и статусу.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthadmin_http_requests_total",
		Help: "The total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// RequestDuration — время обработки запросов.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "healthadmin_http_request_duration_seconds",
		Help:    "The HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginAttemptsTotal считает попытки входа по результату.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthadmin_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	// RateLimitExceededTotal считает отклонённые ограничителем запросы.
	RateLimitExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthadmin_rate_limit_exceeded_total",
		Help: "The total number of rate limit exceeded events",
	})
)
