// Package metrics описывает метрики Prometheus сервиса аутентификации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций, используемые как значение метки result.
const (
	ResultSuccess       = "success"
	ResultDuplicate     = "duplicate"
	ResultInvalid       = "invalid_credentials"
	ResultThrottled     = "throttled"
	ResultUnauthorized  = "unauthenticated"
	ResultError         = "error"
	ResultRenewed       = "renewed"
	ResultNotFound      = "not_found"
	ResultValidationErr = "validation_error"
)

// Metrics хранит коллекторы сервиса. Методы безопасны для nil-получателя,
// поэтому обработчики могут работать без метрик.
type Metrics struct {
	registrations    *prometheus.CounterVec
	logins           *prometheus.CounterVec
	sessionsResolved *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookieauth",
			Name:      "registrations_total",
			Help:      "Account registration attempts by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookieauth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		sessionsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookieauth",
			Name:      "sessions_resolved_total",
			Help:      "Session cookie resolutions by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookieauth",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cookieauth",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(m.registrations, m.logins, m.sessionsResolved, m.httpRequests, m.httpDuration)
	return m
}

// RegisterAccountsGauge публикует текущее количество учётных записей.
func (m *Metrics) RegisterAccountsGauge(reg prometheus.Registerer, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cookieauth",
		Name:      "accounts",
		Help:      "Number of accounts in the in-memory store.",
	}, func() float64 { return float64(count()) }))
}

// Registration учитывает попытку регистрации.
func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

// Login учитывает попытку входа.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// SessionResolved учитывает проверку cookie сессии.
func (m *Metrics) SessionResolved(result string) {
	if m == nil {
		return
	}
	m.sessionsResolved.WithLabelValues(result).Inc()
}

// HTTPRequest учитывает обработанный HTTP‑запрос.
func (m *Metrics) HTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}
