// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wellnest/wellnest/internal/auth"
)

// Metrics holds the WellNest counters. It implements auth.Metrics.
type Metrics struct {
	LoginsTotal        *prometheus.CounterVec
	RegistrationsTotal *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellnest_logins_total",
				Help: "Login attempts by method (password, token, guest) and result",
			},
			[]string{"method", "result"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellnest_registrations_total",
				Help: "Registration attempts by result",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellnest_http_requests_total",
				Help: "HTTP requests by route pattern and status code",
			},
			[]string{"route", "status"},
		),
	}
	reg.MustRegister(m.LoginsTotal, m.RegistrationsTotal, m.HTTPRequestsTotal)
	return m
}

// NewRegistry returns a registry holding the Go and process collectors plus
// the WellNest counters.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, NewMetrics(reg)
}

// ObserveLogin counts a login attempt.
func (m *Metrics) ObserveLogin(method, result string) {
	m.LoginsTotal.WithLabelValues(method, result).Inc()
}

// ObserveRegistration counts a registration attempt.
func (m *Metrics) ObserveRegistration(result string) {
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

// ObserveRequest counts a served HTTP request. route is the matched pattern,
// never the raw path.
func (m *Metrics) ObserveRequest(route string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

var _ auth.Metrics = (*Metrics)(nil)
