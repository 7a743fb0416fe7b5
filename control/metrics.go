// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for server-level accounting.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures collector registration.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hioload_tcp").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Metrics holds the server's collectors.
type Metrics struct {
	ConnectionsActive prometheus.Gauge
	AcceptedTotal     prometheus.Counter
	RejectedTotal     prometheus.Counter
	DisconnectsTotal  prometheus.Counter
	MessagesTotal     prometheus.Counter
	BroadcastsTotal   prometheus.Counter
	WriteErrorsTotal  prometheus.Counter
}

// NewMetrics registers and returns the server collectors.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "hioload_tcp"
	}
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		})
	}

	return &Metrics{
		ConnectionsActive: gauge("connections_active", "Live connections currently registered."),
		AcceptedTotal:     counter("connections_accepted_total", "Connections accepted and registered."),
		RejectedTotal:     counter("connections_rejected_total", "Connections dropped because the capacity limit was reached."),
		DisconnectsTotal:  counter("disconnects_total", "Connections that left the live set."),
		MessagesTotal:     counter("messages_total", "Inbound message chunks dispatched to the application."),
		BroadcastsTotal:   counter("broadcasts_total", "Broadcast operations issued."),
		WriteErrorsTotal:  counter("write_errors_total", "Asynchronous write completions that reported an error."),
	}
}
