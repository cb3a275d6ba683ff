package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpenConnections is the number of currently open client connections.
	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ircwire_open_connections",
		Help: "Number of currently open client connections",
	})

	// RegisteredClients is the number of clients that completed registration.
	RegisteredClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ircwire_registered_clients",
		Help: "Number of clients that completed NICK/USER registration",
	})

	// LiveChannels is the number of channels with at least one member.
	LiveChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ircwire_live_channels",
		Help: "Number of channels currently in the directory",
	})

	// CommandsTotal counts dispatched commands by verb.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ircwire_commands_total",
			Help: "Total number of dispatched commands per verb",
		},
		[]string{"verb"},
	)

	// LinesDelivered counts outbound lines accepted by a client sink.
	LinesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ircwire_lines_delivered_total",
		Help: "Total number of outbound lines queued for delivery",
	})

	// LinesDropped counts outbound lines dropped because a sink was not writable.
	LinesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ircwire_lines_dropped_total",
		Help: "Total number of outbound lines dropped on unwritable sinks",
	})
)
