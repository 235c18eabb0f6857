package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Daemon records event daemon traffic. It satisfies daemon.Metrics.
type Daemon struct {
	eventsSent     prometheus.Counter
	eventsReceived prometheus.Counter
	eventsDropped  prometheus.Counter
	broadcasts     prometheus.Counter
	clients        prometheus.Gauge
}

// NewDaemon creates the daemon metrics and registers them with reg.
func NewDaemon(reg prometheus.Registerer) (*Daemon, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "daemon",
			Name:      name,
			Help:      help,
		})
	}

	m := &Daemon{
		eventsSent:     counter("events_sent_total", "Messages queued to clients."),
		eventsReceived: counter("events_received_total", "Events received from clients."),
		eventsDropped:  counter("events_dropped_total", "Messages dropped because a client queue or the broadcast queue was full."),
		broadcasts:     counter("broadcasts_total", "Events broadcast with a sequence number."),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "daemon",
			Name:      "connected_clients",
			Help:      "Clients currently connected.",
		}),
	}

	for _, c := range []prometheus.Collector{m.eventsSent, m.eventsReceived, m.eventsDropped, m.broadcasts, m.clients} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering daemon metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Daemon) IncEventsSent()     { m.eventsSent.Inc() }
func (m *Daemon) IncEventsReceived() { m.eventsReceived.Inc() }
func (m *Daemon) IncEventsDropped()  { m.eventsDropped.Inc() }
func (m *Daemon) IncBroadcasts()     { m.broadcasts.Inc() }

// SetConnectedClients sets the connected clients gauge
func (m *Daemon) SetConnectedClients(n int) { m.clients.Set(float64(n)) }
