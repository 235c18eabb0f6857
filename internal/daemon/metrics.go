package daemon

// Metrics receives daemon traffic counts. internal/metrics provides the
// prometheus implementation.
type Metrics interface {
	IncEventsSent()
	IncEventsReceived()
	IncEventsDropped()
	IncBroadcasts()
	SetConnectedClients(n int)
}

type nopMetrics struct{}

func (nopMetrics) IncEventsSent()          {}
func (nopMetrics) IncEventsReceived()      {}
func (nopMetrics) IncEventsDropped()       {}
func (nopMetrics) IncBroadcasts()          {}
func (nopMetrics) SetConnectedClients(int) {}
