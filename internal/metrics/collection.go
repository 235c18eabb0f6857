package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collection records row collection activity. It satisfies collection.Observer.
type Collection struct {
	operations   *prometheus.CounterVec
	saveDuration prometheus.Histogram
	saveFailures prometheus.Counter
	rows         prometheus.Gauge
}

// NewCollection creates the collection metrics and registers them with reg.
func NewCollection(reg prometheus.Registerer) (*Collection, error) {
	m := &Collection{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "collection",
			Name:      "operations_total",
			Help:      "Collection operations by name and outcome.",
		}, []string{"op", "outcome"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "collection",
			Name:      "save_duration_seconds",
			Help:      "Time spent committing edited rows.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "collection",
			Name:      "save_failures_total",
			Help:      "Commits that returned an error.",
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "collection",
			Name:      "rows",
			Help:      "Number of rows currently in the collection.",
		}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.saveDuration, m.saveFailures, m.rows} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering collection metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveOperation counts one operation
func (m *Collection) ObserveOperation(op, outcome string) {
	m.operations.WithLabelValues(op, outcome).Inc()
}

// ObserveSave records the duration of a commit and whether it failed
func (m *Collection) ObserveSave(d time.Duration, err error) {
	m.saveDuration.Observe(d.Seconds())
	if err != nil {
		m.saveFailures.Inc()
	}
}

// SetRowCount updates the row gauge
func (m *Collection) SetRowCount(n int) {
	m.rows.Set(float64(n))
}
