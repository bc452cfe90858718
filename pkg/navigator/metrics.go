package navigator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the controller's prometheus collectors.
type Metrics struct {
	Rebuilds        *prometheus.CounterVec
	RebuildDuration *prometheus.HistogramVec
	TreeNodes       prometheus.Gauge
	SelectionEvents prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Rebuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "poolnav",
			Subsystem: "navigator",
			Name:      "rebuilds_total",
			Help:      "Total tree rebuilds by navigation mode.",
		}, []string{"mode"}),
		RebuildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "poolnav",
			Subsystem: "navigator",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of a capture, build and restore cycle in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"mode"}),
		TreeNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "poolnav",
			Subsystem: "navigator",
			Name:      "tree_nodes",
			Help:      "Number of nodes in the current tree.",
		}),
		SelectionEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "poolnav",
			Subsystem: "navigator",
			Name:      "selection_events_total",
			Help:      "Total selection-changed notifications emitted.",
		}),
	}
}
