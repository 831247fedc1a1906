package inbox

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/signalbus/metric"
)

// inboxMetrics holds Prometheus metrics for one inbox.
type inboxMetrics struct {
	sends prometheus.Counter
	drops prometheus.Counter
	depth prometheus.Gauge

	capacity int
}

// newInboxMetrics creates and registers inbox metrics with the provided registry.
func newInboxMetrics(registry *metric.MetricsRegistry, name string, capacity int) (*inboxMetrics, error) {
	m := &inboxMetrics{
		sends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "signalbus",
			Subsystem:   "inbox",
			Name:        "sends_total",
			ConstLabels: prometheus.Labels{"inbox": name},
			Help:        "Total number of accepted inbox sends",
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "signalbus",
			Subsystem:   "inbox",
			Name:        "drops_total",
			ConstLabels: prometheus.Labels{"inbox": name},
			Help:        "Total number of messages dropped on overflow",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "signalbus",
			Subsystem:   "inbox",
			Name:        "depth",
			ConstLabels: prometheus.Labels{"inbox": name},
			Help:        "Current number of pending messages",
		}),
		capacity: capacity,
	}

	if err := registry.RegisterCounter(name, "inbox_sends", m.sends); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(name, "inbox_drops", m.drops); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(name, "inbox_depth", m.depth); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *inboxMetrics) recordSend(accepted bool, depth int) {
	if accepted {
		m.sends.Inc()
	} else {
		m.drops.Inc()
	}
	m.depth.Set(float64(depth))
}

func (m *inboxMetrics) recordReceive(depth int) {
	m.depth.Set(float64(depth))
}
