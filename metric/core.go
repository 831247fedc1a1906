package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not application-specific)
type Metrics struct {
	// Bus metrics
	MessagesPublished *prometheus.CounterVec
	DeliveryFailures  *prometheus.CounterVec
	Subscribers       *prometheus.GaugeVec

	// Monitor metrics
	SamplesTotal    *prometheus.CounterVec
	ViolationsTotal *prometheus.CounterVec
	WindowsTotal    *prometheus.CounterVec

	// Ingest metrics
	WriteRequests *prometheus.CounterVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSRTT        prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signalbus",
				Subsystem: "bus",
				Name:      "published_total",
				Help:      "Total number of topic notifications published",
			},
			[]string{"topic"},
		),

		DeliveryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signalbus",
				Subsystem: "bus",
				Name:      "delivery_failures_total",
				Help:      "Total number of failed subscriber deliveries",
			},
			[]string{"topic"},
		),

		Subscribers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "signalbus",
				Subsystem: "bus",
				Name:      "subscribers",
				Help:      "Current number of subscriptions per topic",
			},
			[]string{"topic"},
		),

		SamplesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signalbus",
				Subsystem: "monitor",
				Name:      "samples_total",
				Help:      "Total number of samples fed to parameter monitors",
			},
			[]string{"monitor"},
		),

		ViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signalbus",
				Subsystem: "monitor",
				Name:      "violations_total",
				Help:      "Total number of violation state entries",
			},
			[]string{"monitor"},
		),

		WindowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signalbus",
				Subsystem: "monitor",
				Name:      "windows_total",
				Help:      "Total number of completed statistics windows",
			},
			[]string{"monitor"},
		),

		WriteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "signalbus",
				Subsystem: "bus",
				Name:      "write_requests_total",
				Help:      "Total number of external write requests",
			},
			[]string{"topic", "status"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "signalbus",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "signalbus",
				Subsystem: "nats",
				Name:      "rtt_milliseconds",
				Help:      "NATS round-trip time in milliseconds",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "signalbus",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// RecordPublish increments the published counter for a topic and adds any
// failed deliveries to the failure counter.
func (c *Metrics) RecordPublish(topic string, failed int) {
	c.MessagesPublished.WithLabelValues(topic).Inc()
	if failed > 0 {
		c.DeliveryFailures.WithLabelValues(topic).Add(float64(failed))
	}
}

// RecordSubscribers updates the subscription gauge for a topic.
func (c *Metrics) RecordSubscribers(topic string, count int) {
	c.Subscribers.WithLabelValues(topic).Set(float64(count))
}

// RecordSample increments the sample counter for a monitor.
func (c *Metrics) RecordSample(monitor string) {
	c.SamplesTotal.WithLabelValues(monitor).Inc()
}

// RecordViolation increments the violation entry counter for a monitor.
func (c *Metrics) RecordViolation(monitor string) {
	c.ViolationsTotal.WithLabelValues(monitor).Inc()
}

// RecordWindow increments the completed-window counter for a monitor.
func (c *Metrics) RecordWindow(monitor string) {
	c.WindowsTotal.WithLabelValues(monitor).Inc()
}

// RecordWriteRequest increments the write request counter with an
// "accepted" or "rejected" status label.
func (c *Metrics) RecordWriteRequest(topic string, accepted bool) {
	status := "rejected"
	if accepted {
		status = "accepted"
	}
	c.WriteRequests.WithLabelValues(topic, status).Inc()
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSRTT updates NATS round-trip time
func (c *Metrics) RecordNATSRTT(rtt time.Duration) {
	c.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	c.NATSReconnects.Inc()
}
