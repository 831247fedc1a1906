// Package metric provides Prometheus-based metrics collection and an HTTP
// server for bus and monitor observability.
//
// A central MetricsRegistry owns the Prometheus registry, the core platform
// metrics (bus publish/delivery counters, monitor sample/violation/window
// counters, NATS connectivity), and component-registered custom metrics.
// The Server type exposes everything at a /metrics endpoint in Prometheus
// format, plus a plain /health endpoint.
//
// All core metrics use the "signalbus" namespace:
//
//	signalbus_bus_published_total{topic="..."}
//	signalbus_bus_delivery_failures_total{topic="..."}
//	signalbus_monitor_violations_total{monitor="..."}
//	signalbus_nats_connected
//
// Registration is thread-safe and rejects duplicate component.metric keys;
// metric recording itself is lock-free per the Prometheus client guarantees.
package metric
