// Package signalbus provides an in-process typed message bus with parameter
// monitoring on top of it.
//
// # Layers
//
// The module is built as three small layers plus surrounding infrastructure:
//
// Bus layer (msgbus):
//   - Typed topics keyed by FNV-1a name hashes
//   - Single-writer topics with fan-out to subscriber inboxes
//   - Optional write-back path for setpoint-style topics
//
// Monitoring layer (envelope, stats, monitor):
//   - Limit rules with debounced enter/exit transitions
//   - Windowed min/avg/max statistics
//   - Monitors that tie a value topic, a stats topic, and a violation
//     topic together per named parameter
//
// Edges (ingest, natsbridge, metric):
//   - UDP sample ingestion feeding monitors
//   - Topic mirroring to NATS subjects with an inbound write path
//   - Prometheus metrics and an HTTP exposition endpoint
//
// The cmd/signalbusd daemon wires all of it from a JSON configuration file.
//
// All topic publication is single-writer: a topic's registered owner is the
// only goroutine that publishes to it. Subscribers receive copies through
// bounded inboxes and never block the publisher.
package signalbus
