// Package natsbridge mirrors bus topics onto NATS subjects and routes
// inbound NATS writes back into the bus.
//
// Outbound: the bridge subscribes a bounded inbox to every registered topic;
// a mirror goroutine drains the inbox, encodes each payload with the topic's
// own codec, and publishes it to "<prefix>.<topic name>". Topics without a
// codec are skipped. Transient publish failures are retried with backoff.
//
// Inbound: a wildcard subscription on "<prefix>.write.>" maps the subject
// suffix to a topic name and forwards the raw JSON through the bus write
// path, so remote writers go through the same validation callbacks as local
// ones.
//
// The Client type wraps the NATS connection with reconnect handling, status
// tracking, and optional Prometheus connectivity metrics.
package natsbridge
