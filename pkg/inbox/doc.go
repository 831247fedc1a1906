// Package inbox provides a bounded, channel-backed message receiver for bus
// subscriptions.
//
// An Inbox implements msgbus.Receiver: the publishing task hands messages to
// Send, which never blocks indefinitely. Overflow behavior is configurable:
//   - DropNewest rejects the incoming message when the inbox is full
//   - DropOldest evicts the oldest pending message to make room
//   - BlockWithTimeout waits up to the configured send timeout, then rejects
//
// The consuming task drains messages with Receive, TryReceive, or directly
// from Chan. Statistics are always collected; Prometheus metrics are optional
// via WithMetrics.
package inbox
