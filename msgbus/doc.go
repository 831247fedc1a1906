// Package msgbus implements a typed, named, in-process publish/subscribe bus
// with single-writer topics and best-effort synchronous fan-out.
//
// # Model
//
// A Topic owns exactly one value of its payload type. The owning task mutates
// the value (Data or Publish) and pushes copies to subscribers with Notify;
// subscribers never see the live value, only pushed copies, so the payload
// itself carries no lock. Topics are registered once into a Bus and live for
// the process duration; the registry is insertion-only, so registered topics
// must be durably allocated.
//
// Topics are addressed by TopicID, the FNV-1a hash of the topic name.
// Collisions are not detected; name uniqueness is the caller's
// responsibility.
//
// # Locking discipline
//
// The Bus registry holds a single mutex only long enough to resolve a
// TopicID to a topic handle. Each topic guards its own subscriber list
// independently, so publishing on one topic never contends with subscribe or
// notify traffic on another. Notify snapshots the subscriber list under the
// topic lock, releases it, then delivers. Concurrent subscribe/unsubscribe
// during an in-flight Notify is safe; whether a mid-call subscription is
// included is unspecified.
//
// # Delivery
//
// Delivery is synchronous push: Notify runs the full fan-out on the calling
// task before returning. Each subscriber's Receiver enforces its own bounded
// wait, so a slow consumer can stall the publisher for at most that
// receiver's timeout; the bounded wait is the backpressure boundary. Notify
// returns
// the number of failed deliveries and attempts every subscriber regardless
// of earlier failures; reacting to backpressure is the owner's policy
// decision.
//
// # Writes
//
// External writes route through RequestWrite (typed) or RequestWriteJSON
// (via the topic's codec) and an owner-installed write handler. A successful
// write does NOT notify subscribers: the owning task applies the value and
// calls Notify itself, preserving the single-writer discipline.
//
// All fallible operations return sentinel errors from the errors package
// (ErrTopicExists, ErrTopicNotFound, ErrTypeMismatch, ErrSubExists,
// ErrSubNotFound, ErrWriteNotSupported, ErrWriteFailed, ErrJSONParseFailed,
// ErrNoCodec); nothing here panics or logs.
package msgbus
