package msgbus

import (
	"hash/fnv"
	"sync"

	"github.com/c360/signalbus/errors"
)

// TopicID is the stable numeric key for a topic: the FNV-1a hash of its
// name. It replaces string comparison on the hot path; collisions are not
// detected.
type TopicID uint32

// NameID computes the TopicID for a topic name.
func NameID(name string) TopicID {
	h := fnv.New32a()
	h.Write([]byte(name))
	return TopicID(h.Sum32())
}

// Message is what subscribers receive: the subscriber's own numeric id, the
// originating topic, and a copy of the topic value at notify time.
type Message struct {
	ID      uint32
	TopicID TopicID
	Payload any
}

// Receiver is the delivery target bound by a subscription. Send must be safe
// to invoke from the publishing task's context and must honor a bounded wait
// rather than blocking forever; it reports whether the message was accepted.
type Receiver interface {
	Send(msg Message) bool
}

// Subscription pairs a receiver with a subscriber-chosen numeric id. The
// same receiver may subscribe multiple times with different ids to fan out
// to different logical handlers on one consumer.
type Subscription struct {
	Receiver Receiver
	ID       uint32
}

// AnyTopic is the type-erased topic handle held by the Bus registry.
// Concrete topics are always *Topic[T]; typed access goes through the
// generic package functions (RequestWrite, Lookup).
type AnyTopic interface {
	Name() string
	TopicID() TopicID
	Subscribe(r Receiver, id uint32) error
	Unsubscribe(r Receiver, id uint32) error
	SubscriberCount() int
	RequestWriteJSON(data []byte) error
	EncodePayload(payload any) ([]byte, error)
}

// Topic is a single named, typed publication point. The value is mutated
// only by the owning task; the topic's mutex guards the subscriber list
// alone. Topics must outlive the Bus they are registered in.
type Topic[T any] struct {
	name  string
	id    TopicID
	value T

	mu      sync.Mutex
	subs    []Subscription
	writeFn func(T) bool
	codec   Codec[T]
}

// NewTopic creates a topic with the given name. The topic is not visible to
// subscribers until registered with a Bus.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{
		name: name,
		id:   NameID(name),
	}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// TopicID returns the topic's FNV-1a id.
func (t *Topic[T]) TopicID() TopicID { return t.id }

// Data returns the live value for mutation by the owning task between
// Notify calls. No lock protects the value: calling this from any other
// task is a caller violation that the bus cannot detect.
func (t *Topic[T]) Data() *T { return &t.value }

// Value returns a copy of the current value. Owner-task use only, same as
// Data.
func (t *Topic[T]) Value() T { return t.value }

// SetWriteHandler installs the validation/apply callback for external write
// requests. A topic without a handler rejects all writes. The handler is
// responsible for applying the value and calling Notify if appropriate.
func (t *Topic[T]) SetWriteHandler(fn func(T) bool) {
	t.mu.Lock()
	t.writeFn = fn
	t.mu.Unlock()
}

// SetCodec installs the JSON codec used by RequestWriteJSON and
// EncodePayload. Topics without a codec cannot bridge to JSON.
func (t *Topic[T]) SetCodec(c Codec[T]) {
	t.mu.Lock()
	t.codec = c
	t.mu.Unlock()
}

// Subscribe adds a (receiver, id) pair to the subscriber list. Subscribing
// the same pair twice returns ErrSubExists and leaves the list unchanged.
func (t *Topic[T]) Subscribe(r Receiver, id uint32) error {
	if r == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Topic", "Subscribe", "nil receiver check")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		if s.Receiver == r && s.ID == id {
			return errors.ErrSubExists
		}
	}
	t.subs = append(t.subs, Subscription{Receiver: r, ID: id})
	return nil
}

// Unsubscribe removes a (receiver, id) pair. Returns ErrSubNotFound if the
// pair is not subscribed.
func (t *Topic[T]) Unsubscribe(r Receiver, id uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s.Receiver == r && s.ID == id {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return nil
		}
	}
	return errors.ErrSubNotFound
}

// SubscriberCount returns the current subscriber list length.
func (t *Topic[T]) SubscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Notify pushes a copy of the current value to every subscriber and returns
// the number of failed deliveries. The subscriber list is snapshotted under
// the topic lock and delivery happens outside it, so subscribe traffic never
// waits on slow receivers. Every subscriber is attempted regardless of
// earlier failures.
//
// Must be called only from the task that owns the topic's value.
func (t *Topic[T]) Notify() int {
	t.mu.Lock()
	subs := make([]Subscription, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	value := t.value
	failed := 0
	for _, s := range subs {
		msg := Message{ID: s.ID, TopicID: t.id, Payload: value}
		if !s.Receiver.Send(msg) {
			failed++
		}
	}
	return failed
}

// Publish stores v as the current value and notifies subscribers, returning
// the failed delivery count. Owner-task use only.
func (t *Topic[T]) Publish(v T) int {
	t.value = v
	return t.Notify()
}

// RequestWrite routes an external typed write through the write handler.
// Returns ErrWriteNotSupported if no handler is installed, ErrWriteFailed if
// the handler rejects the value. A successful write does not notify
// subscribers.
func (t *Topic[T]) RequestWrite(v T) error {
	t.mu.Lock()
	fn := t.writeFn
	t.mu.Unlock()
	if fn == nil {
		return errors.ErrWriteNotSupported
	}
	if !fn(v) {
		return errors.ErrWriteFailed
	}
	return nil
}

// RequestWriteJSON decodes data with the topic's codec and routes the result
// through RequestWrite. Returns ErrNoCodec without a codec and
// ErrJSONParseFailed when decoding fails; the topic state is unchanged on
// any error.
func (t *Topic[T]) RequestWriteJSON(data []byte) error {
	t.mu.Lock()
	codec := t.codec
	t.mu.Unlock()
	if codec == nil {
		return errors.ErrNoCodec
	}
	v, err := codec.Decode(data)
	if err != nil {
		return errors.Wrap(errors.ErrJSONParseFailed, "Topic", "RequestWriteJSON", "payload decode")
	}
	return t.RequestWrite(v)
}

// EncodePayload encodes a pushed payload copy with the topic's codec. Used
// by bridges that receive Message values and need the topic's own JSON
// representation. Returns ErrTypeMismatch if payload is not the topic's
// payload type.
func (t *Topic[T]) EncodePayload(payload any) ([]byte, error) {
	t.mu.Lock()
	codec := t.codec
	t.mu.Unlock()
	if codec == nil {
		return nil, errors.ErrNoCodec
	}
	v, ok := payload.(T)
	if !ok {
		return nil, errors.ErrTypeMismatch
	}
	return codec.Encode(v)
}
