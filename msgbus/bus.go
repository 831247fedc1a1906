package msgbus

import (
	"sync"

	"github.com/c360/signalbus/errors"
)

// Bus is the process-wide topic registry. Registration is insertion-only:
// once registered, a topic is never removed or replaced, so the bus can hold
// plain references and assume they stay valid for the process lifetime.
//
// The registry mutex guards only the id→topic map; per-topic subscriber
// lists are guarded by their own locks so that publish and subscribe traffic
// on unrelated topics never serializes behind the registry.
type Bus struct {
	mu     sync.Mutex
	topics map[TopicID]AnyTopic
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{topics: make(map[TopicID]AnyTopic)}
}

// Register inserts a topic into the registry keyed by the FNV-1a hash of
// its name. Returns ErrZeroTopic for a nil topic and ErrTopicExists if the
// name is already registered; the original registration is left intact.
func (b *Bus) Register(t AnyTopic) error {
	if t == nil {
		return errors.ErrZeroTopic
	}
	id := t.TopicID()

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.topics[id]; exists {
		return errors.Wrap(errors.ErrTopicExists, "Bus", "Register", "duplicate check for "+t.Name())
	}
	b.topics[id] = t
	return nil
}

// resolve looks up a topic handle under the registry lock. The lock is held
// only for the map access, never while touching subscriber lists.
func (b *Bus) resolve(id TopicID) (AnyTopic, error) {
	b.mu.Lock()
	t, exists := b.topics[id]
	b.mu.Unlock()
	if !exists {
		return nil, errors.ErrTopicNotFound
	}
	return t, nil
}

// Topic returns the type-erased handle for a topic id, or ErrTopicNotFound.
func (b *Bus) Topic(id TopicID) (AnyTopic, error) {
	return b.resolve(id)
}

// TopicByName resolves a topic by name.
func (b *Bus) TopicByName(name string) (AnyTopic, error) {
	return b.resolve(NameID(name))
}

// Topics returns a snapshot of all registered topic handles.
func (b *Bus) Topics() []AnyTopic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]AnyTopic, 0, len(b.topics))
	for _, t := range b.topics {
		out = append(out, t)
	}
	return out
}

// Subscribe resolves the topic and adds the (receiver, id) pair to its
// subscriber list. Duplicate pairs return ErrSubExists.
func (b *Bus) Subscribe(topic TopicID, r Receiver, msgID uint32) error {
	t, err := b.resolve(topic)
	if err != nil {
		return err
	}
	return t.Subscribe(r, msgID)
}

// Unsubscribe removes a (receiver, id) pair from the topic's subscriber
// list.
func (b *Bus) Unsubscribe(topic TopicID, r Receiver, msgID uint32) error {
	t, err := b.resolve(topic)
	if err != nil {
		return err
	}
	return t.Unsubscribe(r, msgID)
}

// RequestWriteJSON resolves the topic and routes a JSON write request
// through its codec and write handler.
func (b *Bus) RequestWriteJSON(topic TopicID, data []byte) error {
	t, err := b.resolve(topic)
	if err != nil {
		return err
	}
	return t.RequestWriteJSON(data)
}

// Lookup resolves a topic id to its concrete typed topic. Returns
// ErrTypeMismatch when the registered topic's payload type differs from T.
func Lookup[T any](b *Bus, id TopicID) (*Topic[T], error) {
	h, err := b.resolve(id)
	if err != nil {
		return nil, err
	}
	t, ok := h.(*Topic[T])
	if !ok {
		return nil, errors.ErrTypeMismatch
	}
	return t, nil
}

// RequestWrite resolves the topic, verifies the payload type, and forwards
// the typed write request. The stored value is unchanged on any error.
func RequestWrite[T any](b *Bus, id TopicID, v T) error {
	t, err := Lookup[T](b, id)
	if err != nil {
		return err
	}
	return t.RequestWrite(v)
}
