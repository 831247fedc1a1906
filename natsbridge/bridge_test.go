package natsbridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/signalbus/errors"
	"github.com/c360/signalbus/msgbus"
)

// fakePublisher records published messages and loops subscriptions back.
type fakePublisher struct {
	mu        sync.Mutex
	published map[string][][]byte
	handlers  map[string]func(subject string, data []byte)
	failures  int // Publish failures to inject before succeeding
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		published: make(map[string][][]byte),
		handlers:  make(map[string]func(string, []byte)),
	}
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.ErrNoConnection
	}
	p.published[subject] = append(p.published[subject], data)
	return nil
}

func (p *fakePublisher) Subscribe(subject string, handler func(subject string, data []byte)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[subject] = handler
	return nil
}

func (p *fakePublisher) messages(subject string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.published[subject]))
	copy(out, p.published[subject])
	return out
}

// deliver simulates an inbound NATS message on the write wildcard.
func (p *fakePublisher) deliver(subject string, data []byte) {
	p.mu.Lock()
	var handler func(string, []byte)
	for _, h := range p.handlers {
		handler = h
	}
	p.mu.Unlock()
	if handler != nil {
		handler(subject, data)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestBridge_SubjectMapping(t *testing.T) {
	b := NewBridge(msgbus.New(), newFakePublisher(), WithSubjectPrefix("plant"))

	assert.Equal(t, "plant.temp.value", b.SubjectFor("temp.value"))
	assert.Equal(t, "plant.write.>", b.writeSubject())
	assert.Equal(t, "heater.setpoint", b.topicFromWriteSubject("plant.write.heater.setpoint"))
	assert.Equal(t, "plant.other", b.topicFromWriteSubject("plant.other"), "unrelated subject passes through unchanged")
}

func TestBridge_MirrorsTopicWithCodec(t *testing.T) {
	bus := msgbus.New()
	topic := msgbus.NewTopic[float64]("temp.value")
	topic.SetCodec(msgbus.JSONCodec[float64]{})
	require.NoError(t, bus.Register(topic))

	pub := newFakePublisher()
	b := NewBridge(bus, pub)
	require.NoError(t, b.Start(context.Background()))
	defer func() { _ = b.Stop() }()

	topic.Publish(21.5)

	waitFor(t, func() bool { return len(pub.messages("signalbus.temp.value")) == 1 })
	assert.Equal(t, "21.5", string(pub.messages("signalbus.temp.value")[0]))
}

func TestBridge_SkipsTopicWithoutCodec(t *testing.T) {
	bus := msgbus.New()
	topic := msgbus.NewTopic[float64]("raw")
	require.NoError(t, bus.Register(topic))

	pub := newFakePublisher()
	b := NewBridge(bus, pub)
	require.NoError(t, b.Start(context.Background()))
	defer func() { _ = b.Stop() }()

	topic.Publish(1.0)

	// drained but never published
	waitFor(t, func() bool { return b.Stats().ReceivedCount() == 1 })
	assert.Empty(t, pub.messages("signalbus.raw"))
}

func TestBridge_RetriesTransientPublish(t *testing.T) {
	bus := msgbus.New()
	topic := msgbus.NewTopic[int32]("counter")
	topic.SetCodec(msgbus.JSONCodec[int32]{})
	require.NoError(t, bus.Register(topic))

	pub := newFakePublisher()
	pub.failures = 2
	b := NewBridge(bus, pub)
	require.NoError(t, b.Start(context.Background()))
	defer func() { _ = b.Stop() }()

	topic.Publish(7)

	waitFor(t, func() bool { return len(pub.messages("signalbus.counter")) == 1 })
	assert.Equal(t, "7", string(pub.messages("signalbus.counter")[0]))
}

func TestBridge_InboundWrite(t *testing.T) {
	bus := msgbus.New()
	topic := msgbus.NewTopic[float64]("heater")
	topic.SetCodec(msgbus.JSONCodec[float64]{})
	topic.SetWriteHandler(func(v float64) bool {
		*topic.Data() = v
		return true
	})
	require.NoError(t, bus.Register(topic))

	pub := newFakePublisher()
	b := NewBridge(bus, pub)
	require.NoError(t, b.Start(context.Background()))
	defer func() { _ = b.Stop() }()

	pub.deliver("signalbus.write.heater", []byte("42.5"))
	assert.Equal(t, 42.5, topic.Value())

	// rejected writes leave state unchanged
	pub.deliver("signalbus.write.heater", []byte("not json"))
	assert.Equal(t, 42.5, topic.Value())

	pub.deliver("signalbus.write.unknown", []byte("1"))
	assert.Equal(t, 42.5, topic.Value())
}

func TestBridge_StartStopLifecycle(t *testing.T) {
	bus := msgbus.New()
	b := NewBridge(bus, newFakePublisher())

	require.NoError(t, b.Start(context.Background()))
	assert.ErrorIs(t, b.Start(context.Background()), errors.ErrAlreadyStarted)

	require.NoError(t, b.Stop())
	assert.ErrorIs(t, b.Stop(), errors.ErrNotStarted)
}
