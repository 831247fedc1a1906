package natsbridge

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/c360/signalbus/errors"
	"github.com/c360/signalbus/metric"
	"github.com/c360/signalbus/msgbus"
	"github.com/c360/signalbus/pkg/inbox"
	"github.com/c360/signalbus/pkg/retry"
)

// Publisher is the transport the bridge publishes through. Client implements
// it; tests substitute a fake.
type Publisher interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(subject string, data []byte)) error
}

// Bridge mirrors registered bus topics to NATS subjects and routes inbound
// writes back through the bus write path.
type Bridge struct {
	bus     *msgbus.Bus
	pub     Publisher
	logger  *slog.Logger
	metrics *metric.Metrics

	prefix        string
	inboxCapacity int

	mu      sync.Mutex
	mirror  *inbox.Inbox
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithSubjectPrefix sets the subject namespace. Defaults to "signalbus".
func WithSubjectPrefix(prefix string) BridgeOption {
	return func(b *Bridge) {
		if prefix != "" {
			b.prefix = prefix
		}
	}
}

// WithInboxCapacity sets the mirror inbox depth. Defaults to 256.
func WithInboxCapacity(n int) BridgeOption {
	return func(b *Bridge) {
		if n > 0 {
			b.inboxCapacity = n
		}
	}
}

// WithBridgeLogger sets the bridge logger. Defaults to slog.Default.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBridgeMetrics enables subscriber and write-request instrumentation.
func WithBridgeMetrics(m *metric.Metrics) BridgeOption {
	return func(b *Bridge) {
		b.metrics = m
	}
}

// NewBridge creates a bridge between a bus and a publisher.
func NewBridge(bus *msgbus.Bus, pub Publisher, options ...BridgeOption) *Bridge {
	b := &Bridge{
		bus:           bus,
		pub:           pub,
		logger:        slog.Default(),
		prefix:        "signalbus",
		inboxCapacity: 256,
	}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// SubjectFor returns the NATS subject a topic is mirrored to.
func (b *Bridge) SubjectFor(topicName string) string {
	return b.prefix + "." + topicName
}

// writeSubject is the wildcard inbound writes arrive on.
func (b *Bridge) writeSubject() string {
	return b.prefix + ".write.>"
}

// topicFromWriteSubject extracts the topic name from an inbound write
// subject, or "" if the subject is not under the write namespace.
func (b *Bridge) topicFromWriteSubject(subject string) string {
	return strings.TrimPrefix(subject, b.prefix+".write.")
}

// Start subscribes the mirror inbox to every currently registered topic,
// installs the inbound write subscription, and launches the mirror loop.
// Topics registered after Start are not mirrored.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return errors.ErrAlreadyStarted
	}

	mirror, err := inbox.New(b.inboxCapacity,
		inbox.WithOverflowPolicy(inbox.DropOldest),
	)
	if err != nil {
		return errors.Wrap(err, "Bridge", "Start", "create mirror inbox")
	}

	topics := b.bus.Topics()
	for _, topic := range topics {
		if err := topic.Subscribe(mirror, uint32(topic.TopicID())); err != nil {
			return errors.Wrap(err, "Bridge", "Start", "subscribe mirror to "+topic.Name())
		}
		if b.metrics != nil {
			b.metrics.RecordSubscribers(topic.Name(), topic.SubscriberCount())
		}
	}

	if err := b.pub.Subscribe(b.writeSubject(), b.handleWrite); err != nil {
		return errors.Wrap(err, "Bridge", "Start", "subscribe inbound writes")
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.mirror = mirror
	b.cancel = cancel
	b.done = make(chan struct{})
	b.started = true

	go b.run(runCtx)

	b.logger.Info("bridge started", "topics", len(topics), "prefix", b.prefix)
	return nil
}

// run drains the mirror inbox and publishes each payload.
func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)
	for {
		msg, err := b.mirror.Receive(ctx)
		if err != nil {
			return
		}
		b.publish(ctx, msg)
	}
}

func (b *Bridge) publish(ctx context.Context, msg msgbus.Message) {
	topic, err := b.bus.Topic(msg.TopicID)
	if err != nil {
		b.logger.Warn("mirror message for unknown topic", "topic_id", msg.TopicID)
		return
	}

	data, err := topic.EncodePayload(msg.Payload)
	if err != nil {
		// topics without a codec are simply not mirrored
		if !stderrors.Is(err, errors.ErrNoCodec) {
			b.logger.Warn("payload encode failed", "topic", topic.Name(), "error", err)
		}
		return
	}

	subject := b.SubjectFor(topic.Name())
	err = retry.Do(ctx, retry.Quick(), func() error {
		return b.pub.Publish(subject, data)
	})
	if err != nil {
		b.logger.Warn("mirror publish failed", "subject", subject, "error", err)
	}
}

// handleWrite routes an inbound JSON write to the named topic's write path.
func (b *Bridge) handleWrite(subject string, data []byte) {
	name := b.topicFromWriteSubject(subject)
	if name == "" || name == subject {
		b.logger.Warn("write on unexpected subject", "subject", subject)
		return
	}

	err := b.bus.RequestWriteJSON(msgbus.NameID(name), data)
	if b.metrics != nil {
		b.metrics.RecordWriteRequest(name, err == nil)
	}
	if err != nil {
		b.logger.Warn("inbound write rejected", "topic", name, "error", err)
		return
	}
	b.logger.Debug("inbound write applied", "topic", name)
}

// Stop ends the mirror loop and closes the inbox. The bus subscriptions
// stay in place but deliveries to the closed inbox are counted as failed.
func (b *Bridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return errors.ErrNotStarted
	}
	b.cancel()
	<-b.done
	_ = b.mirror.Close()
	b.started = false
	b.logger.Info("bridge stopped")
	return nil
}

// Stats returns the mirror inbox statistics, or nil before Start.
func (b *Bridge) Stats() *inbox.Statistics {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mirror == nil {
		return nil
	}
	return b.mirror.Stats()
}
