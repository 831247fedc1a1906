package monitor

import (
	"github.com/c360/signalbus/envelope"
	"github.com/c360/signalbus/errors"
	"github.com/c360/signalbus/metric"
	"github.com/c360/signalbus/msgbus"
	"github.com/c360/signalbus/stats"
)

// DefaultMaxRules is the envelope capacity used when WithMaxRules is not
// given.
const DefaultMaxRules = 4

// Option configures a Monitor at construction time.
type Option func(*monitorOptions)

type monitorOptions struct {
	maxRules int
	metrics  *metric.Metrics
}

// WithMaxRules sets the envelope rule capacity.
func WithMaxRules(n int) Option {
	return func(o *monitorOptions) {
		if n > 0 {
			o.maxRules = n
		}
	}
}

// WithMetrics wires the monitor's sample, window, violation, and publish
// counters to the platform metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *monitorOptions) { o.metrics = m }
}

// Monitor binds a value topic, a stats topic, a violation topic, a windowed
// accumulator, and an envelope for one monitored parameter. It is owned by
// the sampling task; Update must not be called concurrently.
type Monitor[T envelope.Value, R envelope.Rep] struct {
	name string

	valueTopic     *msgbus.Topic[T]
	statsTopic     *msgbus.Topic[stats.Snapshot[T]]
	violationTopic *msgbus.Topic[envelope.Result]

	window  *stats.Windowed[T, R]
	env     *envelope.Envelope[T, R]
	last    envelope.Result
	metrics *metric.Metrics
}

// New creates a monitor and registers its three topics ("<name>.value",
// "<name>.stats", "<name>.violation") with the bus. The window is the stats
// publication period in the time representation's own units. Registration
// failures (duplicate names) are returned unchanged.
func New[T envelope.Value, R envelope.Rep](bus *msgbus.Bus, name string, window R, options ...Option) (*Monitor[T, R], error) {
	opts := &monitorOptions{maxRules: DefaultMaxRules}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}

	m := &Monitor[T, R]{
		name:           name,
		valueTopic:     msgbus.NewTopic[T](name + ".value"),
		statsTopic:     msgbus.NewTopic[stats.Snapshot[T]](name + ".stats"),
		violationTopic: msgbus.NewTopic[envelope.Result](name + ".violation"),
		window:         stats.NewWindowed[T](window),
		env:            envelope.New[T, R](opts.maxRules),
		last:           envelope.NormalResult(),
		metrics:        opts.metrics,
	}

	// topics carry JSON codecs so bridges can encode pushed payloads
	m.valueTopic.SetCodec(msgbus.JSONCodec[T]{})
	m.statsTopic.SetCodec(msgbus.JSONCodec[stats.Snapshot[T]]{})
	m.violationTopic.SetCodec(msgbus.JSONCodec[envelope.Result]{})

	if err := bus.Register(m.valueTopic); err != nil {
		return nil, errors.Wrap(err, "Monitor", "New", "register value topic")
	}
	if err := bus.Register(m.statsTopic); err != nil {
		return nil, errors.Wrap(err, "Monitor", "New", "register stats topic")
	}
	if err := bus.Register(m.violationTopic); err != nil {
		return nil, errors.Wrap(err, "Monitor", "New", "register violation topic")
	}

	return m, nil
}

// Name returns the monitored parameter name.
func (m *Monitor[T, R]) Name() string { return m.name }

// ValueTopic returns the per-sample topic.
func (m *Monitor[T, R]) ValueTopic() *msgbus.Topic[T] { return m.valueTopic }

// StatsTopic returns the windowed statistics topic.
func (m *Monitor[T, R]) StatsTopic() *msgbus.Topic[stats.Snapshot[T]] { return m.statsTopic }

// ViolationTopic returns the edge-triggered violation topic.
func (m *Monitor[T, R]) ViolationTopic() *msgbus.Topic[envelope.Result] { return m.violationTopic }

// Stats returns the live windowed accumulator. Owner-task use only.
func (m *Monitor[T, R]) Stats() *stats.Windowed[T, R] { return m.window }

// AddRule appends a rule to the envelope. Rules added later have lower
// priority. Returns ErrEnvelopeFull once capacity is reached.
func (m *Monitor[T, R]) AddRule(r envelope.Rule[T, R]) error {
	if err := m.env.Bind(r); err != nil {
		return errors.Wrap(err, "Monitor", "AddRule", "bind rule for "+m.name)
	}
	return nil
}

// Update ingests one sample:
//
//  1. publishes value on <name>.value unconditionally
//  2. feeds the stats window; when the window elapses, publishes the
//     snapshot on <name>.stats and resets the window
//  3. evaluates the envelope; when the violation state changes, publishes
//     the new result on <name>.violation
//
// Returns the current (possibly unchanged) envelope result.
func (m *Monitor[T, R]) Update(value T, now R) envelope.Result {
	failed := m.valueTopic.Publish(value)
	if m.metrics != nil {
		m.metrics.RecordSample(m.name)
		m.metrics.RecordPublish(m.valueTopic.Name(), failed)
	}

	if m.window.Add(value, now) {
		if snap, ok := m.window.Snapshot(); ok {
			failed = m.statsTopic.Publish(snap)
			if m.metrics != nil {
				m.metrics.RecordWindow(m.name)
				m.metrics.RecordPublish(m.statsTopic.Name(), failed)
			}
		}
		m.window.Reset()
	}

	res := m.env.Update(value, now)
	if res.State != m.last.State {
		failed = m.violationTopic.Publish(res)
		if m.metrics != nil {
			if res.State == envelope.Violation {
				m.metrics.RecordViolation(m.name)
			}
			m.metrics.RecordPublish(m.violationTopic.Name(), failed)
		}
		m.last = res
	}
	return res
}

// Last returns the most recently published violation result.
func (m *Monitor[T, R]) Last() envelope.Result { return m.last }

// ViolationRule returns the rule that produced a violation result, or nil
// for a normal result.
func (m *Monitor[T, R]) ViolationRule(res envelope.Result) envelope.Rule[T, R] {
	if res.State != envelope.Violation || res.Index < 0 || res.Index >= m.env.Len() {
		return nil
	}
	return m.env.Rule(res.Index)
}

// Reset clears the envelope, the stats window, and the last observed state.
// Topic registrations are untouched.
func (m *Monitor[T, R]) Reset() {
	m.env.Reset()
	m.window.Reset()
	m.last = envelope.NormalResult()
}
