package monitor

import (
	"sync"

	"github.com/c360/signalbus/envelope"
	"github.com/c360/signalbus/errors"
	"github.com/c360/signalbus/msgbus"
)

// DefaultPoolCapacity is the monitor limit used when NewPool is given a
// non-positive capacity.
const DefaultPoolCapacity = 16

// AnyMonitor is the type-erased handle a Pool holds for each monitor.
type AnyMonitor interface {
	Name() string
	Reset()
}

// Pool manages a bounded set of monitors keyed by parameter name. Monitors
// are created once and live for the process duration; there is no removal.
type Pool struct {
	bus      *msgbus.Bus
	capacity int

	mu       sync.Mutex
	monitors map[string]AnyMonitor
}

// NewPool creates a pool that registers monitor topics on the given bus.
func NewPool(bus *msgbus.Bus, capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	return &Pool{
		bus:      bus,
		capacity: capacity,
		monitors: make(map[string]AnyMonitor, capacity),
	}
}

// Bus returns the bus monitors register their topics on.
func (p *Pool) Bus() *msgbus.Bus { return p.bus }

// Capacity returns the monitor limit.
func (p *Pool) Capacity() int { return p.capacity }

// Len returns the number of created monitors.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.monitors)
}

// Get returns the monitor handle for a parameter name.
func (p *Pool) Get(name string) (AnyMonitor, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.monitors[name]
	if m == nil {
		// a reserve placeholder from a Create still in flight
		return nil, false
	}
	return m, ok
}

// Names returns the names of all created monitors.
func (p *Pool) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.monitors))
	for name := range p.monitors {
		out = append(out, name)
	}
	return out
}

// ResetAll resets every monitor in the pool. Used when a monitoring session
// restarts.
func (p *Pool) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.monitors {
		if m != nil {
			m.Reset()
		}
	}
}

// reserve claims a slot for name, or reports why it cannot.
func (p *Pool) reserve(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.monitors[name]; exists {
		return errors.Wrap(errors.ErrMonitorExists, "Pool", "Create", "duplicate check for "+name)
	}
	if len(p.monitors) >= p.capacity {
		return errors.Wrap(errors.ErrMonitorPoolFull, "Pool", "Create", "capacity check for "+name)
	}
	// placeholder prevents races between concurrent Creates for one name;
	// replaced by commit or removed by release
	p.monitors[name] = nil
	return nil
}

func (p *Pool) commit(name string, m AnyMonitor) {
	p.mu.Lock()
	p.monitors[name] = m
	p.mu.Unlock()
}

func (p *Pool) release(name string) {
	p.mu.Lock()
	delete(p.monitors, name)
	p.mu.Unlock()
}

// Create builds a monitor inside the pool. It is a package function rather
// than a method so the monitor's value and time types stay generic.
func Create[T envelope.Value, R envelope.Rep](p *Pool, name string, window R, options ...Option) (*Monitor[T, R], error) {
	if err := p.reserve(name); err != nil {
		return nil, err
	}

	m, err := New[T, R](p.bus, name, window, options...)
	if err != nil {
		p.release(name)
		return nil, err
	}

	p.commit(name, m)
	return m, nil
}
