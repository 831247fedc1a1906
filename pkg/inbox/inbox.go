package inbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/c360/signalbus/errors"
	"github.com/c360/signalbus/msgbus"
)

// OverflowPolicy defines how Send behaves when the inbox is full.
type OverflowPolicy int

const (
	// DropNewest rejects the incoming message when the inbox is full.
	DropNewest OverflowPolicy = iota

	// DropOldest evicts the oldest pending message to make room.
	DropOldest

	// BlockWithTimeout waits up to the send timeout for space, then rejects.
	BlockWithTimeout
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case BlockWithTimeout:
		return "BlockWithTimeout"
	default:
		return "Unknown"
	}
}

// DropCallback is called with each message dropped due to overflow.
type DropCallback func(msg msgbus.Message)

// Inbox is a bounded receiver backing one consumer task. Send is safe to
// call from any number of publishing tasks concurrently with one draining
// consumer.
type Inbox struct {
	ch    chan msgbus.Message
	opts  *inboxOptions
	stats *Statistics

	mu      sync.RWMutex // guards closed against concurrent Send
	closed  bool
	metrics *inboxMetrics
}

// New creates an inbox with the given capacity. Capacity must be positive.
func New(capacity int, options ...Option) (*Inbox, error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("capacity must be positive, got %d", capacity),
			"Inbox", "New", "capacity validation")
	}

	opts := applyOptions(options...)
	in := &Inbox{
		ch:    make(chan msgbus.Message, capacity),
		opts:  opts,
		stats: NewStatistics(),
	}

	if opts.metricsReg != nil {
		m, err := newInboxMetrics(opts.metricsReg, opts.metricsName, capacity)
		if err != nil {
			return nil, err
		}
		in.metrics = m
	}

	return in, nil
}

// Send delivers a message to the inbox, honoring the overflow policy. It
// reports whether the message was accepted. Send on a closed inbox returns
// false.
//
// Implements msgbus.Receiver.
func (in *Inbox) Send(msg msgbus.Message) bool {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if in.closed {
		return false
	}

	accepted := in.send(msg)
	if accepted {
		in.stats.Sent()
	} else {
		in.stats.Dropped()
	}
	if in.metrics != nil {
		in.metrics.recordSend(accepted, len(in.ch))
	}
	if !accepted && in.opts.dropCallback != nil {
		in.opts.dropCallback(msg)
	}
	return accepted
}

func (in *Inbox) send(msg msgbus.Message) bool {
	select {
	case in.ch <- msg:
		return true
	default:
	}

	switch in.opts.overflowPolicy {
	case DropOldest:
		// evict one, then retry without blocking; a racing consumer may
		// have drained the inbox already, which is fine
		select {
		case old := <-in.ch:
			in.stats.Evicted()
			if in.opts.dropCallback != nil {
				in.opts.dropCallback(old)
			}
		default:
		}
		select {
		case in.ch <- msg:
			return true
		default:
			return false
		}

	case BlockWithTimeout:
		timer := time.NewTimer(in.opts.sendTimeout)
		defer timer.Stop()
		select {
		case in.ch <- msg:
			return true
		case <-timer.C:
			return false
		}

	default: // DropNewest
		return false
	}
}

// Receive blocks until a message is available, the context is canceled, or
// the inbox is closed and drained.
func (in *Inbox) Receive(ctx context.Context) (msgbus.Message, error) {
	select {
	case msg, ok := <-in.ch:
		if !ok {
			return msgbus.Message{}, errors.ErrShuttingDown
		}
		in.stats.Received()
		if in.metrics != nil {
			in.metrics.recordReceive(len(in.ch))
		}
		return msg, nil
	case <-ctx.Done():
		return msgbus.Message{}, errors.WrapTransient(ctx.Err(), "Inbox", "Receive", "wait for message")
	}
}

// TryReceive returns the next pending message without blocking.
func (in *Inbox) TryReceive() (msgbus.Message, bool) {
	select {
	case msg, ok := <-in.ch:
		if !ok {
			return msgbus.Message{}, false
		}
		in.stats.Received()
		if in.metrics != nil {
			in.metrics.recordReceive(len(in.ch))
		}
		return msg, true
	default:
		return msgbus.Message{}, false
	}
}

// Chan exposes the underlying channel for select-based consumers. Messages
// taken directly from the channel bypass the received counter.
func (in *Inbox) Chan() <-chan msgbus.Message {
	return in.ch
}

// Len returns the number of pending messages.
func (in *Inbox) Len() int { return len(in.ch) }

// Cap returns the inbox capacity.
func (in *Inbox) Cap() int { return cap(in.ch) }

// Stats returns the inbox statistics tracker.
func (in *Inbox) Stats() *Statistics { return in.stats }

// Close marks the inbox closed and closes the channel. Pending messages stay
// readable; subsequent Sends return false. Close is idempotent.
func (in *Inbox) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true
	close(in.ch)
	return nil
}
