package inbox

import "sync/atomic"

// Statistics tracks inbox delivery counters. All updates are atomic.
type Statistics struct {
	sent     atomic.Int64
	received atomic.Int64
	dropped  atomic.Int64
	evicted  atomic.Int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Sent records an accepted Send.
func (s *Statistics) Sent() { s.sent.Add(1) }

// Received records a consumed message.
func (s *Statistics) Received() { s.received.Add(1) }

// Dropped records a rejected Send.
func (s *Statistics) Dropped() { s.dropped.Add(1) }

// Evicted records a pending message displaced by DropOldest.
func (s *Statistics) Evicted() { s.evicted.Add(1) }

// SentCount returns the number of accepted Sends.
func (s *Statistics) SentCount() int64 { return s.sent.Load() }

// ReceivedCount returns the number of consumed messages.
func (s *Statistics) ReceivedCount() int64 { return s.received.Load() }

// DroppedCount returns the number of rejected Sends.
func (s *Statistics) DroppedCount() int64 { return s.dropped.Load() }

// EvictedCount returns the number of messages displaced by DropOldest.
func (s *Statistics) EvictedCount() int64 { return s.evicted.Load() }

// DropRate returns the fraction of Sends that were rejected (0.0 to 1.0).
func (s *Statistics) DropRate() float64 {
	total := s.sent.Load() + s.dropped.Load()
	if total == 0 {
		return 0.0
	}
	return float64(s.dropped.Load()) / float64(total)
}

// Reset resets all counters to zero.
func (s *Statistics) Reset() {
	s.sent.Store(0)
	s.received.Store(0)
	s.dropped.Store(0)
	s.evicted.Store(0)
}

// Summary is a point-in-time snapshot of all counters.
type Summary struct {
	Sent     int64   `json:"sent"`
	Received int64   `json:"received"`
	Dropped  int64   `json:"dropped"`
	Evicted  int64   `json:"evicted"`
	DropRate float64 `json:"drop_rate"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() Summary {
	return Summary{
		Sent:     s.SentCount(),
		Received: s.ReceivedCount(),
		Dropped:  s.DroppedCount(),
		Evicted:  s.EvictedCount(),
		DropRate: s.DropRate(),
	}
}
