// Package stats provides O(1) min/avg/max accumulation for telemetry
// samples, plus a time-windowed variant used by parameter monitors.
//
// Accumulators are single-writer: the sampling task owns them and consumers
// only ever see published Snapshot copies, so no locking is done here.
package stats

import "math"

// Number constrains accumulator sample types.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Rep constrains the time representation used for windowing: floating-point
// seconds or a wrap-safe unsigned tick counter.
type Rep interface {
	~float32 | ~float64 | ~uint32 | ~uint64
}

// Snapshot is a published copy of an accumulator's state.
type Snapshot[T Number] struct {
	Min   T       `json:"min"`
	Max   T       `json:"max"`
	Avg   float64 `json:"avg"`
	Count uint32  `json:"count"`
}

// Option configures an Accumulator.
type Option func(*accOptions)

type accOptions struct {
	filterNaN bool
}

// WithNaNFiltering makes the accumulator skip NaN samples silently. Only
// meaningful for floating-point sample types.
func WithNaNFiltering() Option {
	return func(o *accOptions) { o.filterNaN = true }
}

// Accumulator tracks min, max, sum, and count of added samples in O(1) per
// Add with no allocation.
type Accumulator[T Number] struct {
	count     uint32
	sum       float64
	min       T
	max       T
	filterNaN bool
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator[T Number](opts ...Option) *Accumulator[T] {
	var o accOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Accumulator[T]{filterNaN: o.filterNaN}
}

// Add folds one sample into the accumulator.
func (a *Accumulator[T]) Add(v T) {
	if a.filterNaN && math.IsNaN(float64(v)) {
		return
	}
	if a.count == 0 {
		a.min = v
		a.max = v
	} else {
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
	}
	a.sum += float64(v)
	a.count++
}

// AddMany folds a batch of samples.
func (a *Accumulator[T]) AddMany(vs []T) {
	for _, v := range vs {
		a.Add(v)
	}
}

// Reset clears the accumulator.
func (a *Accumulator[T]) Reset() {
	a.count = 0
	a.sum = 0
}

// HasData reports whether at least one sample was added since the last reset.
func (a *Accumulator[T]) HasData() bool { return a.count > 0 }

// Count returns the number of accumulated samples.
func (a *Accumulator[T]) Count() uint32 { return a.count }

// Min returns the smallest sample. Valid only if HasData.
func (a *Accumulator[T]) Min() T { return a.min }

// Max returns the largest sample. Valid only if HasData.
func (a *Accumulator[T]) Max() T { return a.max }

// Sum returns the running sum.
func (a *Accumulator[T]) Sum() float64 { return a.sum }

// Avg returns the mean of accumulated samples, or 0 with no data.
func (a *Accumulator[T]) Avg() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// PeakToPeak returns max-min, or 0 with no data.
func (a *Accumulator[T]) PeakToPeak() T {
	if a.count == 0 {
		var zero T
		return zero
	}
	return a.max - a.min
}

// MidRange returns the midpoint of min and max, or 0 with no data.
func (a *Accumulator[T]) MidRange() float64 {
	if a.count == 0 {
		return 0
	}
	return (float64(a.max) + float64(a.min)) / 2
}

// Snapshot returns a copy of the current state and whether any data exists.
func (a *Accumulator[T]) Snapshot() (Snapshot[T], bool) {
	if a.count == 0 {
		return Snapshot[T]{}, false
	}
	return Snapshot[T]{
		Min:   a.min,
		Max:   a.max,
		Avg:   a.Avg(),
		Count: a.count,
	}, true
}

// Windowed wraps an Accumulator with a time window. Add reports when the
// window has elapsed; the caller snapshots, publishes, and resets. The window
// measures from the first sample after a reset, so idle gaps do not produce
// empty windows.
type Windowed[T Number, R Rep] struct {
	acc     Accumulator[T]
	window  R
	start   R
	started bool
}

// NewWindowed creates a windowed accumulator with the given window length,
// expressed in the time rep's own units.
func NewWindowed[T Number, R Rep](window R, opts ...Option) *Windowed[T, R] {
	var o accOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Windowed[T, R]{
		acc:    Accumulator[T]{filterNaN: o.filterNaN},
		window: window,
	}
}

// Add folds one timestamped sample and reports whether the window has
// elapsed. Elapsed time uses the rep's own arithmetic, so unsigned tick
// counters remain correct across wraparound.
func (w *Windowed[T, R]) Add(v T, now R) bool {
	if !w.started {
		w.started = true
		w.start = now
	}
	w.acc.Add(v)
	return now-w.start >= w.window
}

// Snapshot returns a copy of the current window's state and whether any data
// exists.
func (w *Windowed[T, R]) Snapshot() (Snapshot[T], bool) {
	return w.acc.Snapshot()
}

// Reset clears the window; the next Add starts a new one.
func (w *Windowed[T, R]) Reset() {
	w.acc.Reset()
	w.started = false
}

// Window returns the configured window length.
func (w *Windowed[T, R]) Window() R { return w.window }

// Accumulator exposes the underlying accumulator for ad-hoc queries.
func (w *Windowed[T, R]) Accumulator() *Accumulator[T] { return &w.acc }
