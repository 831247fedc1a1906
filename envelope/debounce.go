package envelope

// Rep constrains the time representation used by debounce timers: either
// floating-point seconds or an unsigned tick counter. Signed integers are
// excluded: wraparound subtraction is only well-defined for unsigned reps.
type Rep interface {
	~float32 | ~float64 | ~uint32 | ~uint64
}

// Value constrains the sample types rules can evaluate.
type Value interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// elapsed computes now-since in the rep's own arithmetic. Unsigned reps wrap
// mod 2^N, which is the intended wrap-safe behavior for tick counters.
func elapsed[R Rep](now, since R) R {
	return now - since
}

// Debounce converts an instantaneous boolean condition into a stabilized
// violation flag. The condition must persist for EnterDelay before the output
// flips to violating, and must stay clear for ExitDelay before it flips back.
// A zero delay makes the corresponding transition immediate.
//
// Each debounce block belongs to exactly one signal; sharing one across
// unrelated signals corrupts its pending timers.
type Debounce[R Rep] struct {
	EnterDelay R
	ExitDelay  R

	violating    bool
	enterPending bool
	exitPending  bool
	enterSince   R // valid iff enterPending
	exitSince    R // valid iff exitPending
}

// Step advances the state machine with the instantaneous condition at time
// now and returns the stabilized output: true while in violation.
func (d *Debounce[R]) Step(condNow bool, now R) bool {
	if condNow {
		// moving toward violation
		d.exitPending = false
		if d.violating {
			return true
		}
		if !d.enterPending {
			d.enterPending = true
			d.enterSince = now
		}
		if elapsed(now, d.enterSince) >= d.EnterDelay {
			d.enterPending = false
			d.violating = true
			return true
		}
		return false // waiting to enter violation
	}

	// moving toward normal
	d.enterPending = false
	if !d.violating {
		return false
	}
	if !d.exitPending {
		d.exitPending = true
		d.exitSince = now
	}
	if elapsed(now, d.exitSince) >= d.ExitDelay {
		d.exitPending = false
		d.violating = false
		return false
	}
	return true // waiting to exit violation
}

// Reset unconditionally returns the state machine to Normal, clearing any
// pending transition. Used when a monitoring session restarts.
func (d *Debounce[R]) Reset() {
	var zero R
	d.violating = false
	d.enterPending = false
	d.exitPending = false
	d.enterSince = zero
	d.exitSince = zero
}

// Violating reports the current stabilized state without advancing timers.
func (d *Debounce[R]) Violating() bool {
	return d.violating
}
