package envelope

import "github.com/c360/signalbus/errors"

// State is the aggregate outcome of an envelope evaluation.
type State uint8

// Evaluation states.
const (
	Normal State = iota
	Violation
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Violation:
		return "violation"
	default:
		return "unknown"
	}
}

// NoViolation is the Index sentinel carried by a Normal result.
const NoViolation = -1

// Result describes the outcome of a scalar envelope evaluation: the state
// and, on violation, the index of the rule that fired.
type Result struct {
	State State `json:"state"`
	Index int   `json:"index"`
}

// NormalResult returns the canonical "no violation" result.
func NormalResult() Result {
	return Result{State: Normal, Index: NoViolation}
}

// Envelope is a fixed-capacity, priority-ordered set of bound rules. Rules
// are evaluated in binding order; index 0 has the highest priority and the
// first violating rule wins. Binding order, not severity, decides which rule
// reports.
//
// The envelope holds references to externally owned rules; bound rules must
// outlive it. Not safe for concurrent use.
type Envelope[T Value, R Rep] struct {
	rules []Rule[T, R]
	cap   int
}

// New creates an envelope that accepts up to capacity rules.
func New[T Value, R Rep](capacity int) *Envelope[T, R] {
	if capacity < 1 {
		capacity = 1
	}
	return &Envelope[T, R]{
		rules: make([]Rule[T, R], 0, capacity),
		cap:   capacity,
	}
}

// Bind appends a rule at the next (lowest-priority) position. Returns
// ErrEnvelopeFull once capacity is reached; the rule set is unchanged on
// error.
func (e *Envelope[T, R]) Bind(r Rule[T, R]) error {
	if r == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Envelope", "Bind", "nil rule check")
	}
	if len(e.rules) >= e.cap {
		return errors.WrapInvalid(errors.ErrEnvelopeFull, "Envelope", "Bind", "capacity check")
	}
	e.rules = append(e.rules, r)
	return nil
}

// Update evaluates the bound rules in priority order against value at time
// now and returns the first violation, or a Normal result if none fire.
// Every rule up to the first violation advances its debounce state.
func (e *Envelope[T, R]) Update(value T, now R) Result {
	for i, r := range e.rules {
		if r.Eval(value, now) {
			return Result{State: Violation, Index: i}
		}
	}
	return NormalResult()
}

// Reset returns every bound rule's debounce state to Normal.
func (e *Envelope[T, R]) Reset() {
	for _, r := range e.rules {
		r.Reset()
	}
}

// Len returns the number of bound rules.
func (e *Envelope[T, R]) Len() int {
	return len(e.rules)
}

// Capacity returns the maximum number of rules the envelope accepts.
func (e *Envelope[T, R]) Capacity() int {
	return e.cap
}

// Rule returns the rule bound at index i, or nil if out of range. Used to
// recover the rule that caused a reported violation.
func (e *Envelope[T, R]) Rule(i int) Rule[T, R] {
	if i < 0 || i >= len(e.rules) {
		return nil
	}
	return e.rules[i]
}
