package envelope

import "github.com/c360/signalbus/errors"

// ArrayResult describes the outcome of an array evaluation: the state, which
// rule set fired (priority order), the first offending element, and a count
// whose meaning depends on the reducer (total violators seen, or run length).
type ArrayResult struct {
	State      State `json:"state"`
	RuleIndex  int   `json:"rule_index"`
	FirstIndex int   `json:"first_index"`
	Count      int   `json:"count"`
}

// NormalArrayResult returns the canonical "no violation" array result.
func NormalArrayResult() ArrayResult {
	return ArrayResult{State: Normal, RuleIndex: NoViolation, FirstIndex: NoViolation}
}

// Reducer turns per-element violation booleans into one aggregate decision.
// Eval calls step(i) for elements in index order and may stop early once the
// decision is made. Each step call advances that element's debounce state.
type Reducer interface {
	Eval(n int, step func(i int) bool) (violation bool, first, count int)
}

// AnyElement violates if at least one element violates.
type AnyElement struct{}

// Eval implements Reducer.
func (AnyElement) Eval(n int, step func(i int) bool) (bool, int, int) {
	for i := 0; i < n; i++ {
		if step(i) {
			return true, i, 1
		}
	}
	return false, NoViolation, 0
}

// AllElements violates only if every element violates.
type AllElements struct{}

// Eval implements Reducer.
func (AllElements) Eval(n int, step func(i int) bool) (bool, int, int) {
	first := NoViolation
	count := 0
	for i := 0; i < n; i++ {
		if !step(i) {
			return false, NoViolation, 0
		}
		if first == NoViolation {
			first = i
		}
		count++
	}
	return count > 0, first, count
}

// CountAtLeast violates once at least K elements violate; the first K are
// reported via count.
type CountAtLeast struct {
	K int
}

// Eval implements Reducer.
func (r CountAtLeast) Eval(n int, step func(i int) bool) (bool, int, int) {
	first := NoViolation
	count := 0
	for i := 0; i < n; i++ {
		if step(i) {
			if first == NoViolation {
				first = i
			}
			count++
			if count >= r.K {
				return true, first, count
			}
		}
	}
	return false, NoViolation, count
}

// FractionAtLeast violates once the violating fraction reaches Num/Den,
// i.e. at least ceil(Num/Den * n) elements.
type FractionAtLeast struct {
	Num int
	Den int
}

// Eval implements Reducer.
func (r FractionAtLeast) Eval(n int, step func(i int) bool) (bool, int, int) {
	den := r.Den
	if den <= 0 {
		den = 1
	}
	required := (r.Num*n + den - 1) / den
	first := NoViolation
	count := 0
	for i := 0; i < n; i++ {
		if step(i) {
			if first == NoViolation {
				first = i
			}
			count++
			if count >= required {
				return true, first, count
			}
		}
	}
	return false, NoViolation, count
}

// RunLengthAtLeast violates when a contiguous run of at least L consecutive
// violating elements exists; first reports the run's start index and count
// the run length.
type RunLengthAtLeast struct {
	L int
}

// Eval implements Reducer.
func (r RunLengthAtLeast) Eval(n int, step func(i int) bool) (bool, int, int) {
	run := 0
	runStart := 0
	for i := 0; i < n; i++ {
		if step(i) {
			if run == 0 {
				runStart = i
			}
			run++
			if run >= r.L {
				return true, runStart, run
			}
		} else {
			run = 0
		}
	}
	return false, NoViolation, 0
}

// RuleSet holds one independent rule instance per array element. Debounce
// state must never be shared across elements, so the set is built from a
// prototype factory rather than a single rule value.
type RuleSet[T Value, R Rep] struct {
	rules []Rule[T, R]
}

// NewRuleSet builds a rule set of n elements, calling proto once per element.
func NewRuleSet[T Value, R Rep](n int, proto func() Rule[T, R]) *RuleSet[T, R] {
	rules := make([]Rule[T, R], n)
	for i := range rules {
		rules[i] = proto()
	}
	return &RuleSet[T, R]{rules: rules}
}

// Len returns the number of per-element rules.
func (rs *RuleSet[T, R]) Len() int {
	return len(rs.rules)
}

// Rule returns the rule for element i, or nil if out of range.
func (rs *RuleSet[T, R]) Rule(i int) Rule[T, R] {
	if i < 0 || i >= len(rs.rules) {
		return nil
	}
	return rs.rules[i]
}

// Reset returns every element's debounce state to Normal.
func (rs *RuleSet[T, R]) Reset() {
	for _, r := range rs.rules {
		r.Reset()
	}
}

// ArrayEnvelope evaluates rule sets in priority order against an array of
// values, reducing per-element outcomes with the configured Reducer. Like
// Envelope it is first-match: the first rule set whose reduction reports a
// violation wins.
type ArrayEnvelope[T Value, R Rep] struct {
	reduce Reducer
	sets   []*RuleSet[T, R]
	cap    int
}

// NewArray creates an array envelope with the given rule-set capacity and
// reducer.
func NewArray[T Value, R Rep](capacity int, reduce Reducer) *ArrayEnvelope[T, R] {
	if capacity < 1 {
		capacity = 1
	}
	if reduce == nil {
		reduce = AnyElement{}
	}
	return &ArrayEnvelope[T, R]{
		reduce: reduce,
		sets:   make([]*RuleSet[T, R], 0, capacity),
		cap:    capacity,
	}
}

// Bind appends a rule set at the next priority position. Returns
// ErrEnvelopeFull once capacity is reached.
func (e *ArrayEnvelope[T, R]) Bind(rs *RuleSet[T, R]) error {
	if rs == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ArrayEnvelope", "Bind", "nil rule set check")
	}
	if len(e.sets) >= e.cap {
		return errors.WrapInvalid(errors.ErrEnvelopeFull, "ArrayEnvelope", "Bind", "capacity check")
	}
	e.sets = append(e.sets, rs)
	return nil
}

// Update evaluates vals against each bound rule set in priority order and
// returns the first violating reduction, or a Normal result. When a rule
// set has fewer per-element rules than vals, only the covered prefix is
// evaluated.
func (e *ArrayEnvelope[T, R]) Update(vals []T, now R) ArrayResult {
	for si, rs := range e.sets {
		n := len(vals)
		if len(rs.rules) < n {
			n = len(rs.rules)
		}
		violation, first, count := e.reduce.Eval(n, func(i int) bool {
			return rs.rules[i].Eval(vals[i], now)
		})
		if violation {
			return ArrayResult{State: Violation, RuleIndex: si, FirstIndex: first, Count: count}
		}
	}
	return NormalArrayResult()
}

// Reset returns every bound rule set to Normal.
func (e *ArrayEnvelope[T, R]) Reset() {
	for _, rs := range e.sets {
		rs.Reset()
	}
}

// Len returns the number of bound rule sets.
func (e *ArrayEnvelope[T, R]) Len() int {
	return len(e.sets)
}
