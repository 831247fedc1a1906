package envelope

import "github.com/c360/signalbus/errors"

// Bounds selects the boundary policy applied at threshold edges: inclusive
// (<=, >=) or exclusive (<, >) comparisons. The zero value is exclusive,
// matching the usual "normal strictly inside the band" reading.
type Bounds struct {
	Inclusive bool
}

func belowOK[T Value](b Bounds, v, hi T) bool {
	if b.Inclusive {
		return v <= hi
	}
	return v < hi
}

func aboveOK[T Value](b Bounds, v, lo T) bool {
	if b.Inclusive {
		return v >= lo
	}
	return v > lo
}

func insideOK[T Value](b Bounds, v, lo, hi T) bool {
	return aboveOK(b, v, lo) && belowOK(b, v, hi)
}

// Rule is the contract every envelope rule satisfies. Eval computes the
// rule's immediate condition for value v, advances the rule's debounce state
// at time now, and returns the stabilized result (true == violation).
//
// Eval mutates debounce state; rules must not be shared between envelopes or
// between elements of an array rule set.
type Rule[T Value, R Rep] interface {
	Eval(v T, now R) bool
	Reset()
}

// Above violates when the value exceeds Hi.
type Above[T Value, R Rep] struct {
	Debounce[R]
	Hi     T
	Bounds Bounds
}

// Eval implements Rule.
func (r *Above[T, R]) Eval(v T, now R) bool {
	return r.Step(!belowOK(r.Bounds, v, r.Hi), now)
}

// Below violates when the value falls under Lo.
type Below[T Value, R Rep] struct {
	Debounce[R]
	Lo     T
	Bounds Bounds
}

// Eval implements Rule.
func (r *Below[T, R]) Eval(v T, now R) bool {
	return r.Step(!aboveOK(r.Bounds, v, r.Lo), now)
}

// Within violates when the value leaves the [Lo, Hi] band.
type Within[T Value, R Rep] struct {
	Debounce[R]
	Lo     T
	Hi     T
	Bounds Bounds
}

// Eval implements Rule.
func (r *Within[T, R]) Eval(v T, now R) bool {
	return r.Step(!insideOK(r.Bounds, v, r.Lo, r.Hi), now)
}

// Outside violates when the value enters the forbidden [Lo, Hi] band.
type Outside[T Value, R Rep] struct {
	Debounce[R]
	Lo     T
	Hi     T
	Bounds Bounds
}

// Eval implements Rule.
func (r *Outside[T, R]) Eval(v T, now R) bool {
	return r.Step(insideOK(r.Bounds, v, r.Lo, r.Hi), now)
}

// WithinHysteresis is Within with separate enter/exit bands: once violating
// (outside the outer [LoEnter, HiEnter] band) it stays violating until the
// value is back inside the inner [LoExit, HiExit] band; once normal it only
// re-enters violation by leaving the outer band again.
//
// Thresholds must satisfy LoEnter <= LoExit <= HiExit <= HiEnter. The
// NewWithinHysteresis constructor validates this; direct struct construction
// leaves the ordering as a caller obligation.
type WithinHysteresis[T Value, R Rep] struct {
	Debounce[R]
	LoEnter T
	HiEnter T
	LoExit  T
	HiExit  T
	Bounds  Bounds
}

// Eval implements Rule.
func (r *WithinHysteresis[T, R]) Eval(v T, now R) bool {
	var cond bool
	if r.violating {
		// stay violating until back inside the inner band
		cond = !insideOK(r.Bounds, v, r.LoExit, r.HiExit)
	} else {
		// start violation only past the outer thresholds
		cond = !insideOK(r.Bounds, v, r.LoEnter, r.HiEnter)
	}
	return r.Step(cond, now)
}

// OutsideHysteresis is the inverse: once violating (inside the inner
// [LoEnter, HiEnter] band) it stays violating until the value is past the
// outer [LoExit, HiExit] band; once normal it only becomes violating by
// entering the inner band.
//
// Thresholds must satisfy LoExit <= LoEnter <= HiEnter <= HiExit.
type OutsideHysteresis[T Value, R Rep] struct {
	Debounce[R]
	LoEnter T
	HiEnter T
	LoExit  T
	HiExit  T
	Bounds  Bounds
}

// Eval implements Rule.
func (r *OutsideHysteresis[T, R]) Eval(v T, now R) bool {
	var cond bool
	if r.violating {
		// remain violating while still inside the outer band
		cond = insideOK(r.Bounds, v, r.LoExit, r.HiExit)
	} else {
		// enter violation when moving into the inner band
		cond = insideOK(r.Bounds, v, r.LoEnter, r.HiEnter)
	}
	return r.Step(cond, now)
}

// Preset builders mirror the operator-facing reading of each rule:
// "normal below th" builds the rule that violates above it.

// NormalBelow builds a rule that is normal while v <= th (violates above).
func NormalBelow[T Value, R Rep](th T, enterDelay, exitDelay R) *Above[T, R] {
	return &Above[T, R]{Debounce: Debounce[R]{EnterDelay: enterDelay, ExitDelay: exitDelay}, Hi: th}
}

// NormalAbove builds a rule that is normal while v >= th (violates below).
func NormalAbove[T Value, R Rep](th T, enterDelay, exitDelay R) *Below[T, R] {
	return &Below[T, R]{Debounce: Debounce[R]{EnterDelay: enterDelay, ExitDelay: exitDelay}, Lo: th}
}

// NormalWithin builds a rule that is normal while lo <= v <= hi.
func NormalWithin[T Value, R Rep](lo, hi T, enterDelay, exitDelay R) *Within[T, R] {
	return &Within[T, R]{Debounce: Debounce[R]{EnterDelay: enterDelay, ExitDelay: exitDelay}, Lo: lo, Hi: hi}
}

// NormalOutside builds a rule that is normal while v is outside the
// forbidden [lo, hi] band.
func NormalOutside[T Value, R Rep](lo, hi T, enterDelay, exitDelay R) *Outside[T, R] {
	return &Outside[T, R]{Debounce: Debounce[R]{EnterDelay: enterDelay, ExitDelay: exitDelay}, Lo: lo, Hi: hi}
}

// NewWithinHysteresis builds a validated WithinHysteresis rule. Thresholds
// must satisfy loEnter <= loExit <= hiExit <= hiEnter.
func NewWithinHysteresis[T Value, R Rep](loEnter, loExit, hiExit, hiEnter T, enterDelay, exitDelay R) (*WithinHysteresis[T, R], error) {
	if !(loEnter <= loExit && loExit <= hiExit && hiExit <= hiEnter) {
		return nil, errors.WrapInvalid(errors.ErrBadThresholds, "envelope", "NewWithinHysteresis", "threshold ordering")
	}
	return &WithinHysteresis[T, R]{
		Debounce: Debounce[R]{EnterDelay: enterDelay, ExitDelay: exitDelay},
		LoEnter:  loEnter, HiEnter: hiEnter, LoExit: loExit, HiExit: hiExit,
	}, nil
}

// NewOutsideHysteresis builds a validated OutsideHysteresis rule. Thresholds
// must satisfy loExit <= loEnter <= hiEnter <= hiExit.
func NewOutsideHysteresis[T Value, R Rep](loExit, loEnter, hiEnter, hiExit T, enterDelay, exitDelay R) (*OutsideHysteresis[T, R], error) {
	if !(loExit <= loEnter && loEnter <= hiEnter && hiEnter <= hiExit) {
		return nil, errors.WrapInvalid(errors.ErrBadThresholds, "envelope", "NewOutsideHysteresis", "threshold ordering")
	}
	return &OutsideHysteresis[T, R]{
		Debounce: Debounce[R]{EnterDelay: enterDelay, ExitDelay: exitDelay},
		LoEnter:  loEnter, HiEnter: hiEnter, LoExit: loExit, HiExit: hiExit,
	}, nil
}
