// Package envelope implements a bounded limit-checking engine: debounced
// threshold rules evaluated in fixed priority order against scalar values or
// arrays of values.
//
// # Overview
//
// A rule turns an instantaneous condition ("is the value outside its limits
// right now?") into a stabilized violation flag via a per-rule debounce state
// machine with independent enter and exit delays. Rules are bound into an
// Envelope, which evaluates them in binding order and reports the first
// (highest-priority) violation.
//
//	below := envelope.NormalAbove[float64, float64](0.0, 2.0, 0)
//	env := envelope.New[float64, float64](4)
//	_ = env.Bind(below)
//	res := env.Update(sensorValue, nowSeconds)
//	if res.State == envelope.Violation {
//	    // handle rule res.Index
//	}
//
// # Time representation
//
// Rules are generic over the time representation: floating-point seconds or
// an unsigned tick counter. Elapsed time for unsigned reps is computed with
// modular subtraction, so tick counters that wrap around remain correct.
// Timers are data, not scheduling primitives: debounce only advances when the
// owning task calls Update, so a stalled sampler stalls debounce timing too.
//
// # Array evaluation
//
// ArrayEnvelope applies one rule instance per array element (independent
// debounce state per element) and reduces the per-element booleans to one
// decision through a pluggable Reducer: AnyElement, AllElements,
// CountAtLeast, FractionAtLeast, or RunLengthAtLeast.
//
// # Concurrency
//
// Rules and envelopes hold mutable debounce state and are not safe for
// concurrent use. Each envelope belongs to exactly one evaluating task,
// matching the single-writer discipline of the message bus.
package envelope
