// Package monitor composes a topic triad, a windowed statistics accumulator,
// and a limit envelope into a per-parameter sampling pipeline.
//
// A Monitor named "temp" owns three bus topics:
//
//	temp.value     every sample, republished live
//	temp.stats     min/avg/max snapshot once per window
//	temp.violation envelope results, published on state change only
//
// Update is driven by the owning task with each new sample and its
// timestamp. Violation publishes are edge-triggered: subscribers see one
// message when a limit is entered and one when it clears, not one per
// sample.
//
// A Pool manages a bounded set of monitors keyed by parameter name, for
// config-driven setups.
package monitor
