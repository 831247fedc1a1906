package envelope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebounce_EnterDelayWindow(t *testing.T) {
	// condition true from t0: output stays false for t in [t0, t0+enter)
	// and flips true once elapsed >= enter delay
	d := Debounce[float64]{EnterDelay: 2.0, ExitDelay: 0}

	assert.False(t, d.Step(true, 0.0))
	assert.False(t, d.Step(true, 1.0))
	assert.False(t, d.Step(true, 1.999))
	assert.True(t, d.Step(true, 2.0))
	assert.True(t, d.Step(true, 5.0))
}

func TestDebounce_ExitDelayWindow(t *testing.T) {
	d := Debounce[float64]{EnterDelay: 0, ExitDelay: 3.0}

	assert.True(t, d.Step(true, 0.0), "zero enter delay commits immediately")

	// condition clears at t=1, output holds until t>=4
	assert.True(t, d.Step(false, 1.0))
	assert.True(t, d.Step(false, 3.999))
	assert.False(t, d.Step(false, 4.0))
	assert.False(t, d.Step(false, 10.0))
}

func TestDebounce_FlickerSuppressed(t *testing.T) {
	d := Debounce[float64]{EnterDelay: 1.0, ExitDelay: 1.0}

	// condition toggles faster than the enter delay: never commits
	assert.False(t, d.Step(true, 0.0))
	assert.False(t, d.Step(false, 0.5))
	assert.False(t, d.Step(true, 1.0)) // enter timer restarted at 1.0
	assert.False(t, d.Step(false, 1.5))
	assert.False(t, d.Step(true, 2.0))
	assert.False(t, d.Violating())
}

func TestDebounce_ExitCancelledByReentry(t *testing.T) {
	d := Debounce[float64]{EnterDelay: 0, ExitDelay: 5.0}

	assert.True(t, d.Step(true, 0.0))
	assert.True(t, d.Step(false, 1.0))  // exit pending
	assert.True(t, d.Step(true, 2.0))   // condition back, exit cancelled
	assert.True(t, d.Step(false, 3.0))  // exit timer restarts at 3.0
	assert.True(t, d.Step(false, 7.999))
	assert.False(t, d.Step(false, 8.0))
}

func TestDebounce_ZeroDelaysImmediate(t *testing.T) {
	d := Debounce[float64]{}

	assert.True(t, d.Step(true, 0.0))
	assert.False(t, d.Step(false, 0.0))
	assert.True(t, d.Step(true, 0.0))
}

func TestDebounce_Reset(t *testing.T) {
	states := []func(d *Debounce[float64]){
		func(d *Debounce[float64]) {},                      // fresh
		func(d *Debounce[float64]) { d.Step(true, 0) },     // enter pending
		func(d *Debounce[float64]) { d.Step(true, 10) },    // violating
		func(d *Debounce[float64]) { d.Step(true, 10); d.Step(false, 11) }, // exit pending
	}

	for i, prime := range states {
		d := Debounce[float64]{EnterDelay: 5, ExitDelay: 5}
		prime(&d)
		d.Reset()
		assert.False(t, d.Violating(), "state %d", i)
		// after reset the machine behaves as freshly constructed
		assert.False(t, d.Step(true, 100), "state %d", i)
		assert.True(t, d.Step(true, 105), "state %d", i)
	}
}

func TestDebounce_TickCounterWraparound(t *testing.T) {
	// uint32 ticks: now wraps past zero while the enter timer runs
	d := Debounce[uint32]{EnterDelay: 100, ExitDelay: 0}

	start := uint32(math.MaxUint32 - 49) // 50 ticks before wrap
	assert.False(t, d.Step(true, start))
	assert.False(t, d.Step(true, start+80)) // wrapped, 80 ticks elapsed
	assert.True(t, d.Step(true, start+100)) // 100 ticks elapsed across the wrap
}

func TestDebounce_FloatSecondsElapsed(t *testing.T) {
	assert.InDelta(t, 1.5, elapsed(3.0, 1.5), 1e-9)
	assert.Equal(t, uint32(10), elapsed(uint32(5), uint32(math.MaxUint32-4)))
}
