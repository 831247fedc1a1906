package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/signalbus/errors"
)

func TestRuleKinds_ImmediateConditions(t *testing.T) {
	// zero delays: stabilized output equals the immediate condition
	tests := []struct {
		name      string
		rule      Rule[float64, float64]
		violating []float64
		normal    []float64
	}{
		{
			name:      "above",
			rule:      &Above[float64, float64]{Hi: 10},
			violating: []float64{10.001, 100},
			normal:    []float64{9.999, 0, -5},
		},
		{
			name:      "below",
			rule:      &Below[float64, float64]{Lo: 0},
			violating: []float64{-0.001, -100},
			normal:    []float64{0.001, 5},
		},
		{
			name:      "within",
			rule:      &Within[float64, float64]{Lo: 10, Hi: 20},
			violating: []float64{9.999, 20.001},
			normal:    []float64{10.5, 15, 19.5},
		},
		{
			name:      "outside",
			rule:      &Outside[float64, float64]{Lo: 10, Hi: 20},
			violating: []float64{10.5, 15, 19.5},
			normal:    []float64{9.999, 20.001},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for _, v := range test.violating {
				assert.True(t, test.rule.Eval(v, 0), "value %v should violate", v)
				test.rule.Reset()
			}
			for _, v := range test.normal {
				assert.False(t, test.rule.Eval(v, 0), "value %v should be normal", v)
				test.rule.Reset()
			}
		})
	}
}

func TestBoundaryPolicy(t *testing.T) {
	t.Run("exclusive treats the edge as violating", func(t *testing.T) {
		r := &Above[float64, float64]{Hi: 10}
		assert.True(t, r.Eval(10, 0), "v == hi fails strict v < hi")
	})

	t.Run("inclusive treats the edge as normal", func(t *testing.T) {
		r := &Above[float64, float64]{Hi: 10, Bounds: Bounds{Inclusive: true}}
		assert.False(t, r.Eval(10, 0))
		assert.True(t, r.Eval(10.001, 0))
	})

	t.Run("within band edges", func(t *testing.T) {
		excl := &Within[int64, float64]{Lo: 0, Hi: 100}
		assert.True(t, excl.Eval(0, 0))
		assert.True(t, excl.Eval(100, 0))

		incl := &Within[int64, float64]{Lo: 0, Hi: 100, Bounds: Bounds{Inclusive: true}}
		assert.False(t, incl.Eval(0, 0))
		assert.False(t, incl.Eval(100, 0))
	})
}

func TestWithinHysteresis(t *testing.T) {
	// outer band [0, 100], inner band [20, 80]
	r, err := NewWithinHysteresis[float64, float64](0, 20, 80, 100, 0, 0)
	require.NoError(t, err)

	assert.False(t, r.Eval(50, 0), "inside both bands")
	assert.False(t, r.Eval(90, 1), "between inner and outer while normal")
	assert.True(t, r.Eval(110, 2), "outside outer band enters violation")
	assert.True(t, r.Eval(90, 3), "back under outer but not inside inner: still violating")
	assert.True(t, r.Eval(81, 4), "just outside inner band: still violating")
	assert.False(t, r.Eval(50, 5), "inside inner band clears")
	assert.False(t, r.Eval(90, 6), "between bands after clearing stays normal")
}

func TestOutsideHysteresis(t *testing.T) {
	// forbidden inner band [40, 60], outer release band [20, 80]
	r, err := NewOutsideHysteresis[float64, float64](20, 40, 60, 80, 0, 0)
	require.NoError(t, err)

	assert.False(t, r.Eval(0, 0), "outside everything")
	assert.False(t, r.Eval(30, 1), "inside outer but not inner while normal")
	assert.True(t, r.Eval(50, 2), "inside inner band enters violation")
	assert.True(t, r.Eval(70, 3), "inside outer band: still violating")
	assert.False(t, r.Eval(90, 4), "past outer band clears")
	assert.False(t, r.Eval(70, 5), "re-entering outer band after clearing stays normal")
}

func TestHysteresisConstructors_RejectBadOrdering(t *testing.T) {
	_, err := NewWithinHysteresis[float64, float64](20, 0, 80, 100, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadThresholds)

	_, err = NewOutsideHysteresis[float64, float64](40, 20, 60, 80, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadThresholds)
}

func TestPresets(t *testing.T) {
	t.Run("NormalBelow violates above threshold", func(t *testing.T) {
		r := NormalBelow[float64, float64](30, 0, 0)
		assert.False(t, r.Eval(25, 0))
		assert.True(t, r.Eval(35, 0))
	})

	t.Run("NormalAbove violates below threshold", func(t *testing.T) {
		r := NormalAbove[float64, float64](0, 0, 0)
		assert.False(t, r.Eval(1, 0))
		assert.True(t, r.Eval(-1, 0))
	})

	t.Run("NormalWithin violates outside band", func(t *testing.T) {
		r := NormalWithin[float64, float64](10, 20, 0, 0)
		assert.False(t, r.Eval(15, 0))
		assert.True(t, r.Eval(25, 0))
	})

	t.Run("NormalOutside violates inside band", func(t *testing.T) {
		r := NormalOutside[float64, float64](10, 20, 0, 0)
		assert.False(t, r.Eval(25, 0))
		assert.True(t, r.Eval(15, 0))
	})

	t.Run("presets carry delays", func(t *testing.T) {
		r := NormalBelow[float64, float64](30, 2.0, 1.0)
		assert.False(t, r.Eval(35, 0.0), "enter delay not yet elapsed")
		assert.True(t, r.Eval(35, 2.0))
	})
}

func TestRuleDebounceComposition(t *testing.T) {
	// value must stay above 0; violations need 2s of persistence
	r := NormalAbove[float64, float64](0.0, 2.0, 0)

	assert.False(t, r.Eval(-1.0, 0.0))
	assert.False(t, r.Eval(-1.0, 1.0))
	assert.True(t, r.Eval(-1.0, 3.0))
}
