package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/signalbus/errors"
)

// aboveSet builds a rule set of n Above rules with the given threshold and
// zero delays.
func aboveSet(n int, hi float64) *RuleSet[float64, float64] {
	return NewRuleSet(n, func() Rule[float64, float64] {
		return &Above[float64, float64]{Hi: hi}
	})
}

// vals builds an n-element slice where the listed indices carry the
// violating value and the rest the normal one.
func vals(n int, violating float64, normal float64, at ...int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = normal
	}
	for _, i := range at {
		out[i] = violating
	}
	return out
}

func TestAnyElement(t *testing.T) {
	env := NewArray[float64, float64](1, AnyElement{})
	require.NoError(t, env.Bind(aboveSet(8, 10)))

	res := env.Update(vals(8, 50, 0), 0)
	assert.Equal(t, Normal, res.State)

	res = env.Update(vals(8, 50, 0, 3), 1)
	require.Equal(t, Violation, res.State)
	assert.Equal(t, 3, res.FirstIndex)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 0, res.RuleIndex)
}

func TestAllElements(t *testing.T) {
	env := NewArray[float64, float64](1, AllElements{})
	require.NoError(t, env.Bind(aboveSet(4, 10)))

	res := env.Update(vals(4, 50, 0, 0, 1, 2), 0)
	assert.Equal(t, Normal, res.State, "one element below threshold")

	res = env.Update(vals(4, 50, 0, 0, 1, 2, 3), 1)
	require.Equal(t, Violation, res.State)
	assert.Equal(t, 0, res.FirstIndex)
	assert.Equal(t, 4, res.Count)
}

func TestCountAtLeast_Boundary(t *testing.T) {
	const k = 3

	t.Run("k-1 violators stays normal", func(t *testing.T) {
		env := NewArray[float64, float64](1, CountAtLeast{K: k})
		require.NoError(t, env.Bind(aboveSet(8, 10)))
		res := env.Update(vals(8, 50, 0, 1, 4), 0)
		assert.Equal(t, Normal, res.State)
	})

	t.Run("exactly k violators fires", func(t *testing.T) {
		env := NewArray[float64, float64](1, CountAtLeast{K: k})
		require.NoError(t, env.Bind(aboveSet(8, 10)))
		res := env.Update(vals(8, 50, 0, 1, 4, 6), 0)
		require.Equal(t, Violation, res.State)
		assert.Equal(t, 1, res.FirstIndex)
		assert.Equal(t, k, res.Count)
	})
}

func TestFractionAtLeast(t *testing.T) {
	// 1/4 of 10 elements -> ceil(2.5) = 3 required
	t.Run("below required fraction", func(t *testing.T) {
		env := NewArray[float64, float64](1, FractionAtLeast{Num: 1, Den: 4})
		require.NoError(t, env.Bind(aboveSet(10, 10)))
		res := env.Update(vals(10, 50, 0, 0, 5), 0)
		assert.Equal(t, Normal, res.State)
	})

	t.Run("at required fraction", func(t *testing.T) {
		env := NewArray[float64, float64](1, FractionAtLeast{Num: 1, Den: 4})
		require.NoError(t, env.Bind(aboveSet(10, 10)))
		res := env.Update(vals(10, 50, 0, 0, 5, 9), 0)
		require.Equal(t, Violation, res.State)
		assert.Equal(t, 0, res.FirstIndex)
		assert.Equal(t, 3, res.Count)
	})
}

func TestRunLengthAtLeast_Boundary(t *testing.T) {
	const l = 3

	t.Run("run of l-1 stays normal", func(t *testing.T) {
		env := NewArray[float64, float64](1, RunLengthAtLeast{L: l})
		require.NoError(t, env.Bind(aboveSet(10, 10)))
		res := env.Update(vals(10, 50, 0, 2, 3, 6, 7), 0)
		assert.Equal(t, Normal, res.State, "two separate runs of 2")
	})

	t.Run("run of exactly l fires with run start", func(t *testing.T) {
		env := NewArray[float64, float64](1, RunLengthAtLeast{L: l})
		require.NoError(t, env.Bind(aboveSet(10, 10)))
		res := env.Update(vals(10, 50, 0, 4, 5, 6), 0)
		require.Equal(t, Violation, res.State)
		assert.Equal(t, 4, res.FirstIndex, "first_index is the run start")
		assert.Equal(t, l, res.Count, "count is the run length")
	})

	t.Run("broken run resets", func(t *testing.T) {
		env := NewArray[float64, float64](1, RunLengthAtLeast{L: l})
		require.NoError(t, env.Bind(aboveSet(10, 10)))
		res := env.Update(vals(10, 50, 0, 0, 1, 3, 4), 0)
		assert.Equal(t, Normal, res.State)
	})
}

func TestArrayEnvelope_PerElementDebounceIndependent(t *testing.T) {
	// element 2 violates from t=0; element 5 only from t=10. With a 5s
	// enter delay each element runs its own timer.
	env := NewArray[float64, float64](1, CountAtLeast{K: 2})
	require.NoError(t, env.Bind(NewRuleSet(8, func() Rule[float64, float64] {
		return &Above[float64, float64]{Debounce: Debounce[float64]{EnterDelay: 5}, Hi: 10}
	})))

	assert.Equal(t, Normal, env.Update(vals(8, 50, 0, 2), 0).State)
	assert.Equal(t, Normal, env.Update(vals(8, 50, 0, 2), 5).State, "element 2 stable, only one violator")
	assert.Equal(t, Normal, env.Update(vals(8, 50, 0, 2, 5), 10).State, "element 5 timer just started")
	res := env.Update(vals(8, 50, 0, 2, 5), 15)
	require.Equal(t, Violation, res.State, "element 5 stable after its own 5s")
	assert.Equal(t, 2, res.FirstIndex)
}

func TestArrayEnvelope_RuleSetPriority(t *testing.T) {
	env := NewArray[float64, float64](2, AnyElement{})
	require.NoError(t, env.Bind(aboveSet(4, 100))) // fires only above 100
	require.NoError(t, env.Bind(aboveSet(4, 10)))  // fires above 10

	res := env.Update(vals(4, 50, 0, 1), 0)
	require.Equal(t, Violation, res.State)
	assert.Equal(t, 1, res.RuleIndex, "only the second set fires for 50")

	env.Reset()
	res = env.Update(vals(4, 200, 0, 1), 1)
	require.Equal(t, Violation, res.State)
	assert.Equal(t, 0, res.RuleIndex, "both fire, first bound wins")
}

func TestArrayEnvelope_CapacityAndReset(t *testing.T) {
	env := NewArray[float64, float64](1, AnyElement{})
	require.NoError(t, env.Bind(aboveSet(2, 10)))

	err := env.Bind(aboveSet(2, 20))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEnvelopeFull)

	require.Equal(t, Violation, env.Update(vals(2, 50, 0, 0), 0).State)
	env.Reset()
	res := env.Update(vals(2, 0, 0), 1)
	assert.Equal(t, Normal, res.State)
}

func TestArrayEnvelope_ShorterRuleSetCoversPrefix(t *testing.T) {
	env := NewArray[float64, float64](1, AnyElement{})
	require.NoError(t, env.Bind(aboveSet(2, 10)))

	// violation at index 3 is outside the rule set's coverage
	res := env.Update(vals(4, 50, 0, 3), 0)
	assert.Equal(t, Normal, res.State)
}

func TestRuleSetAccessors(t *testing.T) {
	rs := aboveSet(3, 10)
	assert.Equal(t, 3, rs.Len())
	assert.NotNil(t, rs.Rule(0))
	assert.Nil(t, rs.Rule(3))

	// instances are independent
	rs.Rule(0).Eval(50, 0)
	assert.True(t, rs.Rule(0).(*Above[float64, float64]).Violating())
	assert.False(t, rs.Rule(1).(*Above[float64, float64]).Violating())
}
