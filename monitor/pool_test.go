package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/signalbus/envelope"
	"github.com/c360/signalbus/errors"
	"github.com/c360/signalbus/msgbus"
)

func TestPool_Create(t *testing.T) {
	pool := NewPool(msgbus.New(), 4)

	m, err := Create[float64, float64](pool, "temp", 60.0)
	require.NoError(t, err)
	assert.Equal(t, "temp", m.Name())
	assert.Equal(t, 1, pool.Len())

	got, ok := pool.Get("temp")
	require.True(t, ok)
	assert.Equal(t, "temp", got.Name())

	_, ok = pool.Get("missing")
	assert.False(t, ok)
}

func TestPool_DuplicateName(t *testing.T) {
	pool := NewPool(msgbus.New(), 4)

	_, err := Create[float64, float64](pool, "temp", 60.0)
	require.NoError(t, err)

	_, err = Create[float64, float64](pool, "temp", 60.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMonitorExists)
	assert.Equal(t, 1, pool.Len())
}

func TestPool_CapacityFull(t *testing.T) {
	pool := NewPool(msgbus.New(), 2)

	_, err := Create[float64, float64](pool, "a", 60.0)
	require.NoError(t, err)
	_, err = Create[float64, float64](pool, "b", 60.0)
	require.NoError(t, err)

	_, err = Create[float64, float64](pool, "c", 60.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMonitorPoolFull)
}

func TestPool_FailedCreateReleasesSlot(t *testing.T) {
	bus := msgbus.New()
	pool := NewPool(bus, 4)

	// occupy the value topic name so monitor construction fails
	require.NoError(t, bus.Register(msgbus.NewTopic[float64]("temp.value")))

	_, err := Create[float64, float64](pool, "temp", 60.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTopicExists)
	assert.Equal(t, 0, pool.Len(), "slot released on failure")
}

func TestPool_MixedTypesAndResetAll(t *testing.T) {
	pool := NewPool(msgbus.New(), 4)

	ft, err := Create[float64, float64](pool, "temp", 60.0)
	require.NoError(t, err)
	require.NoError(t, ft.AddRule(envelope.NormalBelow[float64](10.0, 0.0, 5.0)))

	_, err = Create[uint32, uint32](pool, "rpm", 60000)
	require.NoError(t, err)

	res := ft.Update(15.0, 0.0)
	require.Equal(t, envelope.Violation, res.State)

	pool.ResetAll()
	assert.Equal(t, envelope.Normal, ft.Last().State)
}
