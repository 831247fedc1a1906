package ingest

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/signalbus/errors"
)

type collector struct {
	mu      sync.Mutex
	samples []Sample
	reject  bool
}

func (c *collector) handle(s Sample) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reject {
		return fmt.Errorf("unknown parameter %s", s.Name)
	}
	c.samples = append(c.samples, s)
	return nil
}

func (c *collector) collected() []Sample {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)
	return out
}

func startServer(t *testing.T, c *collector) (*Server, *net.UDPConn) {
	t.Helper()
	srv := New("127.0.0.1:0", c.handle)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop() })

	addr, err := net.ResolveUDPAddr("udp", srv.Addr())
	require.NoError(t, err)
	conn, err := net.DialUDP("udp", nil, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestServer_DispatchesSamples(t *testing.T) {
	c := &collector{}
	_, conn := startServer(t, c)

	_, err := conn.Write([]byte(`{"name":"temp","value":21.5}`))
	require.NoError(t, err)
	_, err = conn.Write([]byte(`{"name":"pressure","value":-3}`))
	require.NoError(t, err)

	waitFor(t, func() bool { return len(c.collected()) == 2 })
	samples := c.collected()
	assert.Equal(t, Sample{Name: "temp", Value: 21.5}, samples[0])
	assert.Equal(t, Sample{Name: "pressure", Value: -3}, samples[1])
}

func TestServer_CountsMalformedDatagrams(t *testing.T) {
	c := &collector{}
	srv, conn := startServer(t, c)

	_, err := conn.Write([]byte(`not json`))
	require.NoError(t, err)
	_, err = conn.Write([]byte(`{"value":1}`))
	require.NoError(t, err)
	_, err = conn.Write([]byte(`{"name":"temp","value":1}`))
	require.NoError(t, err)

	waitFor(t, func() bool { return srv.Packets() == 3 })
	waitFor(t, func() bool { return len(c.collected()) == 1 })
	assert.Equal(t, int64(2), srv.BadJSON(), "missing name counts as malformed")
}

func TestServer_CountsRejectedSamples(t *testing.T) {
	c := &collector{reject: true}
	srv, conn := startServer(t, c)

	_, err := conn.Write([]byte(`{"name":"unknown","value":1}`))
	require.NoError(t, err)

	waitFor(t, func() bool { return srv.Rejected() == 1 })
	assert.Empty(t, c.collected())
}

func TestServer_Lifecycle(t *testing.T) {
	srv := New("127.0.0.1:0", func(Sample) error { return nil })
	require.NoError(t, srv.Start(context.Background()))

	assert.ErrorIs(t, srv.Start(context.Background()), errors.ErrAlreadyStarted)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop(), "stop is idempotent")
}
