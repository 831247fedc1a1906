// Package ingest provides the UDP listener that feeds samples into
// parameter monitors.
//
// Each datagram carries one JSON sample: {"name": "temp", "value": 21.5}.
// Samples are handed to a caller-supplied handler on the read goroutine, so
// the handler runs on a single task and may drive monitor updates directly
// without extra locking.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/signalbus/errors"
)

// Sample is the wire format of one ingest datagram.
type Sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Handler consumes parsed samples. It is invoked from the single read
// goroutine; returning an error counts the sample as rejected.
type Handler func(s Sample) error

// Server listens for UDP sample datagrams and dispatches them.
type Server struct {
	addr    string
	handler Handler
	logger  *slog.Logger

	mu      sync.Mutex
	conn    *net.UDPConn
	done    chan struct{}
	running atomic.Bool

	packets  atomic.Int64
	badJSON  atomic.Int64
	rejected atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an ingest server bound to addr (e.g. ":9101") once started.
func New(addr string, handler Handler, options ...Option) *Server {
	s := &Server{
		addr:    addr,
		handler: handler,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.LocalAddr().String()
	}
	return s.addr
}

// Packets returns the number of datagrams received.
func (s *Server) Packets() int64 { return s.packets.Load() }

// BadJSON returns the number of datagrams that failed to parse.
func (s *Server) BadJSON() int64 { return s.badJSON.Load() }

// Rejected returns the number of samples the handler rejected.
func (s *Server) Rejected() int64 { return s.rejected.Load() }

// Start binds the socket and launches the read loop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.ErrAlreadyStarted
	}

	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return errors.WrapInvalid(err, "Server", "Start", "resolve "+s.addr)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return errors.WrapFatal(err, "Server", "Start", "listen on "+s.addr)
	}

	// larger OS buffer to ride out sample bursts; some systems cap this
	const socketBufferSize = 1 << 20
	if err := conn.SetReadBuffer(socketBufferSize); err != nil {
		s.logger.Warn("could not set UDP read buffer",
			"buffer_size", socketBufferSize, "error", err)
	}

	s.conn = conn
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.readLoop(ctx)

	s.logger.Info("ingest listening", "addr", conn.LocalAddr().String())
	return nil
}

func (s *Server) readLoop(ctx context.Context) {
	defer close(s.done)
	buf := make([]byte, 65536)

	for s.running.Load() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// deadline so shutdown is noticed promptly
		_ = s.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			if !s.running.Load() {
				return
			}
			s.logger.Warn("udp read failed", "error", err)
			continue
		}

		s.packets.Add(1)

		var sample Sample
		if err := json.Unmarshal(buf[:n], &sample); err != nil || sample.Name == "" {
			s.badJSON.Add(1)
			s.logger.Debug("dropping malformed sample", "bytes", n)
			continue
		}

		if err := s.handler(sample); err != nil {
			s.rejected.Add(1)
			s.logger.Debug("sample rejected", "name", sample.Name, "error", err)
		}
	}
}

// Stop closes the socket and waits for the read loop to exit.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)
	err := s.conn.Close()
	<-s.done
	s.conn = nil
	if err != nil {
		return errors.WrapTransient(err, "Server", "Stop", "close socket")
	}
	return nil
}
