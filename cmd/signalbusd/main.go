// Package main implements signalbusd, the parameter monitoring daemon.
// It loads monitor definitions from a JSON config, ingests samples over
// UDP, republishes them on the in-process message bus, and optionally
// mirrors topics to NATS and serves Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/signalbus/config"
	"github.com/c360/signalbus/ingest"
	"github.com/c360/signalbus/metric"
	"github.com/c360/signalbus/monitor"
	"github.com/c360/signalbus/msgbus"
	"github.com/c360/signalbus/natsbridge"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "signalbusd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		logger.Info("configuration is valid", "path", cliCfg.ConfigPath)
		return nil
	}

	logger.Info("starting",
		"config", cliCfg.ConfigPath,
		"monitors", len(cfg.Monitors),
		"nats", cfg.NATS.Enabled,
		"metrics", cfg.Metrics.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// metrics registry is always built; the HTTP endpoint is optional
	registry := metric.NewMetricsRegistry()
	core := registry.CoreMetrics()

	bus := msgbus.New()
	pool := monitor.NewPool(bus, len(cfg.Monitors))
	monitors, err := config.BuildMonitors(cfg, pool, monitor.WithMetrics(core))
	if err != nil {
		return err
	}

	// clock: monotonic seconds since daemon start, shared by all monitors
	start := time.Now()
	now := func() float64 { return time.Since(start).Seconds() }

	// samples arrive on the single ingest goroutine, which keeps monitor
	// updates single-writer
	ingestSrv := ingest.New(cfg.Ingest.UDPListen, func(s ingest.Sample) error {
		m, ok := monitors[s.Name]
		if !ok {
			return fmt.Errorf("no monitor for parameter %q", s.Name)
		}
		m.Update(s.Value, now())
		return nil
	}, ingest.WithLogger(logger))

	if err := ingestSrv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := ingestSrv.Stop(); err != nil {
			logger.Warn("ingest stop failed", "error", err)
		}
	}()

	var bridge *natsbridge.Bridge
	var natsClient *natsbridge.Client
	if cfg.NATS.Enabled {
		natsClient = natsbridge.NewClient(cfg.NATS.URLs,
			natsbridge.WithReconnect(cfg.NATS.MaxReconnects, cfg.NATS.ReconnectWait),
			natsbridge.WithCredentials(cfg.NATS.Username, cfg.NATS.Password),
			natsbridge.WithToken(cfg.NATS.Token),
			natsbridge.WithClientName(appName),
			natsbridge.WithLogger(logger),
			natsbridge.WithClientMetrics(core),
		)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				logger.Warn("nats close failed", "error", err)
			}
		}()

		bridge = natsbridge.NewBridge(bus, natsClient,
			natsbridge.WithSubjectPrefix(cfg.NATS.SubjectPrefix),
			natsbridge.WithInboxCapacity(cfg.Ingest.InboxCapacity),
			natsbridge.WithBridgeLogger(logger),
			natsbridge.WithBridgeMetrics(core),
		)
		if err := bridge.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := bridge.Stop(); err != nil {
				logger.Warn("bridge stop failed", "error", err)
			}
		}()
	}

	var metricsSrv *metric.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metric.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, registry)
		go func() {
			if err := metricsSrv.Start(); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			if err := metricsSrv.Stop(); err != nil {
				logger.Warn("metrics stop failed", "error", err)
			}
		}()
		logger.Info("metrics serving", "addr", metricsSrv.Address())
	}

	logger.Info("running", "ingest", ingestSrv.Addr(), "monitors", pool.Len())

	<-ctx.Done()
	logger.Info("shutting down", "timeout", cliCfg.ShutdownTimeout)

	// the deferred stops are all bounded; the timer is a backstop against
	// a wedged drain
	timer := time.AfterFunc(cliCfg.ShutdownTimeout, func() {
		logger.Error("shutdown timeout exceeded, exiting")
		os.Exit(1)
	})
	defer timer.Stop()

	return nil
}
