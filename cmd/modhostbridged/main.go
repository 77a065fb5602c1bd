// Package main implements the entry point for modhostbridged, the bridge
// process that exposes the MOD-HOST audio engine's command and feedback
// ports over the message bus.
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

	"github.com/c360/modhostbridge/config"
	"github.com/c360/modhostbridge/internal/nulladapter"
	"github.com/c360/modhostbridge/metric"
	"github.com/c360/modhostbridge/service"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "modhostbridged"
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
		slog.Error("modhostbridged failed", "error", err)
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
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Info("starting modhostbridged",
		"version", Version,
		"engine_host", cfg.EngineHost,
		"engine_port", cfg.EnginePort,
		"feedback_port", cfg.EngineFeedbackPort,
		"nats_url", cfg.NATSURL,
	)

	metricsRegistry := metric.NewMetricsRegistry()

	var metricsServer *metric.Server
	if cliCfg.MetricsPort > 0 {
		metricsServer = metric.NewServer(cliCfg.MetricsPort, "/metrics", metricsRegistry)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server exited", "error", err)
			}
		}()
		logger.Info("metrics server listening", "address", metricsServer.Address())
	}

	deps := service.Dependencies{
		Discovery: nulladapter.New(),
	}

	bridge, err := service.New(cfg, deps, metricsRegistry.CoreMetrics(), logger)
	if err != nil {
		return fmt.Errorf("construct bridge: %w", err)
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	startCtx, startCancel := context.WithTimeout(signalCtx, 30*time.Second)
	defer startCancel()

	if err := bridge.Start(startCtx); err != nil {
		return fmt.Errorf("start bridge: %w", err)
	}
	logger.Info("modhostbridged started")

	<-signalCtx.Done()
	logger.Info("received shutdown signal")

	if err := bridge.Stop(cliCfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("stop bridge: %w", err)
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error("metrics server stop failed", "error", err)
		}
	}

	logger.Info("modhostbridged shutdown complete")
	return nil
}
