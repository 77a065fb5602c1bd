// Package service wires the bridge's components together and runs the
// startup and shutdown sequences the process depends on. It plays the role
// the platform's BaseService played for other long-running processes, but
// the sequencing here is domain-specific rather than generic: the engine
// must answer both ports before the registry does its first scan, and the
// registry must exist before the dispatcher can route plugin requests to
// it.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/c360/modhostbridge/adapter"
	"github.com/c360/modhostbridge/bus"
	"github.com/c360/modhostbridge/config"
	"github.com/c360/modhostbridge/dispatcher"
	"github.com/c360/modhostbridge/enginecmd"
	"github.com/c360/modhostbridge/feedback"
	"github.com/c360/modhostbridge/health"
	"github.com/c360/modhostbridge/metric"
	"github.com/c360/modhostbridge/registry"
)

// Status is the bridge's own lifecycle state, distinct from health.Status:
// this tracks whether the process is starting up or shutting down, not
// whether the engine is reachable.
type Status int

const (
	StatusStopped Status = iota
	StatusStarting
	StatusRunning
	StatusStopping
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// enginePollInterval is how often Bridge retries reaching the engine's
// command and feedback ports during startup.
const enginePollInterval = time.Second

// Bridge owns every long-lived component: the health state, the bus
// connection, the engine command client, the feedback reader, the plugin
// registry (and its bundle monitor), and the request dispatcher.
type Bridge struct {
	cfg *config.Config

	bus     *bus.Client
	health  *health.State
	metrics *metric.Metrics
	logger  *slog.Logger

	engine   *enginecmd.Client
	feedback *feedback.Reader

	registry       *registry.Registry
	bundleMonitor  *registry.BundleMonitor
	audio          adapter.Audio
	discovery      adapter.PluginDiscovery
	dispatcher     *dispatcher.Dispatcher

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Dependencies supplies the collaborators Bridge cannot construct on its
// own: the plugin discovery and audio adapters, both external to this
// repository, plus optional bundle root directories to watch.
type Dependencies struct {
	Discovery   adapter.PluginDiscovery
	Audio       adapter.Audio
	BundleRoots []string
}

// New constructs a Bridge from configuration and its external
// dependencies. metrics must not be nil: every long-lived component
// records against it unconditionally. It performs no I/O.
func New(cfg *config.Config, deps Dependencies, metrics *metric.Metrics, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	busClient, err := bus.NewClient(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("construct bus client: %w", err)
	}

	state := health.NewState(metrics, slogAdapter{logger})
	engine := enginecmd.New(cfg.EngineHost, cfg.EnginePort, state, metrics)

	b := &Bridge{
		cfg:       cfg,
		bus:       busClient,
		health:    state,
		metrics:   metrics,
		logger:    logger,
		engine:    engine,
		discovery: deps.Discovery,
		audio:     deps.Audio,
		status:    StatusStopped,
	}

	b.feedback = feedback.New(cfg.EngineHost, cfg.EngineFeedbackPort, cfg.BusPublishSubject, state, busClient, metrics, slogAdapter{logger})
	b.registry = registry.New(engine, deps.Discovery, busClient, cfg.BusPublishSubject, metrics, slogAdapter{logger})
	if len(deps.BundleRoots) > 0 {
		b.bundleMonitor = registry.NewBundleMonitor(b.registry, deps.BundleRoots, slogAdapter{logger})
	}
	b.dispatcher = dispatcher.New(busClient, engine, b.registry, deps.Audio, state, metrics, slogAdapter{logger}, cfg.BusCommandSubject, cfg.BusHealthSubject)

	return b, nil
}

// Start runs the startup sequence from the spec: connect the bus and start
// the health socket immediately, poll both engine ports until reachable,
// then bring up the registry, the feedback reader, and the command socket.
// It returns once every component is running; the long-lived loops
// continue in background goroutines until Stop is called or ctx is
// canceled.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.status == StatusRunning || b.status == StatusStarting {
		b.mu.Unlock()
		return nil
	}
	b.status = StatusStarting
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	if err := b.bus.Connect(runCtx); err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.health.Run(runCtx)
	}()

	if err := b.dispatcher.RunHealthOnly(runCtx); err != nil {
		return fmt.Errorf("start health socket: %w", err)
	}

	if err := b.waitForEngine(runCtx); err != nil {
		return err
	}

	if err := b.registry.ScanCatalog(); err != nil {
		return fmt.Errorf("initial catalog scan: %w", err)
	}

	if b.audio != nil {
		if err := b.audio.Init(); err != nil {
			return fmt.Errorf("initialize audio adapter: %w", err)
		}
	}

	if b.bundleMonitor != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.bundleMonitor.Run(runCtx)
		}()
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.feedback.Run(runCtx)
	}()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.dispatcher.RunCommandOnly(runCtx); err != nil {
			b.logger.Error("command dispatcher exited", "error", err)
		}
	}()

	b.mu.Lock()
	b.status = StatusRunning
	b.mu.Unlock()

	return nil
}

// waitForEngine polls both engine ports at enginePollInterval until both
// accept a TCP connection or ctx is canceled. It only checks reachability;
// the command and feedback protocols are exercised by their own clients
// once startup proceeds.
func (b *Bridge) waitForEngine(ctx context.Context) error {
	ticker := time.NewTicker(enginePollInterval)
	defer ticker.Stop()

	for {
		if portReachable(ctx, b.cfg.EngineHost, b.cfg.EnginePort) &&
			portReachable(ctx, b.cfg.EngineHost, b.cfg.EngineFeedbackPort) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// portReachable reports whether a TCP dial to host:port succeeds,
// closing the connection immediately. It is used only to gate startup on
// the engine's command and feedback ports accepting connections; the
// feedback reader owns the real long-lived connection once startup
// completes.
func portReachable(ctx context.Context, host string, port int) bool {
	dialer := net.Dialer{Timeout: enginePollInterval}
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Stop shuts the bridge down in the reverse of its startup order: signal
// every background loop first, wait for them to exit within timeout, then
// close the audio adapter and then the bus connection.
func (b *Bridge) Stop(timeout time.Duration) error {
	b.mu.Lock()
	if b.status == StatusStopped || b.status == StatusStopping {
		b.mu.Unlock()
		return nil
	}
	b.status = StatusStopping
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		b.logger.Warn("shutdown timed out waiting for background loops")
	}

	if b.audio != nil {
		if err := b.audio.Close(); err != nil {
			b.logger.Error("audio adapter close failed", "error", err)
		}
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := b.bus.Close(closeCtx); err != nil {
		b.logger.Error("bus close failed", "error", err)
	}

	b.mu.Lock()
	b.status = StatusStopped
	b.mu.Unlock()
	return nil
}

// Status returns the bridge's current lifecycle status.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Health returns the current engine reachability snapshot.
func (b *Bridge) Health() health.Snapshot {
	return b.health.Snapshot()
}

// slogAdapter satisfies the Printf(format, args...) loggers used throughout
// the domain packages while routing through the structured slog logger the
// process actually configures.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Printf(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}
